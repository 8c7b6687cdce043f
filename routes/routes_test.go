package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-safeher/advice"
	"go-safeher/category"
	"go-safeher/chat"
	"go-safeher/places"
	"go-safeher/session"
	"go-safeher/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type policeProvider struct{}

func (policeProvider) Nearby(_ context.Context, q places.Query) ([]types.PlaceRecord, error) {
	if q.RadiusMeters < 10000 {
		return nil, nil
	}
	return []types.PlaceRecord{{Name: "Central Police", Address: "1 Main St", DistanceMeters: 6200}}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	advisor := advice.NewRemoteWithClient(nil, advice.RemoteConfig{}, nil, nil)
	store := session.NewStore(chat.Deps{
		Resolver: category.Default(),
		Searcher: places.NewEngine(policeProvider{}, places.EngineConfig{}, nil),
		Advisor:  advisor,
	}, nil, nil)
	return SetupRouter(store, advisor, nil, nil), store
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Mode     types.Mode      `json:"mode"`
	Busy     bool            `json:"busy"`
	HasLoc   bool            `json:"hasLocation"`
	Messages []types.Message `json:"messages"`
}

type repliesResponse struct {
	Mode    types.Mode      `json:"mode"`
	Replies []types.Message `json:"replies"`
}

func TestEmergencyConversationFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/safeher/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[sessionResponse](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, types.Emergency, created.Mode)
	require.Len(t, created.Messages, 1)
	base := "/api/safeher/sessions/" + created.ID

	w = do(t, r, http.MethodPost, base+"/messages", gin.H{"text": "nearest police station"})
	require.Equal(t, http.StatusOK, w.Code)
	replies := decode[repliesResponse](t, w).Replies
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "need your location")

	w = do(t, r, http.MethodPost, base+"/location", gin.H{"lat": 12.97, "lon": 77.59})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/location", gin.H{"lat": 1.0, "lon": 1.0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[sessionResponse](t, w)
	assert.True(t, status.HasLoc)
	assert.False(t, status.Busy)

	w = do(t, r, http.MethodPost, base+"/messages", gin.H{"text": "nearest police station"})
	require.Equal(t, http.StatusOK, w.Code)
	replies = decode[repliesResponse](t, w).Replies
	require.Len(t, replies, 2)
	assert.Equal(t, "No police found within 5km. Expanding search to 10km...", replies[0].Text)
	assert.Equal(t, "Found 1 police within 10km:\n\n👮 Central Police\n🏠 1 Main St\n📞 No phone available\n📏 6.2km", replies[1].Text)

	w = do(t, r, http.MethodGet, base+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[sessionResponse](t, w).Messages, 6)
}

func TestSwitchModeAndAdvice(t *testing.T) {
	r, _ := newTestRouter(t)

	created := decode[sessionResponse](t, do(t, r, http.MethodPost, "/api/safeher/sessions", nil))
	base := "/api/safeher/sessions/" + created.ID

	w := do(t, r, http.MethodPut, base+"/mode", gin.H{"mode": "advice"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/messages", gin.H{"text": "is it safe to walk at night?"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[repliesResponse](t, w)
	assert.Equal(t, types.Advice, resp.Mode)
	require.Len(t, resp.Replies, 1)
	assert.Contains(t, resp.Replies[0].Text, "not configured")

	w = do(t, r, http.MethodPut, base+"/mode", gin.H{"mode": "party"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSessionInAdviceMode(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/safeher/sessions", gin.H{"mode": "advice"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, types.Advice, decode[sessionResponse](t, w).Mode)
}

func TestBadRequests(t *testing.T) {
	r, _ := newTestRouter(t)
	created := decode[sessionResponse](t, do(t, r, http.MethodPost, "/api/safeher/sessions", nil))
	base := "/api/safeher/sessions/" + created.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/safeher/sessions/nope", nil, http.StatusNotFound},
		{"unknown session message", http.MethodPost, "/api/safeher/sessions/nope/messages", gin.H{"text": "hi"}, http.StatusNotFound},
		{"missing text", http.MethodPost, base + "/messages", gin.H{}, http.StatusBadRequest},
		{"blank text", http.MethodPost, base + "/messages", gin.H{"text": "   "}, http.StatusBadRequest},
		{"latitude out of range", http.MethodPost, base + "/location", gin.H{"lat": 91.0, "lon": 0.0}, http.StatusBadRequest},
		{"no location fields", http.MethodPost, base + "/location", gin.H{}, http.StatusBadRequest},
		{"address without geocoder", http.MethodPost, base + "/location", gin.H{"address": "Main St"}, http.StatusServiceUnavailable},
		{"bad mode on create", http.MethodPost, "/api/safeher/sessions", gin.H{"mode": "chill"}, http.StatusBadRequest},
		{"advice without question", http.MethodPost, "/api/safeher/advice", gin.H{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestTranscriptExportAndDelete(t *testing.T) {
	r, store := newTestRouter(t)
	created := decode[sessionResponse](t, do(t, r, http.MethodPost, "/api/safeher/sessions", nil))
	base := "/api/safeher/sessions/" + created.ID

	do(t, r, http.MethodPost, base+"/messages", gin.H{"text": "pizza"})

	w := do(t, r, http.MethodGet, base+"/transcript", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "safeher-transcript-"+created.ID+".json")
	exported := decode[struct {
		SessionID string          `json:"sessionId"`
		Messages  []types.Message `json:"messages"`
	}](t, w)
	assert.Equal(t, created.ID, exported.SessionID)
	assert.Len(t, exported.Messages, 3)

	w = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, store.Len())

	w = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdviceEndpointAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/safeher/advice", gin.H{"question": "cab safety?"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, string(advice.SourceUnconfigured), body["source"])
	assert.NotEmpty(t, body["answer"])

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "safeher_advice_answers_total")
}
