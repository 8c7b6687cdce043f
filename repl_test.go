package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go-safeher/advice"
	"go-safeher/category"
	"go-safeher/chat"
	"go-safeher/places"
	"go-safeher/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hospitalProvider struct{}

func (hospitalProvider) Nearby(context.Context, places.Query) ([]types.PlaceRecord, error) {
	return []types.PlaceRecord{{Name: "St. Mary's", DistanceMeters: 420}}, nil
}

func newTestConversation(mode types.Mode) *chat.Conversation {
	return chat.New(chat.Deps{
		Resolver: category.Default(),
		Searcher: places.NewEngine(hospitalProvider{}, places.EngineConfig{}, nil),
		Advisor:  advice.NewRemoteWithClient(nil, advice.RemoteConfig{}, nil, nil),
	}, mode)
}

func TestREPLSession(t *testing.T) {
	conv := newTestConversation(types.Emergency)
	in := strings.NewReader(strings.Join([]string{
		"hospital please",
		"/location 12.97, 77.59",
		"hospital please",
		"/mode advice",
		"/mode sideways",
		"/quit",
		"never read",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), conv, in, &out))

	text := out.String()
	assert.Contains(t, text, "need your location")
	assert.Contains(t, text, "📍 Location set to 12.970000,77.590000")
	assert.Contains(t, text, "Found 1 hospital within 5km:\n\n🏥 St. Mary's")
	assert.Contains(t, text, "Switched to Advice mode")
	assert.Contains(t, text, `unknown mode "sideways"`)
	assert.Contains(t, text, "Goodbye")
	assert.Equal(t, types.Advice, conv.Mode())
	assert.Len(t, conv.History(), 6)
}

func TestREPLStopsAtEOF(t *testing.T) {
	conv := newTestConversation(types.Advice)
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), conv, strings.NewReader("is a cab safe at night?\n"), &out))
	assert.Contains(t, out.String(), "not configured")
}

func TestParseCoordinate(t *testing.T) {
	got, err := parseCoordinate("51.5, -0.12")
	require.NoError(t, err)
	assert.Equal(t, types.Coordinate{Lat: 51.5, Lon: -0.12}, got)

	for _, bad := range []string{"", "51.5", "north,-0.12", "51.5,west"} {
		_, err := parseCoordinate(bad)
		assert.Error(t, err, bad)
	}
}
