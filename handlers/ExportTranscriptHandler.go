package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-safeher/session"
	"go-safeher/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type transcript struct {
	SessionID  string          `json:"sessionId"`
	Mode       types.Mode      `json:"mode"`
	ExportedAt time.Time       `json:"exportedAt"`
	Messages   []types.Message `json:"messages"`
}

// ExportTranscriptHandler returns the session's messages as a JSON file
// download.
func ExportTranscriptHandler(c *gin.Context, store *session.Store) {
	sess, ok := lookupSession(c, store)
	if !ok {
		return
	}

	messages := sess.Conversation.History()
	jsonData, err := json.MarshalIndent(transcript{
		SessionID:  sess.ID,
		Mode:       sess.Conversation.Mode(),
		ExportedAt: time.Now().UTC(),
		Messages:   messages,
	}, "", "  ")
	if err != nil {
		zap.L().Error("failed to marshal transcript", zap.String("session_id", sess.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to format transcript",
			"details": err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("safeher-transcript-%s.json", sess.ID)
	zap.L().Info("exporting transcript", zap.String("session_id", sess.ID), zap.Int("count", len(messages)))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", jsonData)
}
