package handlers

import (
	"errors"
	"net/http"

	"go-safeher/chat"
	"go-safeher/session"
	"go-safeher/types"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Mode string `json:"mode" binding:"omitempty,oneof=emergency advice"`
}

// CreateSessionHandler starts a new conversation. The body is optional.
func CreateSessionHandler(c *gin.Context, store *session.Store) {
	var request createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	mode := types.Emergency
	if request.Mode != "" {
		mode = types.Mode(request.Mode)
	}

	sess := store.Create(mode)
	c.JSON(http.StatusCreated, gin.H{
		"id":       sess.ID,
		"mode":     sess.Conversation.Mode(),
		"messages": sess.Conversation.History(),
	})
}

// GetSessionStatus lets a client poll whether it may send the next message.
func GetSessionStatus(c *gin.Context, store *session.Store) {
	sess, ok := lookupSession(c, store)
	if !ok {
		return
	}
	_, hasLocation := sess.Conversation.Origin()
	c.JSON(http.StatusOK, gin.H{
		"id":          sess.ID,
		"mode":        sess.Conversation.Mode(),
		"busy":        sess.Conversation.Busy(),
		"hasLocation": hasLocation,
		"createdAt":   sess.CreatedAt,
		"lastSeen":    sess.LastSeen(),
	})
}

func DeleteSessionHandler(c *gin.Context, store *session.Store) {
	if err := store.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func lookupSession(c *gin.Context, store *session.Store) (*session.Session, bool) {
	sess, err := store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sess, true
}

// writeError maps domain errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrOriginSet):
		status = http.StatusConflict
	case errors.Is(err, chat.ErrEmptyUtterance), errors.Is(err, chat.ErrInvalidOrigin):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
