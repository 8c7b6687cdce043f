package handlers

import (
	"net/http"

	"go-safeher/session"
	"go-safeher/types"

	"github.com/gin-gonic/gin"
)

type messageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// PostMessageHandler runs one user utterance through the conversation and
// returns the bot replies, search notices first.
func PostMessageHandler(c *gin.Context, store *session.Store) {
	sess, ok := lookupSession(c, store)
	if !ok {
		return
	}

	var request messageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replies, err := sess.Conversation.Handle(c.Request.Context(), request.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":    sess.Conversation.Mode(),
		"replies": replies,
	})
}

func GetMessagesHandler(c *gin.Context, store *session.Store) {
	sess, ok := lookupSession(c, store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": sess.Conversation.History()})
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=emergency advice"`
}

func SwitchModeHandler(c *gin.Context, store *session.Store) {
	sess, ok := lookupSession(c, store)
	if !ok {
		return
	}

	var request modeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := sess.Conversation.SwitchMode(types.Mode(request.Mode))
	c.JSON(http.StatusOK, gin.H{
		"mode":    sess.Conversation.Mode(),
		"message": msg,
	})
}
