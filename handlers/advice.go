package handlers

import (
	"net/http"

	"go-safeher/chat"

	"github.com/gin-gonic/gin"
)

type adviceRequest struct {
	Question string `json:"question" binding:"required,max=2000"`
}

// AskAdviceHandler answers a single question outside any session.
func AskAdviceHandler(c *gin.Context, advisor chat.Advisor) {
	var request adviceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer := advisor.Advise(c.Request.Context(), request.Question)
	c.JSON(http.StatusOK, gin.H{
		"answer": answer.Text,
		"source": answer.Source,
	})
}
