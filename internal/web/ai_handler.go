package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/service"
)

// AIParser turns free text into structured task fields.
type AIParser interface {
	ParseTask(ctx context.Context, text string) (*service.ParsedTask, error)
}

// AIHandler exposes the text-to-task parsing endpoint. Handlers stay thin;
// the parsed fields go back to the client, which submits them through the
// ordinary create flow.
type AIHandler struct {
	parser AIParser
}

func NewAIHandler(parser AIParser) *AIHandler {
	return &AIHandler{parser: parser}
}

type parseRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *AIHandler) Parse(c *gin.Context) {
	if h.parser == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai parsing is not configured"})
		return
	}

	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, err := h.parser.ParseTask(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not parse task text"})
		return
	}
	c.JSON(http.StatusOK, parsed)
}
