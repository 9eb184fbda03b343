package handler

import (
	"net/http"
	"time"

	"hdbagent/internal/model"
	"hdbagent/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AskRequest is one natural-language question.
type AskRequest struct {
	Query string `json:"query" binding:"required"`
}

// AskResponse carries the route, the tool's structured result and the
// composed answer for one request.
type AskResponse struct {
	RequestID string           `json:"request_id"`
	Route     model.Route      `json:"route"`
	Data      model.ToolResult `json:"data"`
	Answer    string           `json:"answer"`
	Took      int64            `json:"took_ms"`
}

// AskHandler handles natural-language question requests
type AskHandler struct {
	agent *service.Agent
}

// NewAskHandler creates a new ask handler
func NewAskHandler(agent *service.Agent) *AskHandler {
	return &AskHandler{agent: agent}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	start := time.Now()
	res, err := h.agent.Run(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Agent failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, AskResponse{
		RequestID: uuid.NewString(),
		Route:     res.Route,
		Data:      res.Data,
		Answer:    res.Answer,
		Took:      time.Since(start).Milliseconds(),
	})
}
