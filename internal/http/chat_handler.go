package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"perplexacare/internal/healthagent"
)

// chatTimeout acota la duración máxima de un turno contra el upstream.
const chatTimeout = 60 * time.Second

const agentUnavailableMessage = "Sorry, I'm having trouble processing your request right now. Please try again later."

// ChatHandler mantiene dependencias para el endpoint de chat.
type ChatHandler struct {
	logger *zap.Logger
	agent  healthagent.Client
}

func NewChatHandler(logger *zap.Logger, agent healthagent.Client) *ChatHandler {
	return &ChatHandler{
		logger: logger,
		agent:  agent,
	}
}

// PostMessage maneja POST /api/chat. El último elemento de messages es
// el turno del usuario; el resto del array se ignora. Los errores se
// devuelven como texto plano.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		c.String(http.StatusBadRequest, "Missing userId")
		return
	}

	var userMessage string
	if len(req.Messages) > 0 {
		userMessage = strings.TrimSpace(req.Messages[len(req.Messages)-1].Content)
	}
	if userMessage == "" {
		c.String(http.StatusBadRequest, "No valid message content provided")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	resp, err := h.agent.Query(ctx, userMessage, req.UserID)
	if err != nil {
		// El error del upstream se loguea pero no se releva al caller.
		h.logger.Error("health agent query failed", zap.Error(err), zap.String("user_id", req.UserID))
		c.String(http.StatusInternalServerError, agentUnavailableMessage)
		return
	}

	c.JSON(http.StatusOK, resp)
}
