package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perplexacare/internal/domain"
)

// SessionHandler sirve los endpoints de estado de sesión e historial.
// Ninguno tiene backend real todavía: el estado de conversación vive en
// el health agent externo y este servicio solo expone placeholders
// estables para el cliente.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// SessionStatus maneja GET /api/session-status.
func (h *SessionHandler) SessionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, domain.SessionStatus{
		HasActiveSession:     false,
		IsWaitingForResponse: false,
		ConversationState:    "idle",
		RemainingQuestions:   0,
	})
}

// ConversationHistory maneja GET /api/conversation-history.
func (h *SessionHandler) ConversationHistory(c *gin.Context) {
	c.JSON(http.StatusOK, []domain.ConversationItem{})
}
