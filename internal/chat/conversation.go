// Package chat implementa el manejador de conversación en memoria: la
// lista de mensajes de una sesión, el flag de carga y el ciclo
// optimistic-update + request/response de cada turno.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"perplexacare/internal/domain"
	"perplexacare/internal/healthagent"
)

// ErrEmptyMessage indica input vacío tras recortar espacios; no se
// agrega mensaje ni se emite request.
var ErrEmptyMessage = errors.New("empty message")

// sendFailedMessage es el único error visible al usuario ante una falla
// del gateway; el detalle queda en el error devuelto, no en el estado.
const sendFailedMessage = "Failed to process your message. Please try again."

// Conversation posee el protocolo de turnos de una sesión de chat.
// El gateway y la identidad se inyectan en la construcción; no hay
// lookup ambiental. Los mensajes viven solo en memoria y en orden de
// inserción.
//
// Llamadas solapadas a SendMessage no se serializan: el mutex protege
// el estado, no el orden. La respuesta que llega última se agrega
// última, sin garantía de orden por tiempo de envío.
type Conversation struct {
	mu       sync.Mutex
	agent    healthagent.Client
	userID   string
	messages []domain.ChatMessage
	loading  bool
	lastErr  string
}

func NewConversation(agent healthagent.Client, userID string) *Conversation {
	return &Conversation{
		agent:  agent,
		userID: userID,
	}
}

// SendMessage ejecuta un turno: agrega el mensaje del usuario de forma
// optimista, emite exactamente una llamada al gateway y agrega
// exactamente un mensaje del agente si la llamada tuvo éxito. En caso
// de falla no se agrega respuesta, el mensaje optimista queda y se
// registra un único error visible. El flag de carga se limpia en todos
// los caminos, incluido un panic del cliente.
func (c *Conversation) SendMessage(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}

	userMsg := domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: time.Now().UTC(),
	}

	c.mu.Lock()
	c.messages = append(c.messages, userMsg)
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	resp, err := c.agent.Query(ctx, text, c.userID)
	if err != nil {
		c.mu.Lock()
		c.lastErr = sendFailedMessage
		c.mu.Unlock()
		return domain.ChatMessage{}, err
	}

	ts := resp.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	agentMsg := domain.ChatMessage{
		Role:        domain.RoleAgent,
		Content:     resp.Answer.Content,
		References:  resp.Answer.References,
		Timestamp:   ts,
		IsQuestion:  resp.IsLoopbackQuestion,
		IsEmergency: resp.IsEmergency,
		MessageType: resp.MessageType,
	}

	c.mu.Lock()
	c.messages = append(c.messages, agentMsg)
	c.mu.Unlock()
	return agentMsg, nil
}

// Messages devuelve una copia de la lista de mensajes en orden de inserción.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Loading reporta si hay un turno en vuelo.
func (c *Conversation) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err devuelve el último error visible al usuario, o "" si no hay.
func (c *Conversation) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Conversation) UserID() string {
	return c.userID
}

// Reset descarta mensajes y error. Equivale a recargar la página:
// nada de esta sesión persiste.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.lastErr = ""
}
