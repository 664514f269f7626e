package domain

import "time"

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// ChatMessage es un turno de la conversación en memoria. La lista es
// append-only y vive solo durante la sesión del proceso.
type ChatMessage struct {
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	References  []string  `json:"references,omitempty"`
	IsQuestion  bool      `json:"is_question,omitempty"`
	MessageType string    `json:"message_type,omitempty"`
	IsEmergency bool      `json:"is_emergency,omitempty"`
}

// AgentAnswer es la variante resuelta del campo "response" del agente,
// que llega como string plano o como objeto {content, references}.
// Se decodifica una sola vez en el gateway; aguas abajo nadie vuelve a
// inspeccionar la forma.
type AgentAnswer struct {
	Content    string   `json:"content"`
	References []string `json:"references,omitempty"`
}

// QueryResponse es la respuesta normalizada del agente de salud.
// Los flags de loopback/emergencia se transportan sin interpretarse:
// su semántica la define el servicio upstream.
type QueryResponse struct {
	Answer             AgentAnswer `json:"response"`
	IsLoopbackQuestion bool        `json:"isLoopbackQuestion"`
	IsEmergency        bool        `json:"isEmergency,omitempty"`
	MessageType        string      `json:"messageType,omitempty"`
	RemainingQuestions int         `json:"remainingQuestions,omitempty"`
	Timestamp          time.Time   `json:"timestamp"`
}

// SessionStatus refleja el estado de sesión reportado por el upstream.
// En este build es siempre un placeholder estático.
type SessionStatus struct {
	HasActiveSession     bool   `json:"hasActiveSession"`
	IsWaitingForResponse bool   `json:"isWaitingForResponse"`
	ConversationState    string `json:"conversationState"`
	RemainingQuestions   int    `json:"remainingQuestions"`
}

// ConversationItem es un par pregunta/respuesta del historial upstream.
type ConversationItem struct {
	Query              string    `json:"query"`
	Response           string    `json:"response"`
	IsLoopbackQuestion bool      `json:"isLoopbackQuestion"`
	IsEmergency        bool      `json:"isEmergency,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}
