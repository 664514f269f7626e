package healthagent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"perplexacare/internal/domain"
)

// Client define la interfaz hacia el health agent externo.
type Client interface {
	Query(ctx context.Context, query, userID string) (domain.QueryResponse, error)
}

var (
	ErrInvalidAgentResponse = errors.New("invalid response from health agent")
	ErrAgentUnavailable     = errors.New("health agent unavailable")
)

// HTTPClient implementa Client contra el endpoint /api/health-query.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente HTTP apuntando al health agent.
func NewHTTPClient(baseURL string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type queryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"userId"`
}

func (c *HTTPClient) Query(ctx context.Context, query, userID string) (domain.QueryResponse, error) {
	bodyBytes, err := json.Marshal(queryRequest{Query: query, UserID: userID})
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/health-query", bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// El detalle del upstream se loguea pero nunca se releva al caller.
		if c.logger != nil {
			c.logger.Warn("health agent error",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody),
			)
		}
		return domain.QueryResponse{}, fmt.Errorf("%w: status=%d", ErrAgentUnavailable, resp.StatusCode)
	}

	return DecodeResponse(respBody)
}

type rawQueryResponse struct {
	Response           json.RawMessage `json:"response"`
	IsLoopbackQuestion bool            `json:"isLoopbackQuestion"`
	IsEmergency        bool            `json:"isEmergency"`
	MessageType        string          `json:"messageType"`
	RemainingQuestions int             `json:"remainingQuestions"`
	Timestamp          string          `json:"timestamp"`
}

// DecodeResponse normaliza el cuerpo del upstream a QueryResponse.
// Acepta un objeto JSON cuyo campo "response" sea string u objeto
// {content, references}, o un cuerpo de texto plano.
func DecodeResponse(body []byte) (domain.QueryResponse, error) {
	var raw rawQueryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return domain.QueryResponse{}, ErrInvalidAgentResponse
		}
		return domain.QueryResponse{
			Answer:    domain.AgentAnswer{Content: text},
			Timestamp: time.Now().UTC(),
		}, nil
	}

	answer, err := decodeAnswer(raw.Response)
	if err != nil {
		return domain.QueryResponse{}, err
	}

	ts := time.Now().UTC()
	if raw.Timestamp != "" {
		if parsed, perr := time.Parse(time.RFC3339, raw.Timestamp); perr == nil {
			ts = parsed
		}
	}

	return domain.QueryResponse{
		Answer:             answer,
		IsLoopbackQuestion: raw.IsLoopbackQuestion,
		IsEmergency:        raw.IsEmergency,
		MessageType:        raw.MessageType,
		RemainingQuestions: raw.RemainingQuestions,
		Timestamp:          ts,
	}, nil
}

func decodeAnswer(raw json.RawMessage) (domain.AgentAnswer, error) {
	if len(raw) == 0 {
		return domain.AgentAnswer{}, ErrInvalidAgentResponse
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if strings.TrimSpace(asString) == "" {
			return domain.AgentAnswer{}, ErrInvalidAgentResponse
		}
		return domain.AgentAnswer{Content: asString}, nil
	}

	var asObject struct {
		Content    string   `json:"content"`
		References []string `json:"references"`
	}
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return domain.AgentAnswer{}, ErrInvalidAgentResponse
	}
	if strings.TrimSpace(asObject.Content) == "" {
		return domain.AgentAnswer{}, ErrInvalidAgentResponse
	}
	return domain.AgentAnswer{Content: asObject.Content, References: asObject.References}, nil
}
