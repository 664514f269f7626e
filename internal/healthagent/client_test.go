package healthagent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDecodeResponse_StringResponse(t *testing.T) {
	body := []byte(`{"response":"hi there","timestamp":"2025-03-01T12:00:00Z"}`)
	resp, err := DecodeResponse(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer.Content != "hi there" {
		t.Fatalf("unexpected content: %q", resp.Answer.Content)
	}
	if len(resp.Answer.References) != 0 {
		t.Fatalf("expected no references")
	}
	want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if !resp.Timestamp.Equal(want) {
		t.Fatalf("unexpected timestamp: %v", resp.Timestamp)
	}
}

func TestDecodeResponse_ObjectResponse(t *testing.T) {
	body := []byte(`{
		"response": {"content": "drink water", "references": ["https://example.org/a", "https://example.org/b"]},
		"isLoopbackQuestion": true,
		"isEmergency": true,
		"messageType": "followup",
		"remainingQuestions": 2
	}`)
	resp, err := DecodeResponse(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer.Content != "drink water" {
		t.Fatalf("unexpected content: %q", resp.Answer.Content)
	}
	if len(resp.Answer.References) != 2 {
		t.Fatalf("expected 2 references, got %d", len(resp.Answer.References))
	}
	if !resp.IsLoopbackQuestion || !resp.IsEmergency || resp.MessageType != "followup" || resp.RemainingQuestions != 2 {
		t.Fatalf("flags not carried: %+v", resp)
	}
}

func TestDecodeResponse_PlainTextBody(t *testing.T) {
	resp, err := DecodeResponse([]byte("just some text"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer.Content != "just some text" {
		t.Fatalf("unexpected content: %q", resp.Answer.Content)
	}
	if resp.Timestamp.IsZero() {
		t.Fatalf("plain text body should get a local timestamp")
	}
}

func TestDecodeResponse_MissingResponseField(t *testing.T) {
	if _, err := DecodeResponse([]byte(`{"timestamp":"2025-03-01T12:00:00Z"}`)); !errors.Is(err, ErrInvalidAgentResponse) {
		t.Fatalf("expected ErrInvalidAgentResponse, got %v", err)
	}
	if _, err := DecodeResponse([]byte(`{"response":""}`)); !errors.Is(err, ErrInvalidAgentResponse) {
		t.Fatalf("expected ErrInvalidAgentResponse for empty string, got %v", err)
	}
	if _, err := DecodeResponse([]byte(`{"response":{"references":["x"]}}`)); !errors.Is(err, ErrInvalidAgentResponse) {
		t.Fatalf("expected ErrInvalidAgentResponse for object without content, got %v", err)
	}
}

func TestDecodeResponse_BadTimestampFallsBack(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"response":"ok","timestamp":"not-a-time"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Timestamp.IsZero() {
		t.Fatalf("bad timestamp should fall back to local time")
	}
}

func TestHTTPClient_Query(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hi there","timestamp":"2025-03-01T12:00:00Z"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, zap.NewNop())
	resp, err := client.Query(context.Background(), "hello", "u1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if gotPath != "/api/health-query" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotBody["query"] != "hello" || gotBody["userId"] != "u1" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if resp.Answer.Content != "hi there" {
		t.Fatalf("unexpected content: %q", resp.Answer.Content)
	}
}

func TestHTTPClient_QueryUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "secret upstream detail", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, zap.NewNop())
	_, err := client.Query(context.Background(), "hello", "u1")
	if !errors.Is(err, ErrAgentUnavailable) {
		t.Fatalf("expected ErrAgentUnavailable, got %v", err)
	}
}
