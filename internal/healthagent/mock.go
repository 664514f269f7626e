package healthagent

import (
	"context"

	"perplexacare/internal/domain"
)

// MockClient permite tests sin llamar al health agent real.
type MockClient struct {
	Response domain.QueryResponse
	Err      error
	Calls    int
}

func (m *MockClient) Query(ctx context.Context, query, userID string) (domain.QueryResponse, error) {
	m.Calls++
	return m.Response, m.Err
}
