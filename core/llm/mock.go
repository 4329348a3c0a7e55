package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned MockClient answer.
type MockResponse struct {
	Content string
	Err     error
}

// MockClient answers from canned responses in FIFO order and records every request.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

var _ Client = (*MockClient)(nil)

func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

// Generate returns the next canned response, or ErrProviderUnavailable once they are exhausted.
func (m *MockClient) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{Content: resp.Content, Model: "mock", StopReason: "end"}, nil
}

func (m *MockClient) ModelID() string { return "mock" }

func (m *MockClient) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
