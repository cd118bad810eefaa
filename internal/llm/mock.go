package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error

	mu       sync.Mutex
	Calls    int
	Requests []ChatRequest
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return m.Chat(ctx, ChatRequest{Messages: []Message{{Role: RoleUser, Content: prompt}}})
}

func (m *MockClient) Chat(_ context.Context, req ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Requests = append(m.Requests, req)
	return m.Response, m.Err
}

// LastRequest devuelve la ultima peticion recibida o una vacia.
func (m *MockClient) LastRequest() ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return ChatRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}

// LastPrompt concatena el contenido de la ultima peticion (system + user).
func (m *MockClient) LastPrompt() string {
	req := m.LastRequest()
	out := ""
	for _, msg := range req.Messages {
		out += msg.Content + "\n"
	}
	return out
}
