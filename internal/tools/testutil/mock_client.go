package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/bamboo"
)

// Call records one request made through MockClient
type Call struct {
	Method string // GET_JSON, GET_BINARY, POST, PUT or DELETE
	Path   string
	Params bamboo.Params
	Body   any
}

// MockClient is a mock implementation of tools.BambooClient for testing.
// Each method delegates to its function field when set; otherwise it
// succeeds with an empty response.
type MockClient struct {
	GetJSONFunc   func(ctx context.Context, path string, params bamboo.Params, out any) error
	GetBinaryFunc func(ctx context.Context, path string, params bamboo.Params) ([]byte, error)
	PostFunc      func(ctx context.Context, path string, body, out any) error
	PutFunc       func(ctx context.Context, path string, body, out any) error
	DeleteFunc    func(ctx context.Context, path string, out any) error

	mu    sync.Mutex
	calls []Call
}

func (m *MockClient) record(call Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the recorded calls in order
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) GetJSON(ctx context.Context, path string, params bamboo.Params, out any) error {
	m.record(Call{Method: "GET_JSON", Path: path, Params: params})
	if m.GetJSONFunc != nil {
		return m.GetJSONFunc(ctx, path, params, out)
	}
	return nil
}

func (m *MockClient) GetBinary(ctx context.Context, path string, params bamboo.Params) ([]byte, error) {
	m.record(Call{Method: "GET_BINARY", Path: path, Params: params})
	if m.GetBinaryFunc != nil {
		return m.GetBinaryFunc(ctx, path, params)
	}
	return []byte{}, nil
}

func (m *MockClient) Post(ctx context.Context, path string, body, out any) error {
	m.record(Call{Method: "POST", Path: path, Body: body})
	if m.PostFunc != nil {
		return m.PostFunc(ctx, path, body, out)
	}
	return nil
}

func (m *MockClient) Put(ctx context.Context, path string, body, out any) error {
	m.record(Call{Method: "PUT", Path: path, Body: body})
	if m.PutFunc != nil {
		return m.PutFunc(ctx, path, body, out)
	}
	return nil
}

func (m *MockClient) Delete(ctx context.Context, path string, out any) error {
	m.record(Call{Method: "DELETE", Path: path})
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path, out)
	}
	return nil
}

// Respond decodes the JSON encoding of v into out, the way the real
// client decodes a response body.
func Respond(out any, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// JSONResponse returns a GetJSONFunc that always answers with v
func JSONResponse(v any) func(context.Context, string, bamboo.Params, any) error {
	return func(_ context.Context, _ string, _ bamboo.Params, out any) error {
		return Respond(out, v)
	}
}
