package model

import "sync"

// MockSession implements Session for testing.
// Behavior is customized via function fields; calls are recorded.
type MockSession struct {
	// InferFunc is called when Infer is invoked.
	// If nil, returns a single 1x4 tensor of zeros.
	InferFunc func(frame []byte) ([]Tensor, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu     sync.Mutex
	infers int
	closes int
}

// Infer calls InferFunc and records the call.
func (m *MockSession) Infer(frame []byte) ([]Tensor, error) {
	m.mu.Lock()
	m.infers++
	m.mu.Unlock()
	if m.InferFunc != nil {
		return m.InferFunc(frame)
	}
	return []Tensor{{Shape: []int{1, 4}, Data: make([]float32, 4)}}, nil
}

// Close calls CloseFunc and records the call.
func (m *MockSession) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Infers returns how many times Infer was called.
func (m *MockSession) Infers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infers
}

// Closes returns how many times Close was called.
func (m *MockSession) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}
