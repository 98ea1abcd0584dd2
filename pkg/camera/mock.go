package camera

import "sync"

// Mock implements Device for testing.
// Behavior is customized via function fields; calls are recorded.
type Mock struct {
	// ReadFunc is called when Read is invoked.
	// If nil, Read returns a small static frame.
	ReadFunc func() ([]byte, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu     sync.Mutex
	reads  int
	closes int
}

// Read calls ReadFunc and records the call.
func (m *Mock) Read() ([]byte, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	if m.ReadFunc != nil {
		return m.ReadFunc()
	}
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Reads returns how many times Read was called.
func (m *Mock) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Closes returns how many times Close was called.
func (m *Mock) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}
