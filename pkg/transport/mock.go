package transport

import "sync"

// MockSender implements Sender for testing.
// Behavior is customized via function fields; calls are recorded.
type MockSender struct {
	// SendFunc is called when Send is invoked.
	// If nil, the frame is accepted and recorded.
	SendFunc func(frame []byte) error

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu     sync.Mutex
	sent   [][]byte
	closes int
}

// Send calls SendFunc and records accepted frames.
func (m *MockSender) Send(frame []byte) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(frame); err != nil {
			return err
		}
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	m.mu.Lock()
	m.sent = append(m.sent, buf)
	m.mu.Unlock()
	return nil
}

// Close calls CloseFunc and records the call.
func (m *MockSender) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Sent returns the frames accepted so far.
func (m *MockSender) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// Closes returns how many times Close was called.
func (m *MockSender) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// MockReceiver implements Receiver for testing.
type MockReceiver struct {
	// RecvFunc is called when Recv is invoked.
	// If nil, Recv returns ErrClosed.
	RecvFunc func() ([]byte, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu     sync.Mutex
	recvs  int
	closes int
}

// Recv calls RecvFunc and records the call.
func (m *MockReceiver) Recv() ([]byte, error) {
	m.mu.Lock()
	m.recvs++
	m.mu.Unlock()
	if m.RecvFunc != nil {
		return m.RecvFunc()
	}
	return nil, ErrClosed
}

// Close calls CloseFunc and records the call.
func (m *MockReceiver) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Recvs returns how many times Recv was called.
func (m *MockReceiver) Recvs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recvs
}
