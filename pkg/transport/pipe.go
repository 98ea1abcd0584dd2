package transport

import "sync"

// Pipe is an in-process channel with the same semantics as the wire
// endpoints: bounded depth, non-blocking send that drops under
// backpressure, blocking receive. Frames are copied on Send so the
// receiver always gets an independent buffer.
type Pipe struct {
	ch chan []byte

	mu     sync.Mutex
	closed bool
}

// NewPipe creates a pipe holding at most depth in-flight frames.
func NewPipe(depth int) *Pipe {
	if depth < 1 {
		depth = 1
	}
	return &Pipe{ch: make(chan []byte, depth)}
}

// Send enqueues a copy of frame. It returns ErrWouldBlock immediately when
// the pipe is full and ErrClosed after Close.
func (p *Pipe) Send(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	buf := make([]byte, len(frame))
	copy(buf, frame)

	select {
	case p.ch <- buf:
		return nil
	default:
		return ErrWouldBlock
	}
}

// Recv blocks until a frame arrives. It returns ErrClosed once the pipe is
// closed and drained.
func (p *Pipe) Recv() ([]byte, error) {
	frame, ok := <-p.ch
	if !ok {
		return nil, ErrClosed
	}
	return frame, nil
}

// Close shuts the pipe. Frames already enqueued remain receivable.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.ch)
	return nil
}
