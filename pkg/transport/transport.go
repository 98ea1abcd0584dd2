// Package transport provides the unidirectional frame channel between the
// capture agent and the inference agent.
//
// The channel is best effort: a single producer pushes opaque frame bytes
// to a single consumer with no delivery, ordering-under-loss, or
// exactly-once guarantee. The producer side never blocks; when the consumer
// is not keeping up the frame is dropped, never queued. The consumer side
// blocks until a frame arrives.
//
// Two implementations exist: ZeroMQ PUSH/PULL endpoints for the wire
// (PushSender, PullReceiver) and an in-process Pipe with identical
// semantics for composition and tests.
package transport

import "errors"

// Sentinel errors for channel conditions.
var (
	// ErrWouldBlock is returned by Send when the consumer is not keeping
	// up. The frame is dropped; callers must not retry it.
	ErrWouldBlock = errors.New("transport: send would block")

	// ErrClosed is returned after an endpoint has been closed.
	ErrClosed = errors.New("transport: endpoint closed")
)

// Sender is the producer-side channel endpoint.
// It is owned by a single goroutine for its entire lifetime.
type Sender interface {
	// Send transmits one frame without blocking. It returns
	// ErrWouldBlock when the transport cannot accept the frame now.
	Send(frame []byte) error

	// Close releases the endpoint.
	Close() error
}

// Receiver is the consumer-side channel endpoint.
// It is owned by a single goroutine for its entire lifetime.
type Receiver interface {
	// Recv blocks until one frame arrives and returns an independent
	// copy of its bytes.
	Recv() ([]byte, error)

	// Close releases the endpoint. Closing unblocks a pending Recv.
	Close() error
}
