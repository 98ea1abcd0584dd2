package transport

import (
	"fmt"
	"syscall"

	zmq "github.com/pebbe/zmq4"
)

// PushSender is a ZeroMQ PUSH endpoint bound at a local address.
type PushSender struct {
	sock *zmq.Socket
	addr string
}

// NewPushSender creates a PUSH socket and binds it at addr
// (e.g. "tcp://*:5555"). Creation and bind failures are returned to the
// caller; the retry policy lives in the agent, not here.
func NewPushSender(addr string) (*PushSender, error) {
	sock, err := zmq.NewSocket(zmq.PUSH)
	if err != nil {
		return nil, fmt.Errorf("transport: create push socket: %w", err)
	}
	if err := sock.Bind(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("transport: bind %s: %w", addr, err)
	}
	return &PushSender{sock: sock, addr: addr}, nil
}

// Send transmits one frame with DONTWAIT. A full high-water mark or an
// absent peer surfaces as ErrWouldBlock.
func (s *PushSender) Send(frame []byte) error {
	_, err := s.sock.SendBytes(frame, zmq.DONTWAIT)
	if err == nil {
		return nil
	}
	if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) {
		return ErrWouldBlock
	}
	return fmt.Errorf("transport: send on %s: %w", s.addr, err)
}

// Close releases the socket.
func (s *PushSender) Close() error {
	return s.sock.Close()
}

// PullReceiver is a ZeroMQ PULL endpoint connected to a remote address.
type PullReceiver struct {
	sock *zmq.Socket
	addr string
}

// NewPullReceiver creates a PULL socket and connects it to addr
// (e.g. "tcp://localhost:5555").
func NewPullReceiver(addr string) (*PullReceiver, error) {
	sock, err := zmq.NewSocket(zmq.PULL)
	if err != nil {
		return nil, fmt.Errorf("transport: create pull socket: %w", err)
	}
	if err := sock.Connect(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("transport: connect %s: %w", addr, err)
	}
	return &PullReceiver{sock: sock, addr: addr}, nil
}

// Recv blocks until one frame arrives.
func (r *PullReceiver) Recv() ([]byte, error) {
	frame, err := r.sock.RecvBytes(0)
	if err != nil {
		return nil, fmt.Errorf("transport: recv on %s: %w", r.addr, err)
	}
	return frame, nil
}

// Close releases the socket, unblocking a pending Recv.
func (r *PullReceiver) Close() error {
	return r.sock.Close()
}
