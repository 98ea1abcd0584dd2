package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edgewire/framecast/pkg/camera"
	"github.com/edgewire/framecast/pkg/retry"
	"github.com/edgewire/framecast/pkg/transport"
)

// testPolicy keeps acquisition retries fast in tests.
var testPolicy = retry.Policy{Interval: time.Millisecond}

func runAgent(t *testing.T, ctx context.Context, cfg Config) (*Agent, <-chan error) {
	t.Helper()
	agent := New(cfg)
	errs := make(chan error, 1)
	go func() {
		errs <- agent.Run(ctx)
	}()
	return agent, errs
}

func waitStopped(t *testing.T, errs <-chan error) {
	t.Helper()
	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not stop")
	}
}

func TestAgent_EmptyFramesSwallowed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opens := 0
	reads := 0
	cam := &camera.Mock{ReadFunc: func() ([]byte, error) {
		reads++
		if reads >= 20 {
			cancel()
		}
		if reads%3 == 0 {
			return nil, camera.ErrEmptyFrame
		}
		return []byte("frame"), nil
	}}

	sender := &transport.MockSender{}
	agent, errs := runAgent(t, ctx, Config{
		OpenSender: func() (transport.Sender, error) { return sender, nil },
		OpenCamera: func() (camera.Device, error) {
			opens++
			return cam, nil
		},
		Tick:    time.Millisecond,
		Acquire: testPolicy,
	})
	waitStopped(t, errs)

	snap := agent.Snapshot()
	if snap.EmptyFrames == 0 {
		t.Error("EmptyFrames: got 0, want > 0")
	}
	if snap.Ticks < 20 {
		t.Errorf("Ticks: got %d, want >= 20 (loop must keep iterating)", snap.Ticks)
	}
	if opens != 1 {
		t.Errorf("camera opens: got %d, want 1 (empty frames must not replace the device)", opens)
	}
	if snap.CameraReacquired != 0 {
		t.Errorf("CameraReacquired: got %d, want 0", snap.CameraReacquired)
	}
}

func TestAgent_EncodeFailureSwallowed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opens := 0
	reads := 0
	cam := &camera.Mock{ReadFunc: func() ([]byte, error) {
		reads++
		if reads >= 10 {
			cancel()
		}
		return nil, fmt.Errorf("%w: corrupt buffer", camera.ErrEncode)
	}}

	agent, errs := runAgent(t, ctx, Config{
		OpenSender: func() (transport.Sender, error) { return &transport.MockSender{}, nil },
		OpenCamera: func() (camera.Device, error) {
			opens++
			return cam, nil
		},
		Tick:    time.Millisecond,
		Acquire: testPolicy,
	})
	waitStopped(t, errs)

	snap := agent.Snapshot()
	if snap.EncodeErrors == 0 {
		t.Error("EncodeErrors: got 0, want > 0")
	}
	if opens != 1 {
		t.Errorf("camera opens: got %d, want 1", opens)
	}
}

func TestAgent_ReadFaultTriggersSingleReacquire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opens := 0
	dead := &camera.Mock{}
	reads := 0
	dead.ReadFunc = func() ([]byte, error) {
		reads++
		if reads == 3 {
			return nil, errors.New("device disconnected")
		}
		return []byte("frame"), nil
	}
	replacement := &camera.Mock{ReadFunc: func() ([]byte, error) {
		cancel()
		return []byte("frame"), nil
	}}

	agent, errs := runAgent(t, ctx, Config{
		OpenSender: func() (transport.Sender, error) { return &transport.MockSender{}, nil },
		OpenCamera: func() (camera.Device, error) {
			opens++
			if opens == 1 {
				return dead, nil
			}
			return replacement, nil
		},
		Tick:    time.Millisecond,
		Acquire: testPolicy,
	})
	waitStopped(t, errs)

	if opens != 2 {
		t.Errorf("camera opens: got %d, want 2 (startup + one re-acquisition)", opens)
	}
	if dead.Closes() != 1 {
		t.Errorf("dead device closes: got %d, want 1", dead.Closes())
	}
	if got := agent.Snapshot().CameraReacquired; got != 1 {
		t.Errorf("CameraReacquired: got %d, want 1", got)
	}
	if replacement.Reads() == 0 {
		t.Error("replacement device was never read")
	}
}

func TestAgent_SendEndpointAcquiredWithRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sendAttempts := 0
	cam := &camera.Mock{ReadFunc: func() ([]byte, error) {
		cancel()
		return []byte("frame"), nil
	}}

	agent, errs := runAgent(t, ctx, Config{
		OpenSender: func() (transport.Sender, error) {
			sendAttempts++
			if sendAttempts <= 3 {
				return nil, errors.New("address in use")
			}
			return &transport.MockSender{}, nil
		},
		OpenCamera: func() (camera.Device, error) { return cam, nil },
		Tick:       time.Millisecond,
		Acquire:    testPolicy,
	})
	waitStopped(t, errs)

	if sendAttempts != 4 {
		t.Errorf("sender open attempts: got %d, want 4", sendAttempts)
	}
	if agent.Snapshot().Ticks == 0 {
		t.Error("loop never ran after delayed endpoint acquisition")
	}
}

func TestAgent_BackpressureDropsFramesNotProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const totalFrames = 100
	pipe := transport.NewPipe(4)

	produced := make([][]byte, 0, totalFrames)
	reads := 0
	cam := &camera.Mock{ReadFunc: func() ([]byte, error) {
		reads++
		if reads > totalFrames {
			cancel()
			return nil, camera.ErrEmptyFrame
		}
		frame := []byte(fmt.Sprintf("frame-%03d payload 0xdeadbeef", reads))
		produced = append(produced, frame)
		return frame, nil
	}}

	// Consumer is slow for its first frames, then keeps up.
	var mu sync.Mutex
	var delivered [][]byte
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			frame, err := pipe.Recv()
			if err != nil {
				return
			}
			mu.Lock()
			n := len(delivered)
			delivered = append(delivered, frame)
			mu.Unlock()
			if n < 10 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	agent, errs := runAgent(t, ctx, Config{
		OpenSender: func() (transport.Sender, error) { return pipe, nil },
		OpenCamera: func() (camera.Device, error) { return cam, nil },
		Tick:       time.Millisecond,
		Acquire:    testPolicy,
	})
	waitStopped(t, errs)

	pipe.Close()
	select {
	case <-consumerDone:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the pipe")
	}

	snap := agent.Snapshot()
	if snap.FramesDropped == 0 {
		t.Error("FramesDropped: got 0, want > 0 under backpressure")
	}
	if len(delivered) >= totalFrames {
		t.Errorf("delivered: got %d, want fewer than %d", len(delivered), totalFrames)
	}
	if uint64(len(delivered)) != snap.FramesSent {
		t.Errorf("delivered %d frames but FramesSent is %d", len(delivered), snap.FramesSent)
	}

	// Delivered frames must be an in-order, byte-identical subsequence of
	// what the camera produced.
	i := 0
	for _, frame := range delivered {
		for i < len(produced) && !bytes.Equal(produced[i], frame) {
			i++
		}
		if i == len(produced) {
			t.Fatalf("delivered frame %q is not an in-order copy of any produced frame", frame)
		}
		i++
	}
}
