// Package capture implements the capture agent: a single-threaded service
// loop that owns one camera device and one outbound channel endpoint.
//
// The loop publishes a steady ~30 FPS stream of compressed frames and never
// lets a stalled consumer or a transient per-frame fault block acquisition:
// frames the transport cannot take right now are dropped, empty captures and
// encode failures are skipped, and a camera read fault replaces the device
// wholesale. Endpoint and camera acquisition block with fixed-interval retry
// and no upper bound — a capture node with no egress is useless, so it keeps
// trying until an operator intervenes.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edgewire/framecast/internal/log"
	"github.com/edgewire/framecast/pkg/camera"
	"github.com/edgewire/framecast/pkg/retry"
	"github.com/edgewire/framecast/pkg/transport"
)

// Loop defaults matching the deployed cadence.
const (
	// DefaultTick is the per-frame pacing delay, approximating 30 FPS.
	DefaultTick = 33 * time.Millisecond

	// DefaultAcquireInterval is the retry interval for endpoint and
	// camera acquisition.
	DefaultAcquireInterval = time.Second
)

// Config wires an Agent's collaborators.
type Config struct {
	// OpenSender binds the send endpoint. Called once at startup with
	// unbounded retry; the endpoint is held for the process lifetime.
	OpenSender func() (transport.Sender, error)

	// OpenCamera opens the capture device. Called at startup and again
	// after every read fault, with unbounded retry.
	OpenCamera func() (camera.Device, error)

	// Tick is the per-frame pacing delay. Defaults to DefaultTick.
	Tick time.Duration

	// Acquire is the retry policy for both resources.
	// Interval defaults to DefaultAcquireInterval.
	Acquire retry.Policy
}

// Agent runs the capture service loop.
type Agent struct {
	id       string
	cfg      Config
	stats    Stats
	frameTap func(frame []byte)
}

// New creates a capture agent. OpenSender and OpenCamera are required.
func New(cfg Config) *Agent {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Acquire.Interval <= 0 {
		cfg.Acquire.Interval = DefaultAcquireInterval
	}
	return &Agent{
		id:  uuid.NewString(),
		cfg: cfg,
	}
}

// ID returns the agent's per-process instance ID.
func (a *Agent) ID() string {
	return a.id
}

// Snapshot returns the current loop counters.
func (a *Agent) Snapshot() StatsSnapshot {
	return a.stats.Snapshot()
}

// SetFrameTap installs an observer that sees every captured frame before it
// is sent. Used for the status server's live preview. Must be called before
// Run.
func (a *Agent) SetFrameTap(tap func(frame []byte)) {
	a.frameTap = tap
}

// Run acquires the send endpoint and the camera, then drives the capture
// loop until ctx is cancelled. Steady-state faults never escape; the only
// returned errors are ctx cancellation.
func (a *Agent) Run(ctx context.Context) error {
	sender, err := retry.Acquire(ctx, "send endpoint", a.cfg.Acquire, a.cfg.OpenSender)
	if err != nil {
		return err
	}
	defer sender.Close()

	cam, err := retry.Acquire(ctx, "camera", a.cfg.Acquire, a.cfg.OpenCamera)
	if err != nil {
		return err
	}
	defer func() {
		if cam != nil {
			cam.Close()
		}
	}()

	logger := log.With("agent", "capture", "id", a.id)
	logger.Info("capture loop started", "tick", a.cfg.Tick)

	for {
		a.stats.ticks.Add(1)

		cam, err = a.serviceTick(ctx, cam, sender, logger)
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.cfg.Tick):
		}
	}
}

// serviceTick captures, encodes and publishes one frame. It returns the
// device to use next tick: the same handle normally, a replacement after a
// read fault. Only ctx cancellation produces an error.
func (a *Agent) serviceTick(ctx context.Context, cam camera.Device, sender transport.Sender, logger *slog.Logger) (camera.Device, error) {
	frame, err := cam.Read()
	switch {
	case err == nil:
		if tap := a.frameTap; tap != nil {
			tap(frame)
		}
		a.publish(frame, sender, logger)

	case errors.Is(err, camera.ErrEmptyFrame):
		a.stats.empty.Add(1)
		logger.Warn("empty frame captured, skipping")

	case errors.Is(err, camera.ErrEncode):
		a.stats.encodeErrors.Add(1)
		logger.Warn("frame encode failed, skipping", "error", err)

	default:
		// Device fault: the handle is replaced wholesale, not repaired.
		a.stats.reacquired.Add(1)
		logger.Error("camera read failed, re-acquiring device", "error", err)
		cam.Close()
		return retry.Acquire(ctx, "camera", a.cfg.Acquire, a.cfg.OpenCamera)
	}

	return cam, nil
}

// publish hands one frame to the transport. Frames the transport cannot
// take now are dropped; the loop never waits for the consumer.
func (a *Agent) publish(frame []byte, sender transport.Sender, logger *slog.Logger) {
	switch err := sender.Send(frame); {
	case err == nil:
		a.stats.sent.Add(1)

	case errors.Is(err, transport.ErrWouldBlock):
		a.stats.dropped.Add(1)
		logger.Warn("consumer not keeping up, frame dropped", "bytes", len(frame))

	default:
		a.stats.sendErrors.Add(1)
		logger.Warn("frame send failed, skipping", "error", err)
	}
}
