// Package infer implements the inference agent: a single-threaded service
// loop that owns one receive channel endpoint and one loaded model session.
//
// The loop blocks on receive — the consumer has nothing better to do while
// idle — and transforms each arriving frame into a result sequence. Two
// failure severities are kept strictly apart: endpoint and model acquisition
// failures are infinitely retried startup gates, while per-frame failures
// (bad receive, bad decode, inference error) are logged and skipped. The
// endpoint is never re-acquired after startup and inference errors never
// invalidate the loaded session.
package infer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edgewire/framecast/internal/log"
	"github.com/edgewire/framecast/pkg/model"
	"github.com/edgewire/framecast/pkg/retry"
	"github.com/edgewire/framecast/pkg/transport"
)

// Acquisition and recovery defaults. Model loads retry more slowly than the
// endpoint: they usually wait for a deployment to land a file, not for a
// socket to free up.
const (
	// DefaultChannelInterval is the receive endpoint acquisition retry
	// interval.
	DefaultChannelInterval = 2 * time.Second

	// DefaultModelInterval is the model load retry interval.
	DefaultModelInterval = 5 * time.Second

	// DefaultRecvRetryDelay is the pause after a failed receive before
	// retrying the same endpoint.
	DefaultRecvRetryDelay = time.Second
)

// Config wires an Agent's collaborators.
type Config struct {
	// OpenReceiver connects the receive endpoint. Called once at startup
	// with unbounded retry; the endpoint is held for the process
	// lifetime and never re-acquired.
	OpenReceiver func() (transport.Receiver, error)

	// LoadModel loads and validates the model session. Called once at
	// startup with unbounded retry.
	LoadModel func() (model.Session, error)

	// Sink receives each inference result. Defaults to model.LogSink.
	Sink model.Sink

	// Channel is the endpoint acquisition retry policy.
	// Interval defaults to DefaultChannelInterval.
	Channel retry.Policy

	// Model is the model acquisition retry policy.
	// Interval defaults to DefaultModelInterval.
	Model retry.Policy

	// RecvRetryDelay is the pause after a failed receive.
	// Defaults to DefaultRecvRetryDelay.
	RecvRetryDelay time.Duration
}

// Agent runs the inference service loop.
type Agent struct {
	id    string
	cfg   Config
	stats Stats
}

// New creates an inference agent. OpenReceiver and LoadModel are required.
func New(cfg Config) *Agent {
	if cfg.Sink == nil {
		cfg.Sink = model.LogSink()
	}
	if cfg.Channel.Interval <= 0 {
		cfg.Channel.Interval = DefaultChannelInterval
	}
	if cfg.Model.Interval <= 0 {
		cfg.Model.Interval = DefaultModelInterval
	}
	if cfg.RecvRetryDelay <= 0 {
		cfg.RecvRetryDelay = DefaultRecvRetryDelay
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

// Run acquires the receive endpoint and the model session, then drives the
// inference loop until ctx is cancelled. Per-frame faults never escape.
func (a *Agent) Run(ctx context.Context) error {
	recv, err := retry.Acquire(ctx, "receive endpoint", a.cfg.Channel, a.cfg.OpenReceiver)
	if err != nil {
		return err
	}
	defer recv.Close()

	// Recv blocks with no deadline; closing the endpoint is the only way
	// to unhook the loop when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() { recv.Close() })
	defer stop()

	sess, err := retry.Acquire(ctx, "model session", a.cfg.Model, a.cfg.LoadModel)
	if err != nil {
		return err
	}
	defer sess.Close()

	logger := log.With("agent", "infer", "id", a.id)
	logger.Info("inference loop started")

	var frames uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := recv.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.stats.recvErrors.Add(1)
			logger.Warn("frame receive failed, retrying",
				"error", err, "delay", a.cfg.RecvRetryDelay)
			if err := sleep(ctx, a.cfg.RecvRetryDelay); err != nil {
				return err
			}
			continue
		}

		frames++
		a.stats.received.Add(1)

		outputs, err := sess.Infer(frame)
		switch {
		case err == nil:
			a.stats.inferenceOK.Add(1)
			a.cfg.Sink(frames, outputs)

		case errors.Is(err, model.ErrDecode):
			a.stats.decodeErrors.Add(1)
			logger.Warn("frame decode failed, skipping",
				"frame", frames, "bytes", len(frame), "error", err)

		default:
			a.stats.inferenceErr.Add(1)
			logger.Warn("inference failed, skipping",
				"frame", frames, "error", err)
		}
	}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
