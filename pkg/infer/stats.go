package infer

import "sync/atomic"

// Stats tracks inference loop counters. All counters are atomic so the
// status server can snapshot them while the loop runs.
type Stats struct {
	received     atomic.Uint64
	recvErrors   atomic.Uint64
	decodeErrors atomic.Uint64
	inferenceOK  atomic.Uint64
	inferenceErr atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the loop counters.
type StatsSnapshot struct {
	FramesReceived  uint64 `json:"frames_received"`
	ReceiveErrors   uint64 `json:"receive_errors"`
	DecodeErrors    uint64 `json:"decode_errors"`
	InferenceOK     uint64 `json:"inference_ok"`
	InferenceErrors uint64 `json:"inference_errors"`
}

// Snapshot returns a consistent-enough copy for reporting. Counters are read
// individually; the loop may advance between reads.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		FramesReceived:  s.received.Load(),
		ReceiveErrors:   s.recvErrors.Load(),
		DecodeErrors:    s.decodeErrors.Load(),
		InferenceOK:     s.inferenceOK.Load(),
		InferenceErrors: s.inferenceErr.Load(),
	}
}
