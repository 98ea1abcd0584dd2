package capture

import "sync/atomic"

// Stats tracks capture loop counters. All counters are atomic so the status
// server can snapshot them while the loop runs.
type Stats struct {
	ticks        atomic.Uint64
	sent         atomic.Uint64
	dropped      atomic.Uint64
	empty        atomic.Uint64
	encodeErrors atomic.Uint64
	sendErrors   atomic.Uint64
	reacquired   atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the loop counters.
type StatsSnapshot struct {
	Ticks            uint64 `json:"ticks"`
	FramesSent       uint64 `json:"frames_sent"`
	FramesDropped    uint64 `json:"frames_dropped"`
	EmptyFrames      uint64 `json:"empty_frames"`
	EncodeErrors     uint64 `json:"encode_errors"`
	SendErrors       uint64 `json:"send_errors"`
	CameraReacquired uint64 `json:"camera_reacquired"`
}

// Snapshot returns a consistent-enough copy for reporting. Counters are read
// individually; the loop may advance between reads.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Ticks:            s.ticks.Load(),
		FramesSent:       s.sent.Load(),
		FramesDropped:    s.dropped.Load(),
		EmptyFrames:      s.empty.Load(),
		EncodeErrors:     s.encodeErrors.Load(),
		SendErrors:       s.sendErrors.Load(),
		CameraReacquired: s.reacquired.Load(),
	}
}
