// Package camera provides the capture device resource for the capture agent.
//
// A Device is an exclusive, long-lived session on one physical camera. It is
// acquired once and held across many capture ticks; on a read fault it is
// replaced wholesale, never repaired. Empty captures and encode failures are
// per-frame conditions that leave the device untouched.
package camera

import "errors"

// Per-frame conditions. Any Read error that is not one of these means the
// device is dead and must be re-acquired.
var (
	// ErrEmptyFrame is returned when the device delivered no image data.
	// Rare and transient; the frame is skipped without backoff.
	ErrEmptyFrame = errors.New("camera: empty frame")

	// ErrEncode is returned when a captured image could not be
	// compressed. The frame is skipped.
	ErrEncode = errors.New("camera: encode failed")
)

// Device is a single open capture session.
type Device interface {
	// Read captures one frame and returns it as compressed image bytes.
	// ErrEmptyFrame and ErrEncode are skippable per-frame conditions;
	// any other error means the device must be replaced.
	Read() ([]byte, error)

	// Close releases the device.
	Close() error
}
