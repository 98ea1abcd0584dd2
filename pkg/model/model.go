// Package model provides the inference session resource for the inference
// agent.
//
// A Session holds a loaded, validated model graph. It is acquired once at
// startup and assumed durable: per-frame decode and inference failures are
// reported to the caller and never invalidate the session.
package model

import (
	"errors"

	"github.com/edgewire/framecast/internal/log"
)

// ErrDecode marks a frame that could not be decoded into the model's input
// tensor shape. It is a per-frame error, not a session fault.
var ErrDecode = errors.New("model: frame decode failed")

// Tensor is one numeric output of a model run.
type Tensor struct {
	// Shape is the tensor's dimensions, outermost first.
	Shape []int

	// Data is the flattened tensor values.
	Data []float32
}

// Len returns the number of values in the tensor.
func (t Tensor) Len() int {
	return len(t.Data)
}

// Session is a loaded model graph ready to run.
type Session interface {
	// Infer decodes one compressed frame into the model's input tensor
	// and runs the graph synchronously, returning the output tensors.
	Infer(frame []byte) ([]Tensor, error)

	// Close releases the session.
	Close() error
}

// Sink consumes inference results. Results are ephemeral; the pipeline
// itself never persists them.
type Sink func(frame uint64, outputs []Tensor)

// LogSink returns a Sink that writes a one-line summary per result.
func LogSink() Sink {
	return func(frame uint64, outputs []Tensor) {
		values := 0
		for _, t := range outputs {
			values += t.Len()
		}
		log.Info("inference result",
			"frame", frame, "outputs", len(outputs), "values", values)
	}
}
