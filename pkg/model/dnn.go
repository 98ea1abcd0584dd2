package model

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// DNNConfig holds settings for a DNN session.
type DNNConfig struct {
	// Path is the ONNX model artifact location.
	Path string

	// InputWidth and InputHeight define the input tensor plane the
	// graph expects. Frames are resized to this during tensorization.
	InputWidth  int
	InputHeight int
}

// DNNSession runs an ONNX graph on CPU via the OpenCV DNN module.
type DNNSession struct {
	net       gocv.Net
	inputSize image.Point
}

// LoadDNN loads and validates the model graph from cfg.Path.
// It returns an error rather than retrying; the acquisition retry policy
// lives in the agent.
func LoadDNN(cfg DNNConfig) (*DNNSession, error) {
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return nil, fmt.Errorf("model: input shape must be positive, got %dx%d",
			cfg.InputWidth, cfg.InputHeight)
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("model: artifact %s: %w", cfg.Path, err)
	}

	net := gocv.ReadNetFromONNX(cfg.Path)
	if net.Empty() {
		return nil, fmt.Errorf("model: failed to load graph from %s", cfg.Path)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNNSession{
		net:       net,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Infer decodes the frame, tensorizes it to the configured input plane and
// runs the graph. Decode failures are reported as ErrDecode.
func (s *DNNSession) Infer(frame []byte) ([]Tensor, error) {
	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("%w: no image data in %d bytes", ErrDecode, len(frame))
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0, s.inputSize,
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	out := s.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("model: read output tensor: %w", err)
	}

	t := Tensor{
		Shape: out.Size(),
		Data:  make([]float32, len(data)),
	}
	copy(t.Data, data)

	return []Tensor{t}, nil
}

// Close releases the network.
func (s *DNNSession) Close() error {
	return s.net.Close()
}
