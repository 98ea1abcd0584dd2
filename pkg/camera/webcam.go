package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// Webcam is a Device backed by a local video capture device.
type Webcam struct {
	cap   *gocv.VideoCapture
	frame gocv.Mat
	index int
}

// OpenWebcam opens the capture device at index and requests the given
// resolution. The resolution request is best effort: devices that cannot
// honor it still open, just degraded.
func OpenWebcam(index, width, height int) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", index, err)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(height))

	return &Webcam{
		cap:   cap,
		frame: gocv.NewMat(),
		index: index,
	}, nil
}

// Read captures one frame and encodes it as JPEG.
func (w *Webcam) Read() ([]byte, error) {
	if ok := w.cap.Read(&w.frame); !ok {
		return nil, fmt.Errorf("camera: device %d read failed", w.index)
	}
	if w.frame.Empty() {
		return nil, ErrEmptyFrame
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, w.frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer buf.Close()

	// The native buffer is invalid after Close, hand back a copy.
	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())
	return jpeg, nil
}

// Close releases the device and the reusable capture buffer.
func (w *Webcam) Close() error {
	if err := w.frame.Close(); err != nil {
		return errors.Join(err, w.cap.Close())
	}
	return w.cap.Close()
}
