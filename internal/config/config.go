// Package config loads agent configuration from the environment.
//
// Both agents read their settings once at startup via Load. Invalid values
// are rejected there with a clear error instead of surfacing later inside
// the capture or inference loop.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for an unconfigured deployment.
const (
	DefaultBindAddress    = "tcp://*:5555"
	DefaultConnectAddress = "tcp://localhost:5555"
	DefaultModelPath      = "model.onnx"
	DefaultCameraIndex    = 0
	DefaultFrameWidth     = 640
	DefaultFrameHeight    = 480
	DefaultInputWidth     = 224
	DefaultInputHeight    = 224
)

// Config holds the environment-supplied settings for both agents.
// Each binary only uses the fields relevant to its role.
type Config struct {
	// BindAddress is where the capture agent binds its send endpoint.
	BindAddress string

	// ConnectAddress is where the inference agent connects its
	// receive endpoint (ZMQ_ADDRESS).
	ConnectAddress string

	// ModelPath is the model artifact location (MODEL_PATH).
	ModelPath string

	// CameraIndex selects the capture device.
	CameraIndex int

	// FrameWidth and FrameHeight are the requested capture resolution.
	// The request is best effort; the device may ignore it.
	FrameWidth  int
	FrameHeight int

	// InputWidth and InputHeight define the model input tensor plane.
	InputWidth  int
	InputHeight int

	// StatusAddr enables the HTTP status server when non-empty
	// (e.g. ":8090"). Empty disables it.
	StatusAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		BindAddress:    envStr("BIND_ADDRESS", DefaultBindAddress),
		ConnectAddress: envStr("ZMQ_ADDRESS", DefaultConnectAddress),
		ModelPath:      envStr("MODEL_PATH", DefaultModelPath),
		StatusAddr:     os.Getenv("STATUS_ADDR"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.CameraIndex, err = envInt("CAMERA_INDEX", DefaultCameraIndex); err != nil {
		return nil, err
	}
	if cfg.FrameWidth, err = envInt("FRAME_WIDTH", DefaultFrameWidth); err != nil {
		return nil, err
	}
	if cfg.FrameHeight, err = envInt("FRAME_HEIGHT", DefaultFrameHeight); err != nil {
		return nil, err
	}
	if cfg.InputWidth, err = envInt("MODEL_INPUT_WIDTH", DefaultInputWidth); err != nil {
		return nil, err
	}
	if cfg.InputHeight, err = envInt("MODEL_INPUT_HEIGHT", DefaultInputHeight); err != nil {
		return nil, err
	}

	if cfg.BindAddress == "" {
		return nil, fmt.Errorf("config: BIND_ADDRESS must not be empty")
	}
	if cfg.ConnectAddress == "" {
		return nil, fmt.Errorf("config: ZMQ_ADDRESS must not be empty")
	}
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("config: MODEL_PATH must not be empty")
	}
	if cfg.CameraIndex < 0 {
		return nil, fmt.Errorf("config: CAMERA_INDEX must be >= 0, got %d", cfg.CameraIndex)
	}
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return nil, fmt.Errorf("config: frame resolution must be positive, got %dx%d",
			cfg.FrameWidth, cfg.FrameHeight)
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return nil, fmt.Errorf("config: model input shape must be positive, got %dx%d",
			cfg.InputWidth, cfg.InputHeight)
	}

	return cfg, nil
}

// envStr returns the env var value or the default if unset.
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt returns the env var parsed as int or the default if unset.
func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %q is not an integer", key, v)
	}
	return n, nil
}
