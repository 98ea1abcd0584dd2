// Capture agent - streams camera frames to the inference node.
//
// Owns the camera device and a PUSH endpoint bound at BIND_ADDRESS
// (default tcp://*:5555). Runs until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgewire/framecast/internal/config"
	"github.com/edgewire/framecast/internal/log"
	"github.com/edgewire/framecast/pkg/camera"
	"github.com/edgewire/framecast/pkg/capture"
	"github.com/edgewire/framecast/pkg/transport"
	"github.com/edgewire/framecast/pkg/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agent := capture.New(capture.Config{
		OpenSender: func() (transport.Sender, error) {
			return transport.NewPushSender(cfg.BindAddress)
		},
		OpenCamera: func() (camera.Device, error) {
			return camera.OpenWebcam(cfg.CameraIndex, cfg.FrameWidth, cfg.FrameHeight)
		},
	})

	if cfg.StatusAddr != "" {
		srv := web.NewServer(cfg.StatusAddr, "capture", agent.ID(), func() any {
			return agent.Snapshot()
		})
		agent.SetFrameTap(srv.PublishFrame)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error("status server stopped", "error", err)
			}
		}()
	}

	log.Info("capture agent starting",
		"id", agent.ID(),
		"bind", cfg.BindAddress,
		"camera", cfg.CameraIndex,
		"resolution", fmt.Sprintf("%dx%d", cfg.FrameWidth, cfg.FrameHeight))

	if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("capture agent stopped", "error", err)
		os.Exit(1)
	}
	log.Info("capture agent stopped")
}
