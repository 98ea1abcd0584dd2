// Inference agent - runs a neural model on frames from the capture node.
//
// Owns a PULL endpoint connected to ZMQ_ADDRESS (default
// tcp://localhost:5555) and a model session loaded from MODEL_PATH
// (default model.onnx). Runs until SIGINT/SIGTERM.
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
	"github.com/edgewire/framecast/pkg/infer"
	"github.com/edgewire/framecast/pkg/model"
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

	agent := infer.New(infer.Config{
		OpenReceiver: func() (transport.Receiver, error) {
			return transport.NewPullReceiver(cfg.ConnectAddress)
		},
		LoadModel: func() (model.Session, error) {
			return model.LoadDNN(model.DNNConfig{
				Path:        cfg.ModelPath,
				InputWidth:  cfg.InputWidth,
				InputHeight: cfg.InputHeight,
			})
		},
	})

	if cfg.StatusAddr != "" {
		srv := web.NewServer(cfg.StatusAddr, "infer", agent.ID(), func() any {
			return agent.Snapshot()
		})
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error("status server stopped", "error", err)
			}
		}()
	}

	log.Info("inference agent starting",
		"id", agent.ID(),
		"connect", cfg.ConnectAddress,
		"model", cfg.ModelPath,
		"input", fmt.Sprintf("%dx%d", cfg.InputWidth, cfg.InputHeight))

	if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("inference agent stopped", "error", err)
		os.Exit(1)
	}
	log.Info("inference agent stopped")
}
