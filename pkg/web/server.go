package web

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/edgewire/framecast/internal/log"
)

// statsBroadcastInterval is how often the websocket feed pushes a snapshot.
const statsBroadcastInterval = time.Second

// Server exposes an agent's health and stats over HTTP.
type Server struct {
	app     *fiber.App
	addr    string
	agent   string
	id      string
	stats   func() any
	hub     *Hub
	started time.Time
}

// NewServer creates a status server for the named agent. stats is called on
// every /stats request and once per second for the websocket feed; it must
// be safe to call from other goroutines.
func NewServer(addr, agent, id string, stats func() any) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		addr:    addr,
		agent:   agent,
		id:      id,
		stats:   stats,
		hub:     newHub(agent),
		started: time.Now(),
	}

	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/stats", s.handleStats)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		newClient(s.hub, conn).run()
	}))

	return s
}

// PublishFrame pushes a preview frame to websocket clients.
func (s *Server) PublishFrame(frame []byte) {
	if s.hub.ClientCount() == 0 {
		return
	}
	s.hub.BroadcastBinary(frame)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go s.hub.run(done)

	go func() {
		ticker := time.NewTicker(statsBroadcastInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if s.hub.ClientCount() == 0 {
					continue
				}
				if err := s.hub.BroadcastJSON(s.stats()); err != nil {
					log.Warn("stats broadcast failed", "error", err)
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.app.Shutdown()
	}()

	log.Info("status server listening", "agent", s.agent, "addr", s.addr)
	return s.app.Listen(s.addr)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"agent":    s.agent,
		"id":       s.id,
		"uptime_s": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.stats())
}
