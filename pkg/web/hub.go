// Package web provides the optional HTTP status surface for an agent:
// health and stats endpoints plus a websocket feed of stats snapshots and,
// on the capture agent, a live frame preview.
//
// The feed follows the same posture as the pipeline itself: slow websocket
// clients are dropped, never allowed to block the broadcaster.
package web

import (
	"encoding/json"
	"sync"

	"github.com/edgewire/framecast/internal/log"
)

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded message (stats snapshots).
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (JPEG preview frames).
	BinaryMessage
)

// Message is one payload to broadcast to websocket clients.
type Message struct {
	Type MessageType
	Data []byte
}

// Hub fans messages out to the connected websocket clients.
type Hub struct {
	name string

	clients    map[*client]bool
	broadcast  chan Message
	register   chan *client
	unregister chan *client

	mu sync.RWMutex
}

func newHub(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// run drives the hub until done is closed. Call in a goroutine.
func (h *Hub) run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("status client connected", "hub", h.name, "clients", count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("status client disconnected", "hub", h.name, "clients", count)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client buffer full: too slow, drop it.
					close(c.send)
					delete(h.clients, c)
					log.Warn("dropped slow status client", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for all clients, dropping it when the hub is
// congested.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Debug("status broadcast dropped", "hub", h.name)
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Message{Type: JSONMessage, Data: data})
	return nil
}

// BroadcastBinary broadcasts raw bytes (preview frames).
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(Message{Type: BinaryMessage, Data: data})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
