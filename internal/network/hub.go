// Package network provides the websocket surface of the mission server:
// a broadcast hub fed from the event log plus per-client operator command
// handling.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cablerun/internal/engine"
	"cablerun/internal/events"
	"cablerun/internal/platform/logger"
	"cablerun/internal/platform/metrics"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	engine     *engine.Engine
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket hub bound to the engine.
func NewHub(eng *engine.Engine, log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		engine:     eng,
		logger:     log,
	}
}

// Run starts the hub's main loop to handle client connections and
// broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a mission event to JSON and fans it out to all
// connected clients.
func (h *Hub) BroadcastEvent(event events.MissionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.Get().RecordWSError()
		h.logger.Error("Failed to serialize mission event for broadcast: %v", err)
		return
	}
	h.broadcast <- payload
	metrics.Get().RecordWSMessage(false)
}

// StartEventPoller spawns a goroutine that pages through the event log and
// pushes everything new to the hub. This keeps the hub decoupled from the
// engine's tick loop while seeing the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		poll := time.NewTicker(200 * time.Millisecond)
		defer poll.Stop()

		cursor := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-poll.C:
				newEvents, next := eventLog.Since(cursor)
				cursor = next
				for _, event := range newEvents {
					h.BroadcastEvent(event)
				}
			}
		}
	}()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The operator console is served from a different origin in dev.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection and starts the
// client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	client := NewClient(h, conn)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}
