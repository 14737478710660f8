package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"cablerun/internal/domain/hazard"
	"cablerun/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// OperatorAction represents an incoming command from the console.
type OperatorAction struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ActionResult is sent back to the issuing client only.
type ActionResult struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// Client represents one active websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new websocket client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps operator actions from the websocket into the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read error: %v", err)
			}
			break
		}

		metrics.Get().RecordWSMessage(true)
		var action OperatorAction
		if err := json.Unmarshal(message, &action); err != nil {
			metrics.Get().RecordWSError()
			c.hub.logger.Error("Failed to parse operator action: %v", err)
			continue
		}
		c.handleOperatorAction(action)
	}
}

func (c *Client) handleOperatorAction(action OperatorAction) {
	var err error
	switch action.Type {
	case "START_MISSION":
		var p struct {
			RouteID string `json:"route_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = c.hub.engine.StartMission(p.RouteID)
		}
	case "PAUSE":
		err = c.hub.engine.Pause()
	case "RESUME":
		err = c.hub.engine.Resume()
	case "RESTART":
		err = c.hub.engine.Restart()
	case "SET_TIME_SCALE":
		var p struct {
			TimeScale float64 `json:"time_scale"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			c.hub.engine.SetTimeScale(p.TimeScale)
		}
	case "SPAWN_HAZARD":
		var p struct {
			Type string `json:"hazard_type"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			_, err = c.hub.engine.SpawnHazard(hazard.Type(p.Type))
		}
	case "EDIT_DIRECTIVE":
		var p struct {
			MemberID  string `json:"member_id"`
			Directive string `json:"directive"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = c.hub.engine.EditDirective(p.MemberID, p.Directive)
		}
	case "EDIT_ALLIANCES":
		var p struct {
			MemberID  string   `json:"member_id"`
			Alliances []string `json:"alliances"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = c.hub.engine.EditAlliances(p.MemberID, p.Alliances)
		}
	case "SET_UNITS":
		var p struct {
			MemberID string `json:"member_id"`
			Units    int    `json:"units"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = c.hub.engine.SetUnits(p.MemberID, p.Units)
		}
	default:
		c.hub.logger.Warn("Unknown operator action type: %s", action.Type)
		return
	}

	if err != nil {
		c.hub.logger.Warn("Operator action %s rejected: %v", action.Type, err)
	}
	c.sendResult(action.Type, err)
}

// sendResult reports command acceptance back to the issuing client.
func (c *Client) sendResult(action string, err error) {
	result := ActionResult{Type: "ACTION_RESULT", Action: action, OK: err == nil}
	if err != nil {
		result.Error = err.Error()
	}
	payload, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
