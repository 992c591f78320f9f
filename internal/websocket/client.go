// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // Filter frames are tiny; entries flow outbound only
)

// clientIDCounter generates unique, monotonically increasing IDs.
// DETERMINISM: IDs give broadcast and eviction a stable order.
var clientIDCounter atomic.Uint64

// ClientFilter narrows which entries a client receives. Zero value
// admits everything.
type ClientFilter struct {
	// MaxLevel admits entries at this severity rank or more severe.
	MaxLevel *debuglog.Level `json:"level,omitempty"`

	// Category admits only entries with this exact category.
	Category string `json:"category,omitempty"`
}

func (f *ClientFilter) admits(e debuglog.Entry) bool {
	if f == nil {
		return true
	}
	if f.MaxLevel != nil && e.Level > *f.MaxLevel {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return true
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	filter atomic.Pointer[ClientFilter]

	// writeMu serializes connection writes between writePump and the
	// read-side pong reply; gorilla permits one concurrent writer.
	writeMu sync.Mutex
}

// NewClient creates a Client with a unique deterministic ID.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, 256),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 { return c.id }

// SetFilter replaces the client's entry filter. Safe to call while the
// hub is broadcasting.
func (c *Client) SetFilter(f *ClientFilter) {
	c.filter.Store(f)
}

func (c *Client) admits(e debuglog.Entry) bool {
	return c.filter.Load().admits(e)
}

// writeJSON writes one message under the write mutex with a fresh
// deadline.
func (c *Client) writeJSON(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// writeControl writes a control frame under the write mutex with a
// fresh deadline.
func (c *Client) writeControl(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// readPump consumes inbound frames: filter updates and pings. It
// unregisters the client when the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		switch msg.Type {
		case MessageTypeFilter:
			var f ClientFilter
			if err := json.Unmarshal(msg.Data, &f); err != nil {
				logging.Warn().Err(err).Msg("invalid live-tail filter frame")
				continue
			}
			c.SetFilter(&f)

		case MessageTypePing:
			// Reply on the connection directly. The hub owns c.send and
			// closes it during eviction and shutdown, so the read side
			// must never write into it.
			if err := c.writeJSON(Message{Type: MessageTypePong}); err != nil {
				return
			}
		}
	}
}

// writePump forwards hub messages to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// The hub closed the channel
				if err := c.writeControl(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.writeJSON(message); err != nil {
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}

		case <-ticker.C:
			if err := c.writeControl(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
