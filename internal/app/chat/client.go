/*
Package chat contains the presence-and-broadcast core and the WebSocket transport around it.

This file defines the Client struct, one attached WebSocket session. It owns the read loop
that feeds frames into the Hub and the write loop that drains the outbound queue, and it
detaches itself from the Manager when the connection ends.
*/
package chat

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lobbychat/internal/pkg/errs"
	"lobbychat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10
)

// Client represents one attached WebSocket connection.
type Client struct {
	// id is the connection identifier known to the Hub.
	id ConnID

	// manager owns this client and routes its frames into the Hub.
	manager *Manager

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel of encoded frames waiting to be written.
	send chan []byte

	// mu guards closed and the close of send.
	mu     sync.Mutex
	closed bool

	// detachOnce makes sure the manager forgets this client exactly once.
	detachOnce sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// newClient constructs a Client with an outbound queue of the given size.
func newClient(id ConnID, manager *Manager, conn *websocket.Conn, buffer int) *Client {
	return &Client{
		id:      id,
		manager: manager,
		conn:    conn,
		send:    make(chan []byte, buffer),
		logger:  logx.Logger().With().Str("connection_id", string(id)).Logger(),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() ConnID {
	return c.id
}

// ReadPump reads frames from the connection and hands each to the Hub. It returns
// when the connection fails or is closed, after detaching the client.
func (c *Client) ReadPump() {
	defer c.detach()

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			return
		}

		c.manager.hub.Receive(c.id, frame)
	}
}

// WritePump writes queued frames to the connection and keeps it alive with pings.
// It returns once the send queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame from the send queue, or a close frame when the
// queue was closed. It returns false when WritePump should stop.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isClosedConnErr(err) {
			c.logger.Warn().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePing sends a heartbeat Ping. It returns false when WritePump should stop.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue queues a frame without blocking.
func (c *Client) enqueue(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errs.NewError(errs.ErrConnectionClosed, c.id)
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return errs.NewError(errs.ErrSendQueueFull, c.id)
	}
}

// closeSend closes the send queue, which makes WritePump send a close frame and exit.
// Safe to call more than once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// closeConn closes the underlying connection, ignoring an already-closed connection.
func (c *Client) closeConn() {
	if err := c.conn.Close(); err != nil && !isClosedConnErr(err) {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// detach removes the client from its manager and announces its departure.
func (c *Client) detach() {
	c.detachOnce.Do(func() {
		c.logger.Info().Msg("Client connection cleanup starting.")
		c.manager.detach(c)
		c.closeConn()
	})
}

func isClosedConnErr(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, websocket.ErrCloseSent)
}
