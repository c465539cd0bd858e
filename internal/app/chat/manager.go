/*
Package chat contains the presence-and-broadcast core and the WebSocket transport around it.

This file defines the Manager struct, the transport-side owner of every attached Client.
It creates the Hub at startup, implements the Hub's Sender over the clients' send queues,
and closes all connections at shutdown.
*/
package chat

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lobbychat/internal/pkg/errs"
	"lobbychat/internal/pkg/logx"
	"lobbychat/internal/pkg/randx"
)

// DefaultSendBuffer is the per-connection outbound queue size used when none is configured.
const DefaultSendBuffer = 256

// Manager tracks attached clients and connects them to the Hub.
type Manager struct {
	// hub is the presence-and-broadcast core.
	hub *Hub

	// clients maps connection IDs to attached clients. It is separate from the Hub's
	// registry, which never sees transport objects.
	clients map[ConnID]*Client

	// mu protects clients and closing.
	mu sync.RWMutex

	// closing is set once Shutdown starts; Attach is refused afterwards.
	closing bool

	// sendBuffer is the outbound queue size of new clients.
	sendBuffer int

	// wg counts attached clients that have not detached yet.
	wg sync.WaitGroup

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs a Manager and its Hub. A nil notifier disables presence events.
func NewManager(sendBuffer int, notifier Notifier) *Manager {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}

	m := &Manager{
		clients:    make(map[ConnID]*Client),
		sendBuffer: sendBuffer,
		logger:     logx.Component("Manager"),
	}
	m.hub = NewHub(NewRegistry(), m, notifier)

	return m
}

// Hub returns the core the manager feeds.
func (m *Manager) Hub() *Hub {
	return m.hub
}

// Attach registers a freshly upgraded connection and returns its Client. The caller
// must start WritePump and then run ReadPump, which detaches the client when it returns.
func (m *Manager) Attach(conn *websocket.Conn) (*Client, error) {
	id := ConnID(randx.ConnectionID())

	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil, errs.NewError(errs.ErrConnectionClosed, id)
	}

	client := newClient(id, m, conn, m.sendBuffer)
	m.clients[id] = client
	m.wg.Add(1)
	total := len(m.clients)
	m.mu.Unlock()

	m.hub.Connect(id)

	m.logger.Info().
		Str("connection_id", string(id)).
		Int("total_clients", total).
		Msg("Client attached.")

	return client, nil
}

// Send queues payload for the connection id. It never blocks.
func (m *Manager) Send(id ConnID, payload []byte) error {
	m.mu.RLock()
	client, ok := m.clients[id]
	m.mu.RUnlock()

	if !ok {
		return errs.NewError(errs.ErrConnectionNotFound, id)
	}

	return client.enqueue(payload)
}

// detach forgets the client on the transport side first, so the leave announce is
// never addressed to it, then lets the Hub announce the departure.
func (m *Manager) detach(client *Client) {
	m.mu.Lock()
	if current, ok := m.clients[client.id]; ok && current == client {
		delete(m.clients, client.id)
	}
	total := len(m.clients)
	m.mu.Unlock()

	client.closeSend()
	m.hub.Disconnect(client.id)
	m.wg.Done()

	m.logger.Info().
		Str("connection_id", string(client.id)).
		Int("total_clients", total).
		Msg("Client detached.")
}

// Len returns the number of attached clients.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}

// Shutdown refuses new clients, closes every attached connection and waits until all
// of them have detached or ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info().Msg("Shutting down Manager...")

	m.mu.Lock()
	m.closing = true
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.mu.Unlock()

	for _, client := range clients {
		client.closeSend()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info().Int("closed_clients", len(clients)).Msg("Manager shutdown complete.")
		return nil
	case <-ctx.Done():
		m.logger.Warn().Msg("Manager shutdown timed out with clients still attached.")
		return ctx.Err()
	}
}
