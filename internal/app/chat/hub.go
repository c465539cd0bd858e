package chat

import (
	"time"

	"github.com/rs/zerolog"

	"lobbychat/internal/app/presence"
	"lobbychat/internal/pkg/logx"
)

// Notifier receives connection lifecycle events. Implementations must not block.
type Notifier interface {
	Notify(presence.Event)
}

type noopNotifier struct{}

func (noopNotifier) Notify(presence.Event) {}

// Hub is the core's entry point for transport events. Each event runs to completion
// (registry update, routing, delivery) on the caller's goroutine.
//
// Events for one connection must be delivered sequentially; events for different
// connections may arrive concurrently.
type Hub struct {
	registry    *Registry
	router      *Router
	broadcaster *Broadcaster
	notifier    Notifier
	logger      zerolog.Logger
}

// NewHub wires a Router and Broadcaster around registry. A nil notifier disables
// presence events.
func NewHub(registry *Registry, sender Sender, notifier Notifier) *Hub {
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &Hub{
		registry:    registry,
		router:      NewRouter(registry),
		broadcaster: NewBroadcaster(registry, sender),
		notifier:    notifier,
		logger:      logx.Component("Hub"),
	}
}

// Registry returns the hub's connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Connect registers a new connection with no identity.
func (h *Hub) Connect(id ConnID) {
	h.registry.Register(id)

	h.logger.Debug().
		Str("connection_id", string(id)).
		Int("total_connections", h.registry.Len()).
		Msg("Connection registered.")

	h.notifier.Notify(presence.Event{
		Kind:         presence.KindConnected,
		ConnectionID: string(id),
		At:           time.Now(),
	})
}

// Receive decodes a raw frame from id, routes it and delivers the results.
// Malformed frames are dropped.
func (h *Hub) Receive(id ConnID, raw []byte) {
	msg, err := DecodeInbound(raw)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("connection_id", string(id)).
			Int("frame_bytes", len(raw)).
			Msg("Dropping malformed frame.")
		return
	}

	if u, ok := msg.(Unrecognized); ok {
		h.logger.Debug().
			Str("connection_id", string(id)).
			Str("msg_type", string(u.Type)).
			Msg("Ignoring unrecognized message type.")
		return
	}

	h.dispatch(id, h.router.Route(id, msg))

	if login, ok := msg.(LoginRequest); ok {
		h.logger.Info().
			Str("connection_id", string(id)).
			Str("nickname", login.Nickname).
			Msg("Connection logged in.")

		h.notifier.Notify(presence.Event{
			Kind:         presence.KindLogin,
			ConnectionID: string(id),
			Identity:     login.Identity,
			LoggedIn:     true,
			At:           time.Now(),
		})
	}
}

// Disconnect announces the departure of id to its peers and forgets it.
func (h *Hub) Disconnect(id ConnID) {
	identity, loggedIn := h.registry.Identity(id)

	h.dispatch(id, h.router.Disconnect(id))

	h.logger.Debug().
		Str("connection_id", string(id)).
		Int("total_connections", h.registry.Len()).
		Msg("Connection removed.")

	h.notifier.Notify(presence.Event{
		Kind:         presence.KindLeave,
		ConnectionID: string(id),
		Identity:     identity,
		LoggedIn:     loggedIn,
		At:           time.Now(),
	})
}

// dispatch delivers deliveries in order.
func (h *Hub) dispatch(source ConnID, deliveries []Delivery) {
	for _, d := range deliveries {
		h.broadcaster.Deliver(d.Target, source, d.Envelope)
	}
}
