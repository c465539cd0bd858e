package chat

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"lobbychat/internal/app/user"
	"lobbychat/internal/pkg/logx"
)

// ConnID identifies one live transport session.
type ConnID string

// Presence is a logged-in connection and its identity.
type Presence struct {
	ConnectionID ConnID `json:"connectionId"`
	user.Identity
}

// entry is the registry's side record for one connection.
type entry struct {
	identity user.Identity
	loggedIn bool
}

// Registry tracks live connections and the identity each one declared at login.
// Every method is safe for concurrent use and atomic on its own.
type Registry struct {
	// entries maps a connection to its side record.
	entries map[ConnID]*entry

	// order holds registered IDs in registration order, for deterministic iteration.
	order []ConnID

	// mu protects entries and order.
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ConnID]*entry),
		logger:  logx.Component("Registry"),
	}
}

// Register adds a connection without an identity. Registering a known ID is ignored.
func (r *Registry) Register(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; ok {
		r.logger.Warn().Str("connection_id", string(id)).Msg("Connection already registered. Ignoring.")
		return
	}

	r.entries[id] = &entry{}
	r.order = append(r.order, id)
}

// SetIdentity creates or overwrites the identity of a registered connection.
// It returns false when the connection is unknown.
func (r *Registry) SetIdentity(id ConnID, identity user.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		r.logger.Warn().Str("connection_id", string(id)).Msg("SetIdentity on unregistered connection. Ignoring.")
		return false
	}

	e.identity = identity
	e.loggedIn = true
	return true
}

// Identity returns the identity of a connection. The boolean is false when the
// connection is unknown or has not logged in yet.
func (r *Registry) Identity(id ConnID) (user.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok || !e.loggedIn {
		return user.Identity{}, false
	}
	return e.identity, true
}

// AllExcept returns every registered connection other than id, in registration order.
func (r *Registry) AllExcept(id ConnID) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]ConnID, 0, len(r.order))
	for _, other := range r.order {
		if other != id {
			targets = append(targets, other)
		}
	}
	return targets
}

// Remove deletes a connection and its identity. It returns false if the connection
// was not registered.
func (r *Registry) Remove(id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		r.logger.Warn().Str("connection_id", string(id)).Msg("Remove on unregistered connection. Ignoring.")
		return false
	}

	delete(r.entries, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return true
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Snapshot returns the logged-in connections in registration order.
func (r *Registry) Snapshot() []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]Presence, 0, len(r.order))
	for _, id := range r.order {
		if e := r.entries[id]; e.loggedIn {
			online = append(online, Presence{ConnectionID: id, Identity: e.identity})
		}
	}
	return online
}
