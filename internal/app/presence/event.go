/*
Package presence fans connection lifecycle events out to external sinks.

The chat core emits an Event when a connection attaches, logs in or leaves. A Feed
queues those events and hands them, in order, to each configured Sink (Redis mirror,
PostgreSQL session journal, RabbitMQ publisher) on a single background goroutine, so
the core never waits on network I/O.
*/
package presence

import (
	"time"

	"lobbychat/internal/app/user"
)

// Kind names the lifecycle transition an Event describes.
type Kind string

const (
	// KindConnected is emitted when a transport session attaches.
	KindConnected Kind = "connected"

	// KindLogin is emitted for every processed login, including repeated ones.
	KindLogin Kind = "login"

	// KindLeave is emitted when a transport session goes away.
	KindLeave Kind = "leave"
)

// Event is one lifecycle transition of a connection.
type Event struct {
	Kind         Kind          `json:"kind"`
	ConnectionID string        `json:"connectionId"`
	Identity     user.Identity `json:"identity"`

	// LoggedIn reports whether Identity holds a declared identity. Always true for
	// KindLogin, false for KindConnected.
	LoggedIn bool `json:"loggedIn"`

	At time.Time `json:"at"`
}
