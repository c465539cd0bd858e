package presence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lobbychat/internal/pkg/logx"
)

const (
	// feedBuffer is the number of events queued before Notify starts dropping.
	feedBuffer = 1024

	// sinkTimeout bounds a single Sink.Handle call.
	sinkTimeout = 5 * time.Second
)

// Sink consumes presence events. Handle is only ever called from the feed goroutine.
type Sink interface {
	Name() string
	Handle(ctx context.Context, event Event) error
	Close() error
}

// Feed queues events and delivers them to every sink in order on one goroutine.
type Feed struct {
	// events is the queue between Notify and the delivery loop.
	events chan Event

	// sinks receive every event, in registration order.
	sinks []Sink

	// mu guards closed and the close of events.
	mu     sync.Mutex
	closed bool

	// wg waits for the delivery loop during shutdown.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewFeed starts a Feed delivering to sinks. With no sinks, events are discarded.
func NewFeed(sinks ...Sink) *Feed {
	f := &Feed{
		events: make(chan Event, feedBuffer),
		sinks:  sinks,
		logger: logx.Component("PresenceFeed"),
	}

	f.wg.Add(1)
	go f.run()

	return f
}

// Notify queues an event. It never blocks: events are dropped when the queue is full
// or the feed is shut down.
func (f *Feed) Notify(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	select {
	case f.events <- event:
	default:
		f.logger.Warn().
			Str("kind", string(event.Kind)).
			Str("connection_id", event.ConnectionID).
			Msg("Presence feed full, dropping event.")
	}
}

// run is the delivery loop.
func (f *Feed) run() {
	defer f.wg.Done()

	f.logger.Info().Int("sinks", len(f.sinks)).Msg("Presence feed started.")

	for event := range f.events {
		for _, sink := range f.sinks {
			f.deliver(sink, event)
		}
	}

	f.logger.Info().Msg("Presence feed stopped.")
}

// deliver hands one event to one sink with a timeout.
func (f *Feed) deliver(sink Sink, event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := sink.Handle(ctx, event); err != nil {
		f.logger.Error().Err(err).
			Str("sink", sink.Name()).
			Str("kind", string(event.Kind)).
			Str("connection_id", event.ConnectionID).
			Msg("Presence sink failed.")
	}
}

// Shutdown stops accepting events, drains the queue and closes every sink.
func (f *Feed) Shutdown() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.events)
	f.mu.Unlock()

	f.wg.Wait()

	for _, sink := range f.sinks {
		if err := sink.Close(); err != nil {
			f.logger.Error().Err(err).Str("sink", sink.Name()).Msg("Failed to close presence sink.")
		}
	}
}
