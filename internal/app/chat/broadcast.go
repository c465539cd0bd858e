package chat

import (
	"github.com/rs/zerolog"

	"lobbychat/internal/pkg/errs"
	"lobbychat/internal/pkg/logx"
)

// Sender is the transport's per-connection send primitive. Implementations must not block.
type Sender interface {
	Send(id ConnID, payload []byte) error
}

// Broadcaster delivers addressed envelopes through a Sender.
// Delivery is best effort and at most once: failures are logged, never retried.
type Broadcaster struct {
	registry *Registry
	sender   Sender
	logger   zerolog.Logger
}

// NewBroadcaster returns a Broadcaster resolving fan-out targets through registry.
func NewBroadcaster(registry *Registry, sender Sender) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		sender:   sender,
		logger:   logx.Component("Broadcaster"),
	}
}

// Deliver sends env to the connections selected by target relative to source.
// It returns the number of successful sends. A failed send to one peer does not stop
// delivery to the others.
func (b *Broadcaster) Deliver(target Target, source ConnID, env Outbound) int {
	payload, err := Encode(env)
	if err != nil {
		b.logger.Error().Err(err).
			Str("msg_type", string(env.MessageType())).
			Msg("Failed to encode outbound envelope.")
		return 0
	}

	switch target {
	case TargetSelf:
		if b.send(source, env, payload) {
			return 1
		}
		return 0

	case TargetAllExceptSelf:
		sent := 0
		for _, peer := range b.registry.AllExcept(source) {
			if b.send(peer, env, payload) {
				sent++
			}
		}
		return sent

	default:
		b.logger.Error().Stringer("target", target).Msg("Unknown delivery target.")
		return 0
	}
}

// send performs a single send and logs its failure.
func (b *Broadcaster) send(id ConnID, env Outbound, payload []byte) bool {
	if err := b.sender.Send(id, payload); err != nil {
		// The peer may have detached after AllExcept was taken.
		if errs.HasCode(err, errs.ErrConnectionNotFound) {
			b.logger.Debug().Err(err).Str("connection_id", string(id)).Msg("Target already detached.")
			return false
		}

		b.logger.Warn().Err(err).
			Str("connection_id", string(id)).
			Str("msg_type", string(env.MessageType())).
			Msg("Send failed. Skipping target.")
		return false
	}
	return true
}
