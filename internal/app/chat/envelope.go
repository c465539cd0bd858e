/*
Package chat contains the presence-and-broadcast core and the WebSocket transport around it.

This file defines the wire envelopes. Inbound frames decode into a closed set of request
types, with Unrecognized as the fail-safe variant for any tag the server does not handle.
Outbound envelopes carry a snapshot of the sender's identity by value.
*/
package chat

import (
	"encoding/json"
	"fmt"

	"lobbychat/internal/app/user"
)

// MessageType is the numeric-string tag carried in the "type" field of every frame.
type MessageType string

// 1xx: presence messages.
const (
	// TypeSelfLogin acknowledges a login to the connection that sent it.
	TypeSelfLogin MessageType = "100"

	// TypeLogin is the inbound login request and the outbound announce sent to peers.
	TypeLogin MessageType = "101"

	// TypeLeave announces to peers that a connection went away.
	TypeLeave MessageType = "102"
)

// 2xx: chat messages.
const (
	// TypeSelfChat echoes a public chat message back to its sender.
	TypeSelfChat MessageType = "200"

	// TypeChat is the inbound chat submission and the outbound broadcast sent to peers.
	TypeChat MessageType = "201"
)

// Inbound is a decoded client frame. The set of implementations is closed.
type Inbound interface {
	inboundType() MessageType
}

// LoginRequest is a "101" frame declaring the sender's identity.
type LoginRequest struct {
	user.Identity
}

func (LoginRequest) inboundType() MessageType { return TypeLogin }

// ChatRequest is a "201" frame carrying public chat text. Sender identity is never
// read from the frame.
type ChatRequest struct {
	Content string `json:"content"`
}

func (ChatRequest) inboundType() MessageType { return TypeChat }

// Unrecognized is any frame whose tag the server does not handle.
type Unrecognized struct {
	Type MessageType
}

func (u Unrecognized) inboundType() MessageType { return u.Type }

// DecodeInbound parses a raw client frame. Frames with an unknown tag decode to
// Unrecognized without error; malformed JSON or mistyped fields return an error.
func DecodeInbound(data []byte) (Inbound, error) {
	var header struct {
		Type MessageType `json:"type"`
	}

	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode frame header: %w", err)
	}

	switch header.Type {
	case TypeLogin:
		var login LoginRequest
		if err := json.Unmarshal(data, &login); err != nil {
			return nil, fmt.Errorf("decode login frame: %w", err)
		}
		return login, nil

	case TypeChat:
		var chat ChatRequest
		if err := json.Unmarshal(data, &chat); err != nil {
			return nil, fmt.Errorf("decode chat frame: %w", err)
		}
		return chat, nil

	default:
		return Unrecognized{Type: header.Type}, nil
	}
}

// Outbound is an envelope the server sends to clients.
type Outbound interface {
	MessageType() MessageType
}

// PresenceMessage is a login ack, login announce or leave announce.
type PresenceMessage struct {
	Type MessageType `json:"type"`
	user.Identity
}

// MessageType returns the envelope tag.
func (m PresenceMessage) MessageType() MessageType { return m.Type }

// ChatMessage is a chat broadcast or self echo.
type ChatMessage struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
	user.Identity
}

// MessageType returns the envelope tag.
func (m ChatMessage) MessageType() MessageType { return m.Type }

// Encode marshals an outbound envelope into a text frame.
func Encode(env Outbound) ([]byte, error) {
	return json.Marshal(env)
}
