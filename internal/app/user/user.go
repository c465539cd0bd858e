/*
Package user contains the identity data a chat participant claims for itself.

It defines the Identity struct attached to a connection after login. The values are
accepted as sent by the client and are never verified.
*/
package user

// Identity represents the self-declared profile of a chat participant.
// Fields use JSON tags matching the wire protocol so the struct can be embedded
// directly into outbound envelopes.
type Identity struct {
	// Nickname is the display name of the participant.
	Nickname string `json:"nickname"`

	// Gender is a free-form value chosen by the client.
	Gender string `json:"gender"`

	// Pic is the avatar reference (a file name served by the avatar endpoint).
	Pic string `json:"pic"`
}

// IsZero reports whether no identity field has been set.
func (i Identity) IsZero() bool {
	return i == Identity{}
}
