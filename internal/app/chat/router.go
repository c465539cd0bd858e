package chat

// Target selects who receives an outbound envelope relative to the source connection.
type Target int

const (
	// TargetAllExceptSelf addresses every registered connection other than the source.
	TargetAllExceptSelf Target = iota

	// TargetSelf addresses the source connection only.
	TargetSelf
)

func (t Target) String() string {
	switch t {
	case TargetSelf:
		return "self"
	case TargetAllExceptSelf:
		return "all_except_self"
	default:
		return "unknown"
	}
}

// Delivery is one addressed envelope produced by the Router.
type Delivery struct {
	Target   Target
	Envelope Outbound
}

// Router turns inbound frames and disconnects into addressed outbound envelopes.
// Peer-facing deliveries always come before the self-facing one.
type Router struct {
	registry *Registry
}

// NewRouter returns a Router that reads and writes identities through registry.
func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Route dispatches an inbound frame from id. Unrecognized frames produce nothing.
func (rt *Router) Route(id ConnID, msg Inbound) []Delivery {
	switch m := msg.(type) {
	case LoginRequest:
		return rt.handleLogin(id, m)
	case ChatRequest:
		return rt.handleChat(id, m)
	default:
		return nil
	}
}

// handleLogin stores the declared identity, announces it to peers and acknowledges it to the sender.
func (rt *Router) handleLogin(id ConnID, m LoginRequest) []Delivery {
	rt.registry.SetIdentity(id, m.Identity)

	return []Delivery{
		{Target: TargetAllExceptSelf, Envelope: PresenceMessage{Type: TypeLogin, Identity: m.Identity}},
		{Target: TargetSelf, Envelope: PresenceMessage{Type: TypeSelfLogin, Identity: m.Identity}},
	}
}

// handleChat attaches the sender's identity to the content. A sender that never
// logged in gets empty identity fields.
func (rt *Router) handleChat(id ConnID, m ChatRequest) []Delivery {
	identity, _ := rt.registry.Identity(id)

	return []Delivery{
		{Target: TargetAllExceptSelf, Envelope: ChatMessage{Type: TypeChat, Content: m.Content, Identity: identity}},
		{Target: TargetSelf, Envelope: ChatMessage{Type: TypeSelfChat, Content: m.Content, Identity: identity}},
	}
}

// Disconnect builds the leave announce from the connection's last identity and then
// removes the connection from the registry.
func (rt *Router) Disconnect(id ConnID) []Delivery {
	identity, _ := rt.registry.Identity(id)
	rt.registry.Remove(id)

	return []Delivery{
		{Target: TargetAllExceptSelf, Envelope: PresenceMessage{Type: TypeLeave, Identity: identity}},
	}
}
