package chat

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"lobbychat/internal/app/presence"
)

// sentFrame is one frame handed to the transport.
type sentFrame struct {
	to    ConnID
	frame map[string]string
}

// fakeSender records sends in order and fails for selected connections.
type fakeSender struct {
	mu     sync.Mutex
	sent   []sentFrame
	failed map[ConnID]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{failed: make(map[ConnID]bool)}
}

func (s *fakeSender) Send(id ConnID, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed[id] {
		return errors.New("simulated transport error")
	}

	var frame map[string]string
	if err := json.Unmarshal(payload, &frame); err != nil {
		return err
	}
	s.sent = append(s.sent, sentFrame{to: id, frame: frame})
	return nil
}

// framesFor returns the frames delivered to id, in order.
func (s *fakeSender) framesFor(id ConnID) []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var frames []map[string]string
	for _, f := range s.sent {
		if f.to == id {
			frames = append(frames, f.frame)
		}
	}
	return frames
}

func (s *fakeSender) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *fakeSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

// recordingNotifier collects presence events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []presence.Event
}

func (n *recordingNotifier) Notify(e presence.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func newTestHub(ids ...ConnID) (*Hub, *fakeSender, *recordingNotifier) {
	sender := newFakeSender()
	notifier := &recordingNotifier{}
	hub := NewHub(NewRegistry(), sender, notifier)

	for _, id := range ids {
		hub.Connect(id)
	}
	return hub, sender, notifier
}

func login(hub *Hub, id ConnID, nickname string) {
	hub.Receive(id, []byte(`{"type":"101","nickname":"`+nickname+`","gender":"x","pic":"`+nickname+`.png"}`))
}

func expectSingle(t *testing.T, frames []map[string]string, want map[string]string) {
	t.Helper()

	if len(frames) != 1 {
		t.Fatalf("Expected exactly one frame, got %d: %v", len(frames), frames)
	}
	for k, v := range want {
		if frames[0][k] != v {
			t.Errorf("Field %q = %q, want %q (frame %v)", k, frames[0][k], v, frames[0])
		}
	}
}

// TestHubLoginBroadcast verifies that a login is announced to peers and acknowledged to the sender.
func TestHubLoginBroadcast(t *testing.T) {
	hub, sender, _ := newTestHub("b", "a")

	login(hub, "a", "ann")

	expectSingle(t, sender.framesFor("b"), map[string]string{"type": "101", "nickname": "ann", "gender": "x", "pic": "ann.png"})
	expectSingle(t, sender.framesFor("a"), map[string]string{"type": "100", "nickname": "ann", "gender": "x", "pic": "ann.png"})
}

// TestHubChatFanOut verifies one broadcast per peer plus one echo, and nothing else.
func TestHubChatFanOut(t *testing.T) {
	hub, sender, _ := newTestHub("a", "b", "c")
	login(hub, "a", "ann")
	sender.reset()

	hub.Receive("a", []byte(`{"type":"201","content":"hello"}`))

	for _, peer := range []ConnID{"b", "c"} {
		expectSingle(t, sender.framesFor(peer), map[string]string{"type": "201", "content": "hello", "nickname": "ann"})
	}
	expectSingle(t, sender.framesFor("a"), map[string]string{"type": "200", "content": "hello", "nickname": "ann"})

	if sender.total() != 3 {
		t.Errorf("Expected 3 frames in total, got %d", sender.total())
	}
}

// TestHubPeerBroadcastPrecedesSelfEcho verifies delivery order within one inbound frame.
func TestHubPeerBroadcastPrecedesSelfEcho(t *testing.T) {
	hub, sender, _ := newTestHub("a", "b")

	login(hub, "a", "ann")

	if len(sender.sent) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(sender.sent))
	}
	if sender.sent[0].to != "b" || sender.sent[1].to != "a" {
		t.Errorf("Expected peer frame before self frame, got order %s, %s", sender.sent[0].to, sender.sent[1].to)
	}
}

// TestHubLeaveUsesLastIdentity verifies that the leave announce carries the departed identity.
func TestHubLeaveUsesLastIdentity(t *testing.T) {
	hub, sender, _ := newTestHub("a", "b", "c")
	login(hub, "a", "ann")
	sender.reset()

	hub.Disconnect("a")

	for _, peer := range []ConnID{"b", "c"} {
		expectSingle(t, sender.framesFor(peer), map[string]string{"type": "102", "nickname": "ann", "pic": "ann.png"})
	}
	if frames := sender.framesFor("a"); len(frames) != 0 {
		t.Errorf("Departed connection should receive nothing, got %v", frames)
	}
	if _, ok := hub.Registry().Identity("a"); ok || hub.Registry().Len() != 2 {
		t.Error("Departed connection is still registered")
	}
}

// TestHubLeaveBeforeLogin verifies an empty leave announce for anonymous connections.
func TestHubLeaveBeforeLogin(t *testing.T) {
	hub, sender, _ := newTestHub("a", "b")

	hub.Disconnect("a")

	expectSingle(t, sender.framesFor("b"), map[string]string{"type": "102", "nickname": "", "gender": "", "pic": ""})
}

// TestHubChatWithoutLogin verifies that anonymous chat is delivered with empty identity fields.
func TestHubChatWithoutLogin(t *testing.T) {
	hub, sender, _ := newTestHub("a", "b")

	hub.Receive("a", []byte(`{"type":"201","content":"anyone?"}`))

	expectSingle(t, sender.framesFor("b"), map[string]string{"type": "201", "content": "anyone?", "nickname": ""})
	expectSingle(t, sender.framesFor("a"), map[string]string{"type": "200", "content": "anyone?", "nickname": ""})
}

// TestHubIsolatesSendFailures verifies that one failing peer does not affect the others.
func TestHubIsolatesSendFailures(t *testing.T) {
	hub, sender, _ := newTestHub("a", "b", "c", "d")
	sender.failed["c"] = true

	login(hub, "a", "ann")
	hub.Receive("a", []byte(`{"type":"201","content":"hi"}`))

	for _, peer := range []ConnID{"b", "d"} {
		frames := sender.framesFor(peer)
		if len(frames) != 2 || frames[0]["type"] != "101" || frames[1]["type"] != "201" {
			t.Errorf("Peer %s expected announce and broadcast, got %v", peer, frames)
		}
	}

	frames := sender.framesFor("a")
	if len(frames) != 2 || frames[0]["type"] != "100" || frames[1]["type"] != "200" {
		t.Errorf("Sender expected ack and echo, got %v", frames)
	}
}

// TestHubRelogin verifies last-write-wins identity and one announce per login.
func TestHubRelogin(t *testing.T) {
	hub, sender, _ := newTestHub("a", "b")

	login(hub, "a", "first")
	login(hub, "a", "second")
	hub.Receive("a", []byte(`{"type":"201","content":"who am i"}`))

	frames := sender.framesFor("b")
	if len(frames) != 3 {
		t.Fatalf("Expected 2 announces and 1 broadcast, got %v", frames)
	}
	if frames[0]["type"] != "101" || frames[0]["nickname"] != "first" {
		t.Errorf("Unexpected first announce %v", frames[0])
	}
	if frames[1]["type"] != "101" || frames[1]["nickname"] != "second" {
		t.Errorf("Unexpected second announce %v", frames[1])
	}
	if frames[2]["type"] != "201" || frames[2]["nickname"] != "second" {
		t.Errorf("Broadcast should use the latest nickname, got %v", frames[2])
	}
}

// TestHubIgnoresUnknownAndMalformedFrames verifies that bad input produces no traffic.
func TestHubIgnoresUnknownAndMalformedFrames(t *testing.T) {
	hub, sender, notifier := newTestHub("a", "b")

	hub.Receive("a", []byte(`{"type":"202","content":"private"}`))
	hub.Receive("a", []byte(`{"type":"201","content":`))
	hub.Receive("a", []byte(`[]`))

	if sender.total() != 0 {
		t.Errorf("Expected no frames, got %d", sender.total())
	}
	if len(notifier.events) != 2 {
		t.Errorf("Expected only the two connect events, got %d", len(notifier.events))
	}
}

// TestHubPresenceEvents verifies the lifecycle events handed to the notifier.
func TestHubPresenceEvents(t *testing.T) {
	hub, _, notifier := newTestHub("a")

	login(hub, "a", "ann")
	hub.Receive("a", []byte(`{"type":"201","content":"hi"}`))
	hub.Disconnect("a")

	kinds := []presence.Kind{presence.KindConnected, presence.KindLogin, presence.KindLeave}
	if len(notifier.events) != len(kinds) {
		t.Fatalf("Expected %d events, got %+v", len(kinds), notifier.events)
	}
	for i, kind := range kinds {
		e := notifier.events[i]
		if e.Kind != kind || e.ConnectionID != "a" {
			t.Errorf("Event %d = %+v, want kind %s for a", i, e, kind)
		}
	}

	leave := notifier.events[2]
	if !leave.LoggedIn || leave.Identity.Nickname != "ann" {
		t.Errorf("Leave event should carry the last identity, got %+v", leave)
	}
}

// TestNewHubNilNotifier verifies that a hub works without a presence feed.
func TestNewHubNilNotifier(t *testing.T) {
	sender := newFakeSender()
	hub := NewHub(NewRegistry(), sender, nil)

	hub.Connect("a")
	login(hub, "a", "ann")
	hub.Disconnect("a")

	if sender.total() != 1 {
		t.Errorf("Expected only the self ack, got %d frames", sender.total())
	}
}
