package tracker

import (
	"errors"
	"sync"
	"testing"
)

// captureMember records every delivery it receives.
type captureMember struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
}

func (member *captureMember) Deliver(message []byte) error {
	member.mu.Lock()
	defer member.mu.Unlock()

	if member.fail {
		return errors.New("cannot accept")
	}

	member.messages = append(member.messages, message)
	return nil
}

func (member *captureMember) received(t *testing.T) [][]byte {
	t.Helper()

	member.mu.Lock()
	defer member.mu.Unlock()

	return append([][]byte{}, member.messages...)
}

func TestPublishReachesEveryMemberOnce(t *testing.T) {
	hub := NewHub()

	first := &captureMember{}
	second := &captureMember{}
	hub.Join("tracking", first)
	hub.Join("tracking", second)

	hub.Publish("tracking", []byte("update"))

	for _, member := range []*captureMember{first, second} {
		messages := member.received(t)
		if len(messages) != 1 {
			t.Fatalf("expected exactly one delivery, got %d", len(messages))
		}
		if string(messages[0]) != "update" {
			t.Fatalf("unexpected message %q", messages[0])
		}
	}
}

func TestPublishIsScopedToTopic(t *testing.T) {
	hub := NewHub()

	tracking := &captureMember{}
	other := &captureMember{}
	hub.Join("tracking", tracking)
	hub.Join("other", other)

	hub.Publish("tracking", []byte("update"))

	if len(other.received(t)) != 0 {
		t.Fatal("member of a different topic must not receive the message")
	}
	if len(tracking.received(t)) != 1 {
		t.Fatal("member of the published topic must receive the message")
	}
}

func TestLeaveStopsDeliveries(t *testing.T) {
	hub := NewHub()

	member := &captureMember{}
	hub.Join("tracking", member)
	hub.Leave("tracking", member)

	hub.Publish("tracking", []byte("update"))

	if len(member.received(t)) != 0 {
		t.Fatal("left member must not receive further deliveries")
	}
	if hub.MemberCount("tracking") != 0 {
		t.Fatal("membership table should be empty")
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	hub := NewHub()

	member := &captureMember{}
	hub.Join("tracking", member)
	hub.Leave("tracking", member)
	hub.Leave("tracking", member)

	if hub.MemberCount("tracking") != 0 {
		t.Fatal("double leave should be a no-op")
	}
}

func TestFailingMemberIsDropped(t *testing.T) {
	hub := NewHub()

	healthy := &captureMember{}
	broken := &captureMember{fail: true}
	hub.Join("tracking", healthy)
	hub.Join("tracking", broken)

	hub.Publish("tracking", []byte("first"))

	if hub.MemberCount("tracking") != 1 {
		t.Fatalf("expected the failing member to be dropped, count=%d", hub.MemberCount("tracking"))
	}

	hub.Publish("tracking", []byte("second"))

	if len(healthy.received(t)) != 2 {
		t.Fatal("healthy member should keep receiving after a peer is dropped")
	}
}

func TestPublishPreservesOrderPerMember(t *testing.T) {
	hub := NewHub()

	member := &captureMember{}
	hub.Join("tracking", member)

	hub.Publish("tracking", []byte("first"))
	hub.Publish("tracking", []byte("second"))

	messages := member.received(t)
	if len(messages) != 2 || string(messages[0]) != "first" || string(messages[1]) != "second" {
		t.Fatalf("unexpected delivery order: %q", messages)
	}
}
