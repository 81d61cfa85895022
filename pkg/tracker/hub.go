package tracker

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Member is one receiver of topic broadcasts. Deliver must not block;
// a Member that cannot accept a message returns an error and is dropped
// from the topic.
type Member interface {
	Deliver(message []byte) error
}

// Hub is the topic-keyed broadcast group. Publishers never enumerate
// members themselves - Publish fans the message out to every member
// joined to the topic at the instant the membership table is read.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[Member]struct{}
}

func NewHub() *Hub {
	return &Hub{
		topics: map[string]map[Member]struct{}{},
	}
}

func (hub *Hub) Join(topic string, member Member) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	members := hub.topics[topic]
	if members == nil {
		members = map[Member]struct{}{}
		hub.topics[topic] = members
	}

	members[member] = struct{}{}
}

func (hub *Hub) Leave(topic string, member Member) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	members := hub.topics[topic]
	delete(members, member)

	if len(members) == 0 {
		delete(hub.topics, topic)
	}
}

// Publish delivers message to every current member of topic, exactly
// once per member. A member that fails to accept is removed from the
// topic rather than failing the publish.
func (hub *Hub) Publish(topic string, message []byte) {
	hub.mu.RLock()
	members := make([]Member, 0, len(hub.topics[topic]))
	for member := range hub.topics[topic] {
		members = append(members, member)
	}
	hub.mu.RUnlock()

	for _, member := range members {
		if err := member.Deliver(message); err != nil {
			log.Debug().Err(err).Str("topic", topic).Msg("Dropping unresponsive member")
			hub.Leave(topic, member)
		}
	}
}

func (hub *Hub) MemberCount(topic string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return len(hub.topics[topic])
}
