package events

import (
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/fleetlive/fleetlive/pkg/redis_client"
	"github.com/rs/zerolog/log"
)

const queueName = "fleet-events"

const (
	TypeSessionConnected    = "session-connected"
	TypeSessionDisconnected = "session-disconnected"
	TypePositionUpdated     = "position-updated"
)

type Event struct {
	Type             string
	CreationDateTime time.Time

	Body any
}

var publishQueue rmq.Queue

// SetupPublisher opens the fleet events queue for publishing. Requires
// redis_client.Connect to have run first.
func SetupPublisher() error {
	queue, err := redis_client.QueueConnection.OpenQueue(queueName)
	if err != nil {
		return err
	}

	publishQueue = queue

	return nil
}

// Publish enqueues an event fire-and-forget. Failures are logged and
// never surface to the caller - event delivery must not affect the
// tracking protocol.
func Publish(eventType string, body any) {
	if publishQueue == nil {
		return
	}

	payload, err := json.Marshal(Event{
		Type:             eventType,
		CreationDateTime: time.Now().UTC(),
		Body:             body,
	})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to marshal event")
		return
	}

	if err := publishQueue.PublishBytes(payload); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to publish event")
	}
}
