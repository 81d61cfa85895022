package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/fleetlive/fleetlive/pkg/redis_client"
	"github.com/rs/zerolog/log"
)

const numConsumers = 5
const batchSize = 20

const statsKeyPrefix = "fleetlive:stats:events:"

func StartConsumers() {
	// Run the background consumers
	log.Info().Msg("Starting events consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(queueName)
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(numConsumers*batchSize, 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < numConsumers; i++ {
		go startEventConsumer(queue, i)
	}
}

func startEventConsumer(queue rmq.Queue, id int) {
	log.Info().Msgf("Starting events consumer %d", id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("event-queue-%d", id), batchSize, 2*time.Second, NewBatchConsumer(id)); err != nil {
		panic(err)
	}
}

type BatchConsumer struct {
	id int
}

func NewBatchConsumer(id int) *BatchConsumer {
	return &BatchConsumer{id: id}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		statusCmd := redis_client.Client.Incr(context.Background(), statsKeyPrefix+event.Type)
		if statusCmd.Err() != nil {
			log.Error().Err(statusCmd.Err()).Msg("Failed to increment event counter")
		}

		log.Debug().
			Str("type", event.Type).
			Time("created", event.CreationDateTime).
			Msg("Consumed event")
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}
