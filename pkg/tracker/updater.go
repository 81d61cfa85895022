package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fleetlive/fleetlive/pkg/events"
	"github.com/fleetlive/fleetlive/pkg/fleet"
	"github.com/fleetlive/fleetlive/pkg/registry"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Publisher is the fanout side of the hub as seen by the update
// protocol.
type Publisher interface {
	Publish(topic string, message []byte)
}

// EventPublisher mirrors events.Publish. Nil disables event emission.
type EventPublisher func(eventType string, body any)

// Updater applies inbound position reports: decode, validate, look the
// vehicle up, mutate its position, persist and rebroadcast. Every
// failure discards the report with a diagnostic and leaves the session
// untouched - reports are untrusted input and are never fatal.
type Updater struct {
	registry  registry.Registry
	publisher Publisher
	events    EventPublisher

	validate     *validator.Validate
	vehicleLocks keyedMutex
}

func NewUpdater(vehicleRegistry registry.Registry, publisher Publisher, eventPublisher EventPublisher) *Updater {
	return &Updater{
		registry:  vehicleRegistry,
		publisher: publisher,
		events:    eventPublisher,

		validate: validator.New(),
	}
}

// HandleReport processes one raw inbound payload received on topic.
// The find-mutate-persist-publish sequence runs under a per-vehicle
// lock so concurrent reports for the same bus cannot interleave and
// observers see broadcasts for one vehicle in mutation order.
func (updater *Updater) HandleReport(ctx context.Context, topic string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered while processing position report")
		}
	}()

	var report fleet.PositionReport
	if err := json.Unmarshal(payload, &report); err != nil {
		log.Warn().Err(err).Str("payload", string(payload)).Msg("Discarding malformed position report")
		return
	}

	if err := updater.validate.Struct(&report); err != nil {
		log.Warn().Err(err).Str("payload", string(payload)).Msg("Discarding incomplete position report")
		return
	}

	busNumber := report.ID()

	unlock := updater.vehicleLocks.Lock(busNumber)
	defer unlock()

	vehicle, err := updater.registry.FindVehicle(ctx, busNumber)
	if errors.Is(err, registry.ErrNotFound) {
		log.Warn().Str("bus", busNumber).Msg("Discarding position report for unknown vehicle")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("bus", busNumber).Msg("Failed to look up vehicle")
		return
	}

	vehicle.UpdatePosition(*report.Lat, *report.Lon, time.Now().UTC())

	if err := updater.registry.Persist(ctx, vehicle); err != nil {
		log.Error().Err(err).Str("bus", busNumber).Msg("Failed to persist vehicle position")
		return
	}

	positionMessage := vehicle.PositionMessage()

	message, err := json.Marshal(positionMessage)
	if err != nil {
		log.Error().Err(err).Str("bus", busNumber).Msg("Failed to marshal position message")
		return
	}

	updater.publisher.Publish(topic, message)

	if updater.events != nil {
		updater.events(events.TypePositionUpdated, positionMessage)
	}
}
