package simulator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fleetlive/fleetlive/pkg/fleet"
	"github.com/gorilla/websocket"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
)

// Simulator drives a fake bus along the straight line between its
// configured route origin and destination, reporting a position every
// interval. Useful for exercising the tracker end to end without real
// hardware.
type Simulator struct {
	URL      string
	Bus      string
	Interval time.Duration
	Steps    int
}

func (simulator *Simulator) Run() error {
	operation := func() error {
		return simulator.drive()
	}

	// Reconnect with exponential backoff; a tracker restart should not
	// kill a long-running simulation.
	return backoff.Retry(operation, backoff.NewExponentialBackOff())
}

func (simulator *Simulator) drive() error {
	conn, _, err := websocket.DefaultDialer.Dial(simulator.URL, nil)
	if err != nil {
		log.Warn().Err(err).Str("url", simulator.URL).Msg("Failed to connect, retrying")
		return err
	}
	defer conn.Close()

	// First frame is the registry snapshot - find our bus's route in it.
	_, payload, err := conn.ReadMessage()
	if err != nil {
		return err
	}

	var snapshot []fleet.PositionMessage
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding snapshot: %w", err))
	}

	var bus *fleet.PositionMessage
	for index, vehicle := range snapshot {
		if vehicle.BusNumber == simulator.Bus {
			bus = &snapshot[index]
			break
		}
	}

	if bus == nil {
		return backoff.Permanent(fmt.Errorf("bus %s is not in the registry", simulator.Bus))
	}

	if bus.FromLat == nil || bus.FromLng == nil || bus.ToLat == nil || bus.ToLng == nil {
		return backoff.Permanent(fmt.Errorf("bus %s has no route endpoints configured", simulator.Bus))
	}

	log.Info().Str("bus", simulator.Bus).Str("route", bus.RouteName).Msg("Starting simulated drive")

	for step := 0; step <= simulator.Steps; step++ {
		progress := float64(step) / float64(simulator.Steps)

		lat := *bus.FromLat + (*bus.ToLat-*bus.FromLat)*progress
		lon := *bus.FromLng + (*bus.ToLng-*bus.FromLng)*progress

		report, err := json.Marshal(fleet.PositionReport{
			BusNumber: simulator.Bus,
			Lat:       &lat,
			Lon:       &lon,
		})
		if err != nil {
			return backoff.Permanent(err)
		}

		if err := conn.WriteMessage(websocket.TextMessage, report); err != nil {
			return err
		}

		log.Debug().Str("bus", simulator.Bus).Float64("lat", lat).Float64("lon", lon).Msg("Reported position")

		time.Sleep(simulator.Interval)
	}

	log.Info().Str("bus", simulator.Bus).Msg("Simulated drive complete")

	return nil
}

// Watch connects as a plain observer and pretty-prints the snapshot and
// every broadcast it receives.
func Watch(url string) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var decoded any
		if err := json.Unmarshal(payload, &decoded); err != nil {
			log.Warn().Err(err).Msg("Received undecodable frame")
			continue
		}

		pretty.Println(decoded)
	}
}
