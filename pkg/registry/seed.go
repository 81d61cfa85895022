package registry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fleetlive/fleetlive/pkg/fleet"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// SeedDefinition is one vehicle record as written in a seed yaml file.
// Seeding is the out-of-band creation path for vehicle records - the
// live tracking core itself never creates them.
type SeedDefinition struct {
	BusNumber string `yaml:"bus_number"`
	RouteName string `yaml:"route_name"`

	FromAddress string   `yaml:"from_address"`
	FromLat     *float64 `yaml:"from_lat"`
	FromLng     *float64 `yaml:"from_lng"`

	ToAddress string   `yaml:"to_address"`
	ToLat     *float64 `yaml:"to_lat"`
	ToLng     *float64 `yaml:"to_lng"`

	IconURL string `yaml:"icon_url"`
}

// Seed walks a directory of yaml files and upserts every vehicle
// definition found. Route metadata always comes from the seed file but
// a previously reported position survives re-seeding.
func Seed(registry Registry, directory string) error {
	return filepath.Walk(directory,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() {
				return nil
			}

			extension := filepath.Ext(path)
			if extension != ".yaml" && extension != ".yml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading vehicle seed file")

			seedYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(seedYaml))

			for {
				var definition SeedDefinition
				if decoder.Decode(&definition) != nil {
					break
				}

				if definition.BusNumber == "" {
					log.Warn().Str("path", path).Msg("Skipping seed record without bus_number")
					continue
				}

				if err := upsertSeed(registry, definition); err != nil {
					log.Error().Err(err).Str("bus", definition.BusNumber).Msg("Failed to seed vehicle")
					continue
				}

				log.Info().Str("bus", definition.BusNumber).Msg("Seeded vehicle")
			}

			return nil
		})
}

func upsertSeed(registry Registry, definition SeedDefinition) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vehicle := &fleet.Vehicle{
		BusNumber:   definition.BusNumber,
		RouteName:   definition.RouteName,
		FromAddress: definition.FromAddress,
		FromLat:     definition.FromLat,
		FromLng:     definition.FromLng,
		ToAddress:   definition.ToAddress,
		ToLat:       definition.ToLat,
		ToLng:       definition.ToLng,
		IconURL:     definition.IconURL,
	}

	existing, err := registry.FindVehicle(ctx, definition.BusNumber)
	if err == nil {
		vehicle.CurrentLat = existing.CurrentLat
		vehicle.CurrentLon = existing.CurrentLon
		vehicle.LastUpdated = existing.LastUpdated
	} else if err != ErrNotFound {
		return err
	}

	return registry.Persist(ctx, vehicle)
}
