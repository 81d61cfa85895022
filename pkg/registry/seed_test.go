package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetlive/fleetlive/pkg/fleet"
)

type memoryRegistry struct {
	vehicles map[string]fleet.Vehicle
}

func (reg *memoryRegistry) ListAllVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	vehicles := []fleet.Vehicle{}
	for _, vehicle := range reg.vehicles {
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, nil
}

func (reg *memoryRegistry) FindVehicle(ctx context.Context, busNumber string) (*fleet.Vehicle, error) {
	vehicle, ok := reg.vehicles[busNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return &vehicle, nil
}

func (reg *memoryRegistry) Persist(ctx context.Context, vehicle *fleet.Vehicle) error {
	reg.vehicles[vehicle.BusNumber] = *vehicle
	return nil
}

func writeSeedFile(t *testing.T, directory string, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(directory, "vehicles.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
}

func TestSeedCreatesVehicles(t *testing.T) {
	directory := t.TempDir()
	writeSeedFile(t, directory, `
bus_number: "101"
route_name: Majestic - Whitefield
from_address: Majestic Bus Station
from_lat: 12.9774
from_lng: 77.5708
to_address: Whitefield Bus Depot
to_lat: 12.9698
to_lng: 77.7500
---
bus_number: "205"
route_name: Shivajinagar - Electronic City
`)

	reg := &memoryRegistry{vehicles: map[string]fleet.Vehicle{}}
	if err := Seed(reg, directory); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if len(reg.vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(reg.vehicles))
	}

	vehicle := reg.vehicles["101"]
	if vehicle.RouteName != "Majestic - Whitefield" {
		t.Fatalf("route metadata not stored: %+v", vehicle)
	}
	if vehicle.FromLat == nil || *vehicle.FromLat != 12.9774 {
		t.Fatalf("origin coordinates not stored: %+v", vehicle)
	}
	if vehicle.CurrentLat != nil || vehicle.LastUpdated != nil {
		t.Fatal("a freshly seeded vehicle has no position")
	}
}

func TestSeedPreservesReportedPosition(t *testing.T) {
	directory := t.TempDir()
	writeSeedFile(t, directory, `
bus_number: "101"
route_name: Updated Route Name
`)

	lat, lon := 13.0, 77.7
	lastUpdated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := &memoryRegistry{vehicles: map[string]fleet.Vehicle{
		"101": {
			BusNumber:   "101",
			RouteName:   "Old Route Name",
			CurrentLat:  &lat,
			CurrentLon:  &lon,
			LastUpdated: &lastUpdated,
		},
	}}

	if err := Seed(reg, directory); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	vehicle := reg.vehicles["101"]
	if vehicle.RouteName != "Updated Route Name" {
		t.Fatal("re-seeding should update route metadata")
	}
	if vehicle.CurrentLat == nil || *vehicle.CurrentLat != 13.0 {
		t.Fatal("re-seeding must not wipe the reported position")
	}
	if vehicle.LastUpdated == nil || !vehicle.LastUpdated.Equal(lastUpdated) {
		t.Fatal("re-seeding must not wipe the update timestamp")
	}
}

func TestSeedSkipsRecordsWithoutBusNumber(t *testing.T) {
	directory := t.TempDir()
	writeSeedFile(t, directory, `
route_name: No Identifier
---
bus_number: "205"
`)

	reg := &memoryRegistry{vehicles: map[string]fleet.Vehicle{}}
	if err := Seed(reg, directory); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if len(reg.vehicles) != 1 {
		t.Fatalf("expected only the identified record, got %d", len(reg.vehicles))
	}
}
