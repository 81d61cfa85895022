package registry

import (
	"context"
	"errors"

	"github.com/fleetlive/fleetlive/pkg/fleet"
)

// ErrNotFound is returned by FindVehicle when no record exists for the
// given bus number. The update protocol treats this as a discard - it
// never creates records.
var ErrNotFound = errors.New("vehicle not found")

// Registry is the keyed vehicle store the tracking core reads and
// mutates. Creation and deletion of records happen out-of-band (see
// Seed); the core only lists, finds and persists.
type Registry interface {
	ListAllVehicles(ctx context.Context) ([]fleet.Vehicle, error)
	FindVehicle(ctx context.Context, busNumber string) (*fleet.Vehicle, error)
	Persist(ctx context.Context, vehicle *fleet.Vehicle) error
}
