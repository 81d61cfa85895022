package fleet

import "time"

// Vehicle is the persisted record of one tracked bus. BusNumber is the
// primary identifier. CurrentLat and CurrentLon are either both set or
// both nil - a vehicle that has never reported a position has neither.
type Vehicle struct {
	BusNumber string
	RouteName string

	CurrentLat *float64
	CurrentLon *float64

	FromAddress string
	FromLat     *float64
	FromLng     *float64

	ToAddress string
	ToLat     *float64
	ToLng     *float64

	IconURL string

	LastUpdated *time.Time
}

// UpdatePosition overwrites the current coordinates and refreshes
// LastUpdated. LastUpdated never moves backwards even if the supplied
// clock does.
func (vehicle *Vehicle) UpdatePosition(lat float64, lon float64, now time.Time) {
	vehicle.CurrentLat = &lat
	vehicle.CurrentLon = &lon

	if vehicle.LastUpdated == nil || now.After(*vehicle.LastUpdated) {
		vehicle.LastUpdated = &now
	}
}

func (vehicle *Vehicle) PositionMessage() PositionMessage {
	var lastUpdated *string
	if vehicle.LastUpdated != nil {
		formatted := vehicle.LastUpdated.UTC().Format(time.RFC3339Nano)
		lastUpdated = &formatted
	}

	return PositionMessage{
		BusNumber:   vehicle.BusNumber,
		Lat:         vehicle.CurrentLat,
		Lon:         vehicle.CurrentLon,
		RouteName:   vehicle.RouteName,
		FromAddress: vehicle.FromAddress,
		FromLat:     vehicle.FromLat,
		FromLng:     vehicle.FromLng,
		ToAddress:   vehicle.ToAddress,
		ToLat:       vehicle.ToLat,
		ToLng:       vehicle.ToLng,
		IconURL:     vehicle.IconURL,
		LastUpdated: lastUpdated,
	}
}
