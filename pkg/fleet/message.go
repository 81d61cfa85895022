package fleet

// PositionMessage is the wire representation of a vehicle sent to
// observers. The same schema is used for every element of the join
// snapshot and for each live update. Timestamps are RFC3339 strings,
// explicit null when the vehicle has never reported a position.
type PositionMessage struct {
	BusNumber   string   `json:"bus_number"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	RouteName   string   `json:"route_name"`
	FromAddress string   `json:"from_address"`
	FromLat     *float64 `json:"from_lat"`
	FromLng     *float64 `json:"from_lng"`
	ToAddress   string   `json:"to_address"`
	ToLat       *float64 `json:"to_lat"`
	ToLng       *float64 `json:"to_lng"`
	IconURL     string   `json:"icon_url,omitempty"`
	LastUpdated *string  `json:"last_updated"`
}

// PositionReport is the inbound message a driver client sends. Both
// bus_number and the legacy vehicleId key identify the vehicle; lat and
// lon are pointers so that 0 is a legitimate coordinate rather than a
// missing field.
type PositionReport struct {
	BusNumber string   `json:"bus_number" validate:"required_without=VehicleID"`
	VehicleID string   `json:"vehicleId" validate:"required_without=BusNumber"`
	Lat       *float64 `json:"lat" validate:"required"`
	Lon       *float64 `json:"lon" validate:"required"`
}

// ID returns the vehicle identifier, preferring bus_number.
func (report *PositionReport) ID() string {
	if report.BusNumber != "" {
		return report.BusNumber
	}

	return report.VehicleID
}
