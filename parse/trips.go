package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/opentransit/gtfsstats/model"
)

type TripCSV struct {
	ID          string `csv:"trip_id"`
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	ShapeID     string `csv:"shape_id"`
	DirectionID int8   `csv:"direction_id"`
	// Headsign  string `csv:"trip_headsign"`
	// ShortName string `csv:"trip_short_name"`
}

// Trips referencing unknown routes or services are kept here; the
// rollup joins drop them later on.
func ParseTrips(data io.Reader) ([]model.Trip, error) {
	tripCsv := []*TripCSV{}
	if err := gocsv.Unmarshal(data, &tripCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling trips csv: %w", err)
	}

	seen := map[string]bool{}
	trips := make([]model.Trip, 0, len(tripCsv))
	for _, t := range tripCsv {
		if t.ID == "" {
			return nil, fmt.Errorf("empty trip_id")
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("repeated trip_id '%s'", t.ID)
		}
		seen[t.ID] = true

		if t.DirectionID != 0 && t.DirectionID != 1 {
			return nil, fmt.Errorf("invalid direction_id '%d'", t.DirectionID)
		}

		trips = append(trips, model.Trip{
			ID:          t.ID,
			RouteID:     t.RouteID,
			ServiceID:   t.ServiceID,
			ShapeID:     t.ShapeID,
			DirectionID: t.DirectionID,
		})
	}

	return trips, nil
}
