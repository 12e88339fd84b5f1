// Package geo answers distance queries between stops.
package geo

import (
	"github.com/golang/geo/s2"

	"github.com/opentransit/gtfsstats/model"
)

const earthRadiusMeters = 6371000.0

// StopIndex maps stop IDs to their position.
type StopIndex map[string]s2.LatLng

// NewStopIndex indexes the stops that carry coordinates. Stops with a
// blank position are left out, so distance queries on them come back
// undefined.
func NewStopIndex(stops []model.Stop) StopIndex {
	index := make(StopIndex, len(stops))
	for _, stop := range stops {
		if !model.Defined(stop.Lat) || !model.Defined(stop.Lon) {
			continue
		}
		index[stop.ID] = s2.LatLngFromDegrees(stop.Lat, stop.Lon)
	}
	return index
}

// Distance returns the great-circle distance between two stops in
// meters, or NaN when either stop is unknown or has no coordinates.
func (x StopIndex) Distance(stopA, stopB string) float64 {
	a, okA := x[stopA]
	b, okB := x[stopB]
	if !okA || !okB {
		return model.Undefined()
	}
	return a.Distance(b).Radians() * earthRadiusMeters
}
