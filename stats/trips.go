// Package stats computes the per-trip and per-route daily service
// statistics from a windowed snapshot.
package stats

import (
	"math"
	"sort"

	"github.com/opentransit/gtfsstats/model"
	"github.com/opentransit/gtfsstats/zones"
)

// Distance units are assumed to be meters; speeds come out in km/h.
const metersPerKilometer = 1000.0

const secondsPerHour = 3600.0

// Distancer answers distance-in-meters queries between two stops.
// Returns NaN when either stop is unknown.
type Distancer interface {
	Distance(stopA, stopB string) float64
}

// BuildTripRows joins the daily snapshot tables into one row per
// (trip, stop-sequence position). Routes, stops and stop times join
// inner: a stop time missing any of them is dropped, being invalid
// input rather than an error. Agency and zone join left, preserving
// blanks.
func BuildTripRows(snap *model.Snapshot, zoneLookup zones.Lookup) []model.TripRow {
	routesByID := make(map[string]model.Route, len(snap.Routes))
	for _, r := range snap.Routes {
		routesByID[r.ID] = r
	}
	agenciesByID := make(map[string]model.Agency, len(snap.Agencies))
	for _, a := range snap.Agencies {
		agenciesByID[a.ID] = a
	}
	stopsByID := make(map[string]model.Stop, len(snap.Stops))
	for _, s := range snap.Stops {
		stopsByID[s.ID] = s
	}
	tripsByID := make(map[string]model.Trip, len(snap.Trips))
	for _, t := range snap.Trips {
		tripsByID[t.ID] = t
	}

	rows := []model.TripRow{}
	for _, st := range snap.StopTimes {
		trip, ok := tripsByID[st.TripID]
		if !ok {
			continue
		}
		route, ok := routesByID[trip.RouteID]
		if !ok {
			continue
		}
		stop, ok := stopsByID[st.StopID]
		if !ok {
			continue
		}

		row := model.TripRow{
			TripID:            trip.ID,
			RouteID:           route.ID,
			RouteShortName:    route.ShortName,
			RouteLongName:     route.LongName,
			RouteType:         route.Type,
			AgencyID:          route.AgencyID,
			DirectionID:       trip.DirectionID,
			ShapeID:           trip.ShapeID,
			StopSequence:      st.StopSequence,
			Departure:         st.Departure,
			StopID:            stop.ID,
			StopCode:          stop.Code,
			StopName:          stop.Name,
			StopLat:           stop.Lat,
			StopLon:           stop.Lon,
			ZoneName:          zoneLookup[stop.ID],
			ShapeDistTraveled: st.ShapeDistTraveled,
		}
		if agency, ok := agenciesByID[route.AgencyID]; ok {
			row.AgencyName = agency.Name
		}

		rows = append(rows, row)
	}

	return rows
}

// TripStats reduces joined trip rows into exactly one TripStat per
// distinct trip_id, ordered by trip_id.
func TripStats(rows []model.TripRow, dist Distancer, loopDistanceMeters float64) []*model.TripStat {
	groups := map[string][]model.TripRow{}
	for _, row := range rows {
		groups[row.TripID] = append(groups[row.TripID], row)
	}

	tripIDs := make([]string, 0, len(groups))
	for tripID := range groups {
		tripIDs = append(tripIDs, tripID)
	}
	sort.Strings(tripIDs)

	result := make([]*model.TripStat, 0, len(tripIDs))
	for _, tripID := range tripIDs {
		group := groups[tripID]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].StopSequence < group[j].StopSequence
		})
		result = append(result, reduceTrip(group, dist, loopDistanceMeters))
	}

	return result
}

func reduceTrip(group []model.TripRow, dist Distancer, loopDistanceMeters float64) *model.TripStat {
	first := group[0]
	last := group[len(group)-1]

	zoneSet := map[string]bool{}
	zonesMissing := 0
	distance := model.Undefined()
	for _, row := range group {
		if row.ZoneName == "" {
			zonesMissing++
		} else {
			zoneSet[row.ZoneName] = true
		}
		if model.Defined(row.ShapeDistTraveled) {
			if !model.Defined(distance) || row.ShapeDistTraveled > distance {
				distance = row.ShapeDistTraveled
			}
		}
	}

	duration := (last.Departure - first.Departure) / secondsPerHour

	// The loop check deliberately fails on NaN and on exactly the
	// threshold distance.
	isLoop := dist.Distance(first.StopID, last.StopID) < loopDistanceMeters

	speed := model.Undefined()
	if duration != 0 && !math.IsNaN(duration) {
		speed = distance / duration / metersPerKilometer
	}

	return &model.TripStat{
		TripID:          first.TripID,
		RouteID:         first.RouteID,
		RouteShortName:  first.RouteShortName,
		RouteLongName:   first.RouteLongName,
		RouteType:       first.RouteType,
		AgencyID:        first.AgencyID,
		AgencyName:      first.AgencyName,
		DirectionID:     first.DirectionID,
		ShapeID:         first.ShapeID,
		NumStops:        len(group),
		StartTime:       first.Departure,
		EndTime:         last.Departure,
		StartStopID:     first.StopID,
		EndStopID:       last.StopID,
		StartStopCode:   first.StopCode,
		EndStopCode:     last.StopCode,
		StartStopName:   first.StopName,
		EndStopName:     last.StopName,
		StartStopLat:    first.StopLat,
		StartStopLon:    first.StopLon,
		EndStopLat:      last.StopLat,
		EndStopLon:      last.StopLon,
		StartZone:       first.ZoneName,
		EndZone:         last.ZoneName,
		NumZones:        len(zoneSet),
		NumZonesMissing: zonesMissing,
		IsLoop:          isLoop,
		Distance:        distance,
		Duration:        duration,
		Speed:           speed,
	}
}
