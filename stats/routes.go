package stats

import (
	"math"
	"sort"

	"github.com/opentransit/gtfsstats/model"
)

// RouteOptions carries the headway window, in seconds past midnight.
type RouteOptions struct {
	HeadwayStart float64
	HeadwayEnd   float64
}

// RouteStats groups trip stats by route_id and reduces each group into
// a RouteStat, ordered by route_id. Directions are merged. Identity
// and location fields are copied from the group's first member trip --
// a simplification kept from the original design, not an aggregation.
// Empty input yields empty output.
func RouteStats(tripStats []*model.TripStat, opts RouteOptions) []*model.RouteStat {
	groups := map[string][]*model.TripStat{}
	for _, ts := range tripStats {
		groups[ts.RouteID] = append(groups[ts.RouteID], ts)
	}

	routeIDs := make([]string, 0, len(groups))
	for routeID := range groups {
		routeIDs = append(routeIDs, routeID)
	}
	sort.Strings(routeIDs)

	result := make([]*model.RouteStat, 0, len(routeIDs))
	for _, routeID := range routeIDs {
		result = append(result, reduceRoute(groups[routeID], opts))
	}

	return result
}

func reduceRoute(group []*model.TripStat, opts RouteOptions) *model.RouteStat {
	rep := group[0]

	rs := &model.RouteStat{
		RouteID:        rep.RouteID,
		RouteShortName: rep.RouteShortName,
		RouteLongName:  rep.RouteLongName,
		RouteType:      rep.RouteType,
		AgencyID:       rep.AgencyID,
		AgencyName:     rep.AgencyName,
		NumTrips:       len(group),

		StartStopID:     rep.StartStopID,
		EndStopID:       rep.EndStopID,
		StartStopLat:    rep.StartStopLat,
		StartStopLon:    rep.StartStopLon,
		EndStopLat:      rep.EndStopLat,
		EndStopLon:      rep.EndStopLon,
		NumStops:        rep.NumStops,
		StartZone:       rep.StartZone,
		EndZone:         rep.EndZone,
		NumZones:        rep.NumZones,
		NumZonesMissing: rep.NumZonesMissing,
	}

	startTime := model.Undefined()
	endTime := model.Undefined()
	serviceDistance := 0.0
	serviceDuration := 0.0
	directions := map[int8]bool{}
	startsByDirection := map[int8][]float64{}
	intervals := []Interval{}

	const endOfDay = 24 * secondsPerHour

	for _, ts := range group {
		if model.Defined(ts.StartTime) {
			rs.NumTripStarts++
			startsByDirection[ts.DirectionID] = append(startsByDirection[ts.DirectionID], ts.StartTime)
			if !model.Defined(startTime) || ts.StartTime < startTime {
				startTime = ts.StartTime
			}
		}
		if model.Defined(ts.EndTime) {
			// Trips running past midnight don't end today.
			if ts.EndTime < endOfDay {
				rs.NumTripEnds++
			}
			if !model.Defined(endTime) || ts.EndTime > endTime {
				endTime = ts.EndTime
			}
		}
		if model.Defined(ts.StartTime) && model.Defined(ts.EndTime) {
			intervals = append(intervals, Interval{Start: ts.StartTime, End: ts.EndTime})
		}

		rs.IsLoop = rs.IsLoop || ts.IsLoop
		directions[ts.DirectionID] = true

		if model.Defined(ts.Distance) {
			serviceDistance += ts.Distance
		}
		if model.Defined(ts.Duration) {
			serviceDuration += ts.Duration
		}
	}

	rs.StartTime = startTime
	rs.EndTime = endTime
	rs.IsBidirectional = len(directions) > 1
	rs.ServiceDistance = serviceDistance
	rs.ServiceDuration = serviceDuration

	rs.MinHeadway = model.Undefined()
	rs.MaxHeadway = model.Undefined()
	rs.MeanHeadway = model.Undefined()
	if min, max, mean, ok := Headways(startsByDirection, opts.HeadwayStart, opts.HeadwayEnd); ok {
		rs.MinHeadway = min
		rs.MaxHeadway = max
		rs.MeanHeadway = mean
	}

	times, counts := ActiveTrips(intervals)
	rs.PeakStartTime, rs.PeakEndTime, rs.PeakNumTrips = PeakWindow(times, counts)

	rs.ServiceSpeed = model.Undefined()
	if serviceDuration != 0 && !math.IsNaN(serviceDuration) {
		rs.ServiceSpeed = serviceDistance / serviceDuration / metersPerKilometer
	}
	rs.MeanTripDistance = serviceDistance / float64(rs.NumTrips)
	rs.MeanTripDuration = serviceDuration / float64(rs.NumTrips)

	return rs
}
