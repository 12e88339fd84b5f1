package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Holds the in-memory snapshot tables and the derived statistics types.

type Agency struct {
	ID   string
	Name string
}

type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Type      int
}

type Stop struct {
	ID   string
	Code string
	Name string

	// Undefined (NaN) when the feed leaves the coordinate blank.
	Lat float64
	Lon float64
}

type Trip struct {
	ID          string
	RouteID     string
	ServiceID   string
	ShapeID     string
	DirectionID int8
}

type StopTime struct {
	TripID       string
	StopID       string
	StopSequence uint32

	// Seconds past midnight. Undefined (NaN) when the feed leaves
	// departure_time blank. May exceed 24h for next-day trips.
	Departure float64

	// Cumulative distance traveled along the trip, in the feed's
	// distance units. Undefined (NaN) when absent.
	ShapeDistTraveled float64
}

type Calendar struct {
	ServiceID string
	StartDate string // YYYYMMDD
	EndDate   string // YYYYMMDD
	Weekday   int8   // bitmask, 1<<time.Weekday
}

type CalendarDate struct {
	ServiceID     string
	Date          string // YYYYMMDD
	ExceptionType int8   // 1 = added, 2 = removed
}

// A parsed schedule snapshot, possibly spanning many service dates.
type Snapshot struct {
	Agencies      []Agency
	Routes        []Route
	Stops         []Stop
	Trips         []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
}

// One row of the joined trip/route/agency/stop/stop-time/zone dataset,
// one per (trip, stop-sequence position).
type TripRow struct {
	TripID            string
	RouteID           string
	RouteShortName    string
	RouteLongName     string
	RouteType         int
	AgencyID          string
	AgencyName        string
	DirectionID       int8
	ShapeID           string
	StopSequence      uint32
	Departure         float64
	StopID            string
	StopCode          string
	StopName          string
	StopLat           float64
	StopLon           float64
	ZoneName          string // "" when the stop has no zone entry
	ShapeDistTraveled float64
}

// Per-trip daily summary. Computed once per (snapshot, date) and
// persisted; immutable afterwards.
type TripStat struct {
	TripID          string  `csv:"trip_id"`
	RouteID         string  `csv:"route_id"`
	RouteShortName  string  `csv:"route_short_name"`
	RouteLongName   string  `csv:"route_long_name"`
	RouteType       int     `csv:"route_type"`
	AgencyID        string  `csv:"agency_id"`
	AgencyName      string  `csv:"agency_name"`
	DirectionID     int8    `csv:"direction_id"`
	ShapeID         string  `csv:"shape_id"`
	NumStops        int     `csv:"num_stops"`
	StartTime       float64 `csv:"start_time"`
	EndTime         float64 `csv:"end_time"`
	StartStopID     string  `csv:"start_stop_id"`
	EndStopID       string  `csv:"end_stop_id"`
	StartStopCode   string  `csv:"start_stop_code"`
	EndStopCode     string  `csv:"end_stop_code"`
	StartStopName   string  `csv:"start_stop_name"`
	EndStopName     string  `csv:"end_stop_name"`
	StartStopLat    float64 `csv:"start_stop_lat"`
	StartStopLon    float64 `csv:"start_stop_lon"`
	EndStopLat      float64 `csv:"end_stop_lat"`
	EndStopLon      float64 `csv:"end_stop_lon"`
	StartZone       string  `csv:"start_zone"`
	EndZone         string  `csv:"end_zone"`
	NumZones        int     `csv:"num_zones"`
	NumZonesMissing int     `csv:"num_zones_missing"`
	IsLoop          bool    `csv:"is_loop"`
	Distance        float64 `csv:"distance"`
	Duration        float64 `csv:"duration"` // hours
	Speed           float64 `csv:"speed"`    // km/h, assuming meters
	Date            string  `csv:"date"`
}

// Per-route daily summary. Directions are merged; identity and
// location fields are copied from one member trip, not aggregated.
type RouteStat struct {
	RouteID          string  `csv:"route_id"`
	RouteShortName   string  `csv:"route_short_name"`
	RouteLongName    string  `csv:"route_long_name"`
	RouteType        int     `csv:"route_type"`
	AgencyID         string  `csv:"agency_id"`
	AgencyName       string  `csv:"agency_name"`
	NumTrips         int     `csv:"num_trips"`
	NumTripStarts    int     `csv:"num_trip_starts"`
	NumTripEnds      int     `csv:"num_trip_ends"`
	IsLoop           bool    `csv:"is_loop"`
	IsBidirectional  bool    `csv:"is_bidirectional"`
	StartTime        float64 `csv:"start_time"`
	EndTime          float64 `csv:"end_time"`
	MinHeadway       float64 `csv:"min_headway"`  // minutes
	MaxHeadway       float64 `csv:"max_headway"`  // minutes
	MeanHeadway      float64 `csv:"mean_headway"` // minutes
	PeakNumTrips     int     `csv:"peak_num_trips"`
	PeakStartTime    float64 `csv:"peak_start_time"`
	PeakEndTime      float64 `csv:"peak_end_time"`
	ServiceDistance  float64 `csv:"service_distance"`
	ServiceDuration  float64 `csv:"service_duration"` // hours
	ServiceSpeed     float64 `csv:"service_speed"`    // km/h, assuming meters
	MeanTripDistance float64 `csv:"mean_trip_distance"`
	MeanTripDuration float64 `csv:"mean_trip_duration"`
	StartStopID      string  `csv:"start_stop_id"`
	EndStopID        string  `csv:"end_stop_id"`
	StartStopLat     float64 `csv:"start_stop_lat"`
	StartStopLon     float64 `csv:"start_stop_lon"`
	EndStopLat       float64 `csv:"end_stop_lat"`
	EndStopLon       float64 `csv:"end_stop_lon"`
	NumStops         int     `csv:"num_stops"`
	StartZone        string  `csv:"start_zone"`
	EndZone          string  `csv:"end_zone"`
	NumZones         int     `csv:"num_zones"`
	NumZonesMissing  int     `csv:"num_zones_missing"`
	Date             string  `csv:"date"`
}

// Undefined returns the NaN used for stats that cannot be computed.
func Undefined() float64 {
	return math.NaN()
}

// Defined reports whether a stat value carries a real value.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// ParseTimeOfDay parses a GTFS "H:MM:SS" or "HH:MM:SS" string into
// seconds past midnight. Hours beyond 23 are legal (next-day trips).
func ParseTimeOfDay(s string) (float64, error) {
	split := strings.Split(s, ":")
	if len(split) != 3 {
		return 0, fmt.Errorf("found %d parts in '%s'", len(split), s)
	}

	hms := [3]int{}
	for i, str := range split {
		j, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return 0, fmt.Errorf("non-integer in '%s' pos %d", s, i)
		}
		hms[i] = j
	}

	if hms[0] < 0 {
		return 0, fmt.Errorf("invalid hour in '%s'", s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return 0, fmt.Errorf("invalid minute in '%s'", s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return 0, fmt.Errorf("invalid second in '%s'", s)
	}

	return float64(hms[0]*3600 + hms[1]*60 + hms[2]), nil
}
