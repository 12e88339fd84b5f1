// Package feed windows a multi-date schedule snapshot down to the
// service valid on a single calendar date.
package feed

import (
	"time"

	"github.com/opentransit/gtfsstats/model"
)

// ActiveServices returns the set of service IDs running on the given
// date, honoring calendar weekday/date-range rules and calendar_dates
// add/remove exceptions.
func ActiveServices(snap *model.Snapshot, date time.Time) map[string]bool {
	day := date.Format("20060102")

	services := map[string]bool{}

	for _, calendar := range snap.Calendars {
		if calendar.Weekday&(1<<date.Weekday()) == 0 {
			continue
		}
		if calendar.StartDate > day {
			continue
		}
		if calendar.EndDate < day {
			continue
		}
		services[calendar.ServiceID] = true
	}

	for _, cd := range snap.CalendarDates {
		if cd.Date != day {
			continue
		}
		if cd.ExceptionType == 1 {
			services[cd.ServiceID] = true
		} else if cd.ExceptionType == 2 {
			delete(services, cd.ServiceID)
		}
	}

	return services
}

// ForDate returns the daily view of a snapshot: trips whose service is
// active on date, and stop times of those trips. Reference tables
// (routes, agencies, stops) are shared, not copied.
func ForDate(snap *model.Snapshot, date time.Time) *model.Snapshot {
	services := ActiveServices(snap, date)

	daily := &model.Snapshot{
		Agencies: snap.Agencies,
		Routes:   snap.Routes,
		Stops:    snap.Stops,
	}

	activeTrips := map[string]bool{}
	for _, trip := range snap.Trips {
		if services[trip.ServiceID] {
			daily.Trips = append(daily.Trips, trip)
			activeTrips[trip.ID] = true
		}
	}

	for _, st := range snap.StopTimes {
		if activeTrips[st.TripID] {
			daily.StopTimes = append(daily.StopTimes, st)
		}
	}

	return daily
}
