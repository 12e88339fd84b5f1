package parse

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/opentransit/gtfsstats/model"
)

type StopTimeCSV struct {
	TripID            string `csv:"trip_id"`
	StopID            string `csv:"stop_id"`
	StopSequence      uint32 `csv:"stop_sequence"`
	DepartureTime     string `csv:"departure_time"`
	ShapeDistTraveled string `csv:"shape_dist_traveled"`
	// ArrivalTime string `csv:"arrival_time"`
	// Headsign    string `csv:"stop_headsign"`
}

func ParseStopTimes(data io.Reader) ([]model.StopTime, error) {
	stopTimes := []model.StopTime{}
	stopSeq := map[string][]int{}

	i := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(st *StopTimeCSV) error {
		i += 1
		if st.TripID == "" {
			return fmt.Errorf("missing trip_id (row %d)", i+1)
		}
		if st.StopID == "" {
			return fmt.Errorf("missing stop_id (row %d)", i+1)
		}

		// Blank departure_time is legal; the value stays undefined.
		departure := model.Undefined()
		if strings.TrimSpace(st.DepartureTime) != "" {
			var err error
			departure, err = model.ParseTimeOfDay(st.DepartureTime)
			if err != nil {
				return errors.Wrapf(err, "parsing departure_time (row %d)", i+1)
			}
		}

		dist := model.Undefined()
		if strings.TrimSpace(st.ShapeDistTraveled) != "" {
			var err error
			dist, err = strconv.ParseFloat(strings.TrimSpace(st.ShapeDistTraveled), 64)
			if err != nil {
				return errors.Wrapf(err, "parsing shape_dist_traveled (row %d)", i+1)
			}
		}

		stopSeq[st.TripID] = append(stopSeq[st.TripID], int(st.StopSequence))

		stopTimes = append(stopTimes, model.StopTime{
			TripID:            st.TripID,
			StopID:            st.StopID,
			StopSequence:      st.StopSequence,
			Departure:         departure,
			ShapeDistTraveled: dist,
		})

		return nil
	})

	if err != nil {
		return nil, errors.Wrap(err, "unmarshaling stop_times csv")
	}

	// Verify that stop_sequence is unique for each trip
	for tripID, seq := range stopSeq {
		seqSeen := map[int]bool{}
		for _, s := range seq {
			if seqSeen[s] {
				return nil, fmt.Errorf("duplicate stop_sequence %d for trip_id '%s'", s, tripID)
			}
			seqSeen[s] = true
		}
	}

	sort.SliceStable(stopTimes, func(i, j int) bool {
		cmp := strings.Compare(stopTimes[i].TripID, stopTimes[j].TripID)
		if cmp < 0 {
			return true
		}
		if cmp == 0 {
			return stopTimes[i].StopSequence < stopTimes[j].StopSequence
		}
		return false
	})

	return stopTimes, nil
}
