package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/opentransit/gtfsstats/model"
)

type StopCSV struct {
	ID   string `csv:"stop_id"`
	Code string `csv:"stop_code"`
	Name string `csv:"stop_name"`
	Lat  string `csv:"stop_lat"`
	Lon  string `csv:"stop_lon"`
	// Desc          string `csv:"stop_desc"`
	// LocationType  int8   `csv:"location_type"`
	// ParentStation string `csv:"parent_station"`
}

func ParseStops(data io.Reader) ([]model.Stop, error) {
	stopCsv := []*StopCSV{}
	if err := gocsv.Unmarshal(data, &stopCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling stops csv: %w", err)
	}

	seen := map[string]bool{}
	stops := make([]model.Stop, 0, len(stopCsv))
	for _, st := range stopCsv {
		if st.ID == "" {
			return nil, fmt.Errorf("empty stop_id")
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("repeated stop_id '%s'", st.ID)
		}
		seen[st.ID] = true

		lat, err := parseCoordinate(st.Lat)
		if err != nil {
			return nil, fmt.Errorf("stop_id '%s' has invalid stop_lat: %w", st.ID, err)
		}
		lon, err := parseCoordinate(st.Lon)
		if err != nil {
			return nil, fmt.Errorf("stop_id '%s' has invalid stop_lon: %w", st.ID, err)
		}

		stops = append(stops, model.Stop{
			ID:   st.ID,
			Code: st.Code,
			Name: st.Name,
			Lat:  lat,
			Lon:  lon,
		})
	}

	return stops, nil
}

// Some feeds leave stop coordinates blank; the position stays
// undefined rather than collapsing onto (0, 0).
func parseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Undefined(), nil
	}
	return strconv.ParseFloat(s, 64)
}
