package parse

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/opentransit/gtfsstats/model"
)

type RouteCSV struct {
	ID        string `csv:"route_id"`
	AgencyID  string `csv:"agency_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Type      string `csv:"route_type"`
	// Desc      string `csv:"route_desc"`
	// Color     string `csv:"route_color"`
	// TextColor string `csv:"route_text_color"`
}

func ParseRoutes(data io.Reader) ([]model.Route, error) {
	routeCsv := []*RouteCSV{}
	if err := gocsv.Unmarshal(data, &routeCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling routes: %w", err)
	}

	seen := map[string]bool{}
	routes := make([]model.Route, 0, len(routeCsv))

	for _, r := range routeCsv {
		if r.ID == "" {
			return nil, fmt.Errorf("route has no route_id")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("repeated route_id: '%s'", r.ID)
		}
		seen[r.ID] = true

		// ShortName or LongName is required
		if r.ShortName == "" && r.LongName == "" {
			return nil, fmt.Errorf("route_id '%s' has no short_name or long_name", r.ID)
		}

		routeType := 0
		if r.Type != "" {
			var err error
			routeType, err = strconv.Atoi(r.Type)
			if err != nil {
				return nil, fmt.Errorf("route_id '%s' has invalid route_type: %w", r.ID, err)
			}
		}

		routes = append(routes, model.Route{
			ID:        r.ID,
			AgencyID:  r.AgencyID,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Type:      routeType,
		})
	}

	return routes, nil
}
