package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/opentransit/gtfsstats/model"
)

type AgencyCSV struct {
	ID   string `csv:"agency_id"`
	Name string `csv:"agency_name"`
	// URL      string `csv:"agency_url"`
	// Timezone string `csv:"agency_timezone"`
	// Lang     string `csv:"agency_lang"`
	// Phone    string `csv:"agency_phone"`
}

func ParseAgencies(data io.Reader) ([]model.Agency, error) {
	agencyCsv := []*AgencyCSV{}
	if err := gocsv.Unmarshal(data, &agencyCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling agency csv: %w", err)
	}

	seen := map[string]bool{}
	agencies := make([]model.Agency, 0, len(agencyCsv))
	for _, a := range agencyCsv {
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicated agency_id: '%s'", a.ID)
		}
		seen[a.ID] = true

		agencies = append(agencies, model.Agency{
			ID:   a.ID,
			Name: a.Name,
		})
	}

	return agencies, nil
}
