// Package zones maps stops to fare zone names using a tariff table.
package zones

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"
)

// Lookup maps stop_id to fare zone name. Stops without an entry have
// no zone; the rollup joins preserve them with a blank zone.
type Lookup map[string]string

type zoneCSV struct {
	StopID   string `csv:"stop_id"`
	ZoneName string `csv:"zone_name"`
}

func Parse(data io.Reader) (Lookup, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	rows := []*zoneCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshaling zones csv: %w", err)
	}

	lookup := Lookup{}
	for _, row := range rows {
		if row.StopID == "" || row.ZoneName == "" {
			continue
		}
		lookup[row.StopID] = row.ZoneName
	}

	return lookup, nil
}

// ParseFile loads a tariff file from disk. A missing path yields an
// empty lookup: every stop is treated as having no zone.
func ParseFile(path string) (Lookup, error) {
	if path == "" {
		return Lookup{}, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Lookup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening tariff file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}
