package parse

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/opentransit/gtfsstats/model"
)

type CalendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

func ParseCalendarDates(data io.Reader) ([]model.CalendarDate, error) {
	calendarDateCsv := []*CalendarDateCSV{}
	if err := gocsv.Unmarshal(data, &calendarDateCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling calendar_dates csv: %w", err)
	}

	knownServiceDate := map[string]bool{}
	dates := make([]model.CalendarDate, 0, len(calendarDateCsv))

	for _, cd := range calendarDateCsv {
		if cd.ExceptionType < 1 || cd.ExceptionType > 2 {
			return nil, fmt.Errorf("illegal exception_type: '%d'", cd.ExceptionType)
		}

		if _, err := time.ParseInLocation("20060102", cd.Date, time.UTC); err != nil {
			return nil, fmt.Errorf("parsing date '%s': %w", cd.Date, err)
		}

		serviceDate := fmt.Sprintf("%s-%s", cd.Date, cd.ServiceID)
		if knownServiceDate[serviceDate] {
			return nil, fmt.Errorf("duplicate service/date: '%s'", serviceDate)
		}
		knownServiceDate[serviceDate] = true

		dates = append(dates, model.CalendarDate{
			ServiceID:     cd.ServiceID,
			Date:          cd.Date,
			ExceptionType: cd.ExceptionType,
		})
	}

	return dates, nil
}
