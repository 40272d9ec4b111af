package marketdata

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// Timespan is a bar interval written the way traders write it, e.g. "15m" or "1d".
type Timespan string

const (
	TimespanOneMinute      Timespan = "1m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanFourHours      Timespan = "4h"
	TimespanOneDay         Timespan = "1d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

type timespanUnit struct {
	multiplier int
	unit       models.Timespan
}

var timespanUnits = map[Timespan]timespanUnit{
	TimespanOneMinute:      {multiplier: 1, unit: models.Minute},
	TimespanFiveMinutes:    {multiplier: 5, unit: models.Minute},
	TimespanFifteenMinutes: {multiplier: 15, unit: models.Minute},
	TimespanThirtyMinutes:  {multiplier: 30, unit: models.Minute},
	TimespanOneHour:        {multiplier: 1, unit: models.Hour},
	TimespanFourHours:      {multiplier: 4, unit: models.Hour},
	TimespanOneDay:         {multiplier: 1, unit: models.Day},
	TimespanOneWeek:        {multiplier: 1, unit: models.Week},
	TimespanOneMonth:       {multiplier: 1, unit: models.Month},
}

// ParseTimespan validates s as a supported interval.
func ParseTimespan(s string) (Timespan, error) {
	t := Timespan(s)
	if _, ok := timespanUnits[t]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported interval %q", s)
	}

	return t, nil
}

// Multiplier returns the number of units per bar. Unknown timespans count as 1.
func (t Timespan) Multiplier() int {
	if u, ok := timespanUnits[t]; ok {
		return u.multiplier
	}

	return 1
}

// Timespan returns the polygon unit of t. Unknown timespans fall back to a day.
func (t Timespan) Timespan() models.Timespan {
	if u, ok := timespanUnits[t]; ok {
		return u.unit
	}

	return models.Day
}
