package types

import (
	"encoding/json"
	"math"
	"time"

	"github.com/rxtech-lab/findash/pkg/errors"
)

// PricePoint is the close of a single trading day.
type PricePoint struct {
	// Date is the calendar date of the bar, normalized to midnight UTC.
	Date time.Time `json:"date" yaml:"date"`
	// Close is the closing price. Always positive.
	Close float64 `json:"close" yaml:"close"`
	// Volume is the traded volume, 0 when the source does not report it.
	Volume float64 `json:"volume" yaml:"volume"`
}

// NewPricePoint creates a PricePoint with its date truncated to the calendar day.
func NewPricePoint(date time.Time, closePrice float64, volume float64) PricePoint {
	return PricePoint{
		Date:   CalendarDate(date),
		Close:  closePrice,
		Volume: volume,
	}
}

// CalendarDate drops the clock part of t and returns the date at midnight UTC.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PriceSeries is a validated, strictly date-ordered sequence of closes.
// It is the time axis every derived series is aligned to.
// The zero value is an empty series.
type PriceSeries struct {
	symbol string
	points []PricePoint
}

// NewPriceSeries validates points and returns an immutable PriceSeries.
// The input slice is copied.
func NewPriceSeries(symbol string, points []PricePoint) (PriceSeries, error) {
	if len(points) == 0 {
		return PriceSeries{}, errors.Newf(errors.ErrCodeEmptySeries, "price series for %q has no data points", symbol)
	}

	copied := make([]PricePoint, len(points))

	for i, p := range points {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return PriceSeries{}, errors.Newf(errors.ErrCodeInvalidPrice, "close at index %d must be a positive number, got %v", i, p.Close)
		}

		p.Date = CalendarDate(p.Date)
		if i > 0 && !p.Date.After(copied[i-1].Date) {
			return PriceSeries{}, errors.Newf(errors.ErrCodeUnorderedSeries,
				"dates must be strictly increasing: %s at index %d follows %s",
				p.Date.Format(time.DateOnly), i, copied[i-1].Date.Format(time.DateOnly))
		}

		copied[i] = p
	}

	return PriceSeries{symbol: symbol, points: copied}, nil
}

// Symbol returns the ticker the series belongs to.
func (s PriceSeries) Symbol() string {
	return s.symbol
}

// Len returns the number of data points.
func (s PriceSeries) Len() int {
	return len(s.points)
}

// At returns the data point at index i.
func (s PriceSeries) At(i int) PricePoint {
	return s.points[i]
}

// First returns the earliest data point. The series must not be empty.
func (s PriceSeries) First() PricePoint {
	return s.points[0]
}

// Last returns the latest data point. The series must not be empty.
func (s PriceSeries) Last() PricePoint {
	return s.points[len(s.points)-1]
}

// Points returns a copy of the underlying data points.
func (s PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)

	return out
}

// Closes returns the closing prices in date order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.points))
	for i, p := range s.points {
		closes[i] = p.Close
	}

	return closes
}

// Dates returns the dates in order.
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.points))
	for i, p := range s.points {
		dates[i] = p.Date
	}

	return dates
}

type priceSeriesJSON struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// MarshalJSON implements json.Marshaler.
func (s PriceSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(priceSeriesJSON{Symbol: s.symbol, Points: s.points})
}

// UnmarshalJSON implements json.Unmarshaler. The decoded points are validated
// the same way NewPriceSeries validates them.
func (s *PriceSeries) UnmarshalJSON(data []byte) error {
	var raw priceSeriesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	series, err := NewPriceSeries(raw.Symbol, raw.Points)
	if err != nil {
		return err
	}

	*s = series

	return nil
}
