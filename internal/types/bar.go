package types

import (
	"sort"
	"time"
)

// Bar is one OHLCV aggregate as delivered by a market data provider.
type Bar struct {
	Symbol string    `json:"symbol" yaml:"symbol"`
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// BarsToSeries converts provider bars into a daily PriceSeries.
// Bars are sorted by time and collapsed per calendar day: the latest close wins
// and volumes add up.
func BarsToSeries(symbol string, bars []Bar) (PriceSeries, error) {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	points := make([]PricePoint, 0, len(sorted))

	for _, bar := range sorted {
		point := NewPricePoint(bar.Time, bar.Close, bar.Volume)

		last := len(points) - 1
		if last >= 0 && points[last].Date.Equal(point.Date) {
			points[last].Close = point.Close
			points[last].Volume += point.Volume

			continue
		}

		points = append(points, point)
	}

	return NewPriceSeries(symbol, points)
}
