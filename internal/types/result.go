package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// PriceViewPoint is one row of the price and moving-average view.
type PriceViewPoint struct {
	Date     time.Time                `json:"date"`
	Close    float64                  `json:"close"`
	Volume   float64                  `json:"volume"`
	SMAShort optional.Option[float64] `json:"sma_short"`
	SMALong  optional.Option[float64] `json:"sma_long"`
	Position Position                 `json:"position"`
}

// ValuePoint is a single dated indicator value.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type MACDPoint struct {
	Date      time.Time `json:"date"`
	MACD      float64   `json:"macd"`
	Signal    float64   `json:"signal"`
	Histogram float64   `json:"histogram"`
}

type BollingerPoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Upper  float64   `json:"upper"`
	Middle float64   `json:"middle"`
	Lower  float64   `json:"lower"`
}

// EquityPoint holds the cumulative strategy and buy-and-hold returns in percent at one date.
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Strategy float64   `json:"strategy"`
	BuyHold  float64   `json:"buy_hold"`
}

// BacktestResult is everything one pipeline run produces. Every series is
// index-aligned to Prices.
type BacktestResult struct {
	Prices     PriceSeries
	Params     StrategyParams
	Indicators IndicatorSet
	Positions  []Position
	Signals    []Signal
	Trades     []Trade
	Equity     []EquityPoint
	Report     PerformanceReport
}

// PriceView returns one row per date with the moving averages and the position held.
func (r BacktestResult) PriceView() []PriceViewPoint {
	view := make([]PriceViewPoint, r.Prices.Len())

	for i := range view {
		p := r.Prices.At(i)
		view[i] = PriceViewPoint{
			Date:     p.Date,
			Close:    p.Close,
			Volume:   p.Volume,
			SMAShort: r.Indicators.SMAShort[i],
			SMALong:  r.Indicators.SMALong[i],
			Position: r.Positions[i],
		}
	}

	return view
}

// RSIView returns the defined RSI values. Warm-up rows are dropped.
func (r BacktestResult) RSIView() []ValuePoint {
	view := make([]ValuePoint, 0, r.Indicators.RSI.DefinedCount())

	for i := 0; i < r.Prices.Len(); i++ {
		if !r.Indicators.RSI.Defined(i) {
			continue
		}

		view = append(view, ValuePoint{Date: r.Prices.At(i).Date, Value: r.Indicators.RSI.Value(i)})
	}

	return view
}

// MACDView returns rows where the MACD line, signal and histogram are all defined.
func (r BacktestResult) MACDView() []MACDPoint {
	ind := r.Indicators
	view := make([]MACDPoint, 0, ind.MACDHistogram.DefinedCount())

	for i := 0; i < r.Prices.Len(); i++ {
		if !ind.MACDHistogram.Defined(i) {
			continue
		}

		view = append(view, MACDPoint{
			Date:      r.Prices.At(i).Date,
			MACD:      ind.MACD.Value(i),
			Signal:    ind.MACDSignal.Value(i),
			Histogram: ind.MACDHistogram.Value(i),
		})
	}

	return view
}

// BollingerView returns rows where the bands are defined.
func (r BacktestResult) BollingerView() []BollingerPoint {
	ind := r.Indicators
	view := make([]BollingerPoint, 0, ind.BollingerMiddle.DefinedCount())

	for i := 0; i < r.Prices.Len(); i++ {
		if !ind.BollingerMiddle.Defined(i) {
			continue
		}

		p := r.Prices.At(i)
		view = append(view, BollingerPoint{
			Date:   p.Date,
			Close:  p.Close,
			Upper:  ind.BollingerUpper.Value(i),
			Middle: ind.BollingerMiddle.Value(i),
			Lower:  ind.BollingerLower.Value(i),
		})
	}

	return view
}

// OpenTrade returns the trade still open at the end of the series, if any.
func (r BacktestResult) OpenTrade() optional.Option[Trade] {
	if len(r.Trades) == 0 {
		return optional.None[Trade]()
	}

	last := r.Trades[len(r.Trades)-1]
	if !last.IsOpen() {
		return optional.None[Trade]()
	}

	return optional.Some(last)
}
