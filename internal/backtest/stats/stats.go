// Package stats computes the performance report of a backtest from its position
// series and trade log.
package stats

import (
	"math"

	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// TradingDaysPerYear annualizes daily Sharpe ratio and volatility.
const TradingDaysPerYear = 252

// minStdDev treats smaller deviations of period returns as zero variance.
const minStdDev = 1e-12

// ReturnMetrics are the metrics derived from positions and prices alone.
type ReturnMetrics struct {
	StrategyTotalReturn float64
	BuyHoldTotalReturn  float64
	SharpeRatio         float64
	MaxDrawdown         float64
	Volatility          float64
	// Equity holds the cumulative strategy and buy-and-hold returns per date.
	Equity []types.EquityPoint
}

// TradeMetrics are the metrics derived from the trade log alone.
type TradeMetrics struct {
	TradeCount        int
	WinRate           float64
	ClosedTradeCount  int
	WinningTradeCount int
}

// StrategyReturns returns the period returns of the strategy for t = 1..n-1.
// The return from close t-1 to close t is earned only when the position held
// after close t-1 is LONG, so a signal never trades on its own close.
func StrategyReturns(series types.PriceSeries, positions []types.Position) []float64 {
	n := series.Len()
	if n < 2 {
		return []float64{}
	}

	returns := make([]float64, n-1)

	for t := 1; t < n; t++ {
		if positions[t-1] != types.PositionLong {
			continue
		}

		returns[t-1] = series.At(t).Close/series.At(t-1).Close - 1
	}

	return returns
}

// AnalyzeReturns computes the return, risk and drawdown metrics.
func AnalyzeReturns(series types.PriceSeries, positions []types.Position) (ReturnMetrics, error) {
	if series.Len() == 0 {
		return ReturnMetrics{}, errors.New(errors.ErrCodeEmptySeries, "price series has no data points")
	}

	if len(positions) != series.Len() {
		return ReturnMetrics{}, errors.Newf(errors.ErrCodeLengthMismatch,
			"position series length %d does not match price series length %d", len(positions), series.Len())
	}

	returns := StrategyReturns(series, positions)
	first := series.First().Close

	equity := make([]types.EquityPoint, series.Len())
	curve := make([]float64, series.Len())
	curve[0] = 1
	equity[0] = types.EquityPoint{Date: series.First().Date}

	for t := 1; t < series.Len(); t++ {
		curve[t] = curve[t-1] * (1 + returns[t-1])
		equity[t] = types.EquityPoint{
			Date:     series.At(t).Date,
			Strategy: (curve[t] - 1) * 100,
			BuyHold:  (series.At(t).Close/first - 1) * 100,
		}
	}

	mean, std := meanStdDev(returns)

	metrics := ReturnMetrics{
		StrategyTotalReturn: (curve[len(curve)-1] - 1) * 100,
		BuyHoldTotalReturn:  (series.Last().Close/first - 1) * 100,
		SharpeRatio:         sharpeRatio(mean, std),
		MaxDrawdown:         maxDrawdown(curve),
		Volatility:          std * math.Sqrt(TradingDaysPerYear) * 100,
		Equity:              equity,
	}

	return metrics, nil
}

// AnalyzeTrades counts trades and computes the win rate over closed trades.
// An open trade is counted in TradeCount only when countOpen is set.
func AnalyzeTrades(trades []types.Trade, countOpen bool) TradeMetrics {
	metrics := TradeMetrics{}

	for _, t := range trades {
		if t.IsOpen() {
			if countOpen {
				metrics.TradeCount++
			}

			continue
		}

		metrics.TradeCount++
		metrics.ClosedTradeCount++

		if t.IsWinner() {
			metrics.WinningTradeCount++
		}
	}

	if metrics.ClosedTradeCount > 0 {
		metrics.WinRate = float64(metrics.WinningTradeCount) / float64(metrics.ClosedTradeCount) * 100
	}

	return metrics
}

// Merge combines both halves into a PerformanceReport.
func Merge(returns ReturnMetrics, trades TradeMetrics) types.PerformanceReport {
	return types.PerformanceReport{
		StrategyTotalReturn: returns.StrategyTotalReturn,
		BuyHoldTotalReturn:  returns.BuyHoldTotalReturn,
		SharpeRatio:         returns.SharpeRatio,
		MaxDrawdown:         returns.MaxDrawdown,
		TradeCount:          trades.TradeCount,
		WinRate:             trades.WinRate,
		Volatility:          returns.Volatility,
		Alpha:               returns.StrategyTotalReturn - returns.BuyHoldTotalReturn,
		ClosedTradeCount:    trades.ClosedTradeCount,
		WinningTradeCount:   trades.WinningTradeCount,
	}
}

// Analyze computes the full report in one call.
func Analyze(series types.PriceSeries, positions []types.Position, trades []types.Trade, countOpen bool) (types.PerformanceReport, error) {
	returns, err := AnalyzeReturns(series, positions)
	if err != nil {
		return types.PerformanceReport{}, err
	}

	return Merge(returns, AnalyzeTrades(trades, countOpen)), nil
}

func meanStdDev(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	for _, v := range values {
		mean += v
	}

	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}

	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}

func sharpeRatio(mean, std float64) float64 {
	if std < minStdDev || math.IsNaN(std) {
		return 0
	}

	return mean / std * math.Sqrt(TradingDaysPerYear)
}

// maxDrawdown returns the deepest fall of curve below its running peak in percent.
func maxDrawdown(curve []float64) float64 {
	if len(curve) < 2 {
		return 0
	}

	worst := 0.0
	peak := curve[0]

	for _, value := range curve {
		if value > peak {
			peak = value
		}

		drawdown := (value/peak - 1) * 100
		if drawdown < worst {
			worst = drawdown
		}
	}

	return worst
}
