package indicator

import (
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// RSI returns the Relative Strength Index of values using Wilder smoothing.
// The averages are seeded with the simple mean of the first window changes, so the
// first window entries are undefined.
func RSI(values []float64, window int) types.Series {
	out := types.NewSeries(len(values))
	if window <= 0 || len(values) <= window {
		return out
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= window; i++ {
		gain, loss := priceChange(values[i-1], values[i])
		avgGain += gain
		avgLoss += loss
	}

	period := float64(window)
	avgGain /= period
	avgLoss /= period
	out.Set(window, rsiValue(avgGain, avgLoss))

	for i := window + 1; i < len(values); i++ {
		gain, loss := priceChange(values[i-1], values[i])
		avgGain = (avgGain*(period-1) + gain) / period
		avgLoss = (avgLoss*(period-1) + loss) / period
		out.Set(i, rsiValue(avgGain, avgLoss))
	}

	return out
}

func priceChange(prev, current float64) (gain, loss float64) {
	change := current - prev
	if change > 0 {
		return change, 0
	}

	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}

// RSIIndicator computes the RSI column.
type RSIIndicator struct {
	period int
}

// NewRSI creates a new RSI indicator with the default 14 period window.
func NewRSI() Indicator {
	return &RSIIndicator{
		period: 14,
	}
}

func (r *RSIIndicator) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config expects 1 parameter: period (int).
func (r *RSIIndicator) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := intParam("rsi_window", params[0])
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// MinLength is one more than the period since RSI works on price changes.
func (r *RSIIndicator) MinLength() int {
	return r.period + 1
}

func (r *RSIIndicator) Compute(closes []float64, set *types.IndicatorSet) error {
	set.RSI = RSI(closes, r.period)

	return nil
}
