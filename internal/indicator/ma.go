package indicator

import (
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// SMA returns the simple moving average of values over window.
// The first window-1 entries are undefined.
func SMA(values []float64, window int) types.Series {
	out := types.NewSeries(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		out.Set(i, windowMean(values, i, window))
	}

	return out
}

// MA computes the short and long simple moving averages the crossover strategy trades on.
type MA struct {
	shortPeriod int
	longPeriod  int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		shortPeriod: 20,
		longPeriod:  50,
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects 2 parameters: short period (int) and long period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 2 parameters: short period (int), long period (int)")
	}

	short, err := intParam("sma_short_window", params[0])
	if err != nil {
		return err
	}

	long, err := intParam("sma_long_window", params[1])
	if err != nil {
		return err
	}

	if short >= long {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"sma_short_window must be less than sma_long_window, got %d and %d", short, long)
	}

	m.shortPeriod = short
	m.longPeriod = long

	return nil
}

// MinLength returns the long period.
func (m *MA) MinLength() int {
	return m.longPeriod
}

// Compute fills SMAShort and SMALong.
func (m *MA) Compute(closes []float64, set *types.IndicatorSet) error {
	set.SMAShort = SMA(closes, m.shortPeriod)
	set.SMALong = SMA(closes, m.longPeriod)

	return nil
}
