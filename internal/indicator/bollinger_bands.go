package indicator

import (
	"math"

	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// BollingerBands returns the upper, middle and lower bands. The middle band is the
// SMA over window, the outer bands sit stdMult population standard deviations away.
func BollingerBands(values []float64, window int, stdMult float64) (upper, middle, lower types.Series) {
	n := len(values)
	upper = types.NewSeries(n)
	middle = types.NewSeries(n)
	lower = types.NewSeries(n)

	if window <= 0 {
		return upper, middle, lower
	}

	for i := window - 1; i < n; i++ {
		mean := windowMean(values, i, window)

		variance := 0.0
		for _, v := range values[i-window+1 : i+1] {
			variance += (v - mean) * (v - mean)
		}

		std := math.Sqrt(variance / float64(window))

		middle.Set(i, mean)
		upper.Set(i, mean+stdMult*std)
		lower.Set(i, mean-stdMult*std)
	}

	return upper, middle, lower
}

// BollingerBandsIndicator computes the three band columns.
type BollingerBandsIndicator struct {
	period  int
	stdMult float64
}

// NewBollingerBands creates a new Bollinger Bands indicator with a 20 period window and 2 deviations.
func NewBollingerBands() Indicator {
	return &BollingerBandsIndicator{
		period:  20,
		stdMult: 2.0,
	}
}

func (b *BollingerBandsIndicator) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config expects 2 parameters: period (int) and standard deviation multiplier (float).
func (b *BollingerBandsIndicator) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 2 parameters: period (int), std multiplier (float)")
	}

	period, err := intParam("bollinger_window", params[0])
	if err != nil {
		return err
	}

	stdMult, err := floatParam("bollinger_std_mult", params[1])
	if err != nil {
		return err
	}

	b.period = period
	b.stdMult = stdMult

	return nil
}

func (b *BollingerBandsIndicator) MinLength() int {
	return b.period
}

func (b *BollingerBandsIndicator) Compute(closes []float64, set *types.IndicatorSet) error {
	set.BollingerUpper, set.BollingerMiddle, set.BollingerLower = BollingerBands(closes, b.period, b.stdMult)

	return nil
}
