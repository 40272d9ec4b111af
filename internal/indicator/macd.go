package indicator

import (
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// MACD returns the MACD line, its signal line and the histogram.
// The MACD line is defined from index slow-1, the signal line and histogram
// from index slow+signal-2.
func MACD(values []float64, fast, slow, signal int) (line, signalLine, histogram types.Series) {
	n := len(values)
	line = types.NewSeries(n)
	histogram = types.NewSeries(n)

	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	raw := make([]float64, n)
	start := -1

	for i := 0; i < n; i++ {
		if !fastEMA.Defined(i) || !slowEMA.Defined(i) {
			continue
		}

		if start < 0 {
			start = i
		}

		raw[i] = fastEMA.Value(i) - slowEMA.Value(i)
		line.Set(i, raw[i])
	}

	if start < 0 {
		return line, types.NewSeries(n), histogram
	}

	signalLine = emaFrom(raw, start, signal)
	for i := range signalLine {
		if signalLine.Defined(i) {
			histogram.Set(i, raw[i]-signalLine.Value(i))
		}
	}

	return line, signalLine, histogram
}

// MACDIndicator computes the MACD line, signal line and histogram columns.
type MACDIndicator struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with the standard 12/26/9 windows.
func NewMACD() Indicator {
	return &MACDIndicator{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

func (m *MACDIndicator) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config expects 3 parameters: fast period (int), slow period (int), signal period (int).
func (m *MACDIndicator) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 3 parameters: fast period (int), slow period (int), signal period (int)")
	}

	fast, err := intParam("macd_fast", params[0])
	if err != nil {
		return err
	}

	slow, err := intParam("macd_slow", params[1])
	if err != nil {
		return err
	}

	signal, err := intParam("macd_signal", params[2])
	if err != nil {
		return err
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidParameter, "macd_fast must be less than macd_slow, got %d and %d", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

// MinLength is the length at which the signal line gets its first value.
func (m *MACDIndicator) MinLength() int {
	return m.slowPeriod + m.signalPeriod - 1
}

func (m *MACDIndicator) Compute(closes []float64, set *types.IndicatorSet) error {
	set.MACD, set.MACDSignal, set.MACDHistogram = MACD(closes, m.fastPeriod, m.slowPeriod, m.signalPeriod)

	return nil
}
