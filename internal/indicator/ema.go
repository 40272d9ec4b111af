package indicator

import "github.com/rxtech-lab/findash/internal/types"

// EMA returns the exponential moving average of values with smoothing factor 2/(period+1).
// The average is seeded at index period-1 with the simple mean of the first period values.
func EMA(values []float64, period int) types.Series {
	return emaFrom(values, 0, period)
}

// emaFrom runs the EMA recurrence over values starting at index start.
// Entries before start are ignored and left undefined.
func emaFrom(values []float64, start, period int) types.Series {
	out := types.NewSeries(len(values))

	seed := start + period - 1
	if period <= 0 || start < 0 || seed >= len(values) {
		return out
	}

	prev := windowMean(values, seed, period)
	out.Set(seed, prev)

	alpha := 2.0 / float64(period+1)
	for i := seed + 1; i < len(values); i++ {
		prev += alpha * (values[i] - prev)
		out.Set(i, prev)
	}

	return out
}
