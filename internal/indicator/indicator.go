package indicator

import (
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// Indicator computes one family of indicator columns over a close-price series.
// Each indicator writes only its own fields of the IndicatorSet, so indicators of
// one request can run concurrently against the same set.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator windows. The expected parameters depend on the indicator.
	Config(params ...any) error
	// MinLength returns the shortest series for which at least one value is defined
	MinLength() int
	// Compute fills the indicator's columns of set. Each column has len(closes) entries.
	Compute(closes []float64, set *types.IndicatorSet) error
}

// intParam converts a numeric config parameter to a positive int.
func intParam(name string, value any) (int, error) {
	var v int

	switch n := value.(type) {
	case int:
		v = n
	case float64:
		v = int(n)
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "invalid type for %s parameter, expected int or float", name)
	}

	if v <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a positive integer, got %d", name, v)
	}

	return v, nil
}

func floatParam(name string, value any) (float64, error) {
	var v float64

	switch n := value.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "invalid type for %s parameter, expected float or int", name)
	}

	if v <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be positive, got %v", name, v)
	}

	return v, nil
}

// windowMean returns the arithmetic mean of values[end-window+1 : end+1].
// Deviations are summed around the last value so a constant window yields
// that value exactly.
func windowMean(values []float64, end, window int) float64 {
	anchor := values[end]
	offset := 0.0
	for _, v := range values[end-window+1 : end+1] {
		offset += v - anchor
	}

	return anchor + offset/float64(window)
}
