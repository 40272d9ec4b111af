package indicator

import (
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// IndicatorRegistry is the ordered set of indicators computed for one request.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	// ListIndicators returns the registered names in registration order.
	ListIndicators() []types.IndicatorType
	// Indicators returns the registered indicators in registration order.
	Indicators() []Indicator
	// CheckHistory fails for the first registered indicator that needs more than length closes.
	CheckHistory(length int) error
}

// OrderedRegistry keeps indicators in registration order. It is built once per
// request before computation starts and is not safe for concurrent registration.
type OrderedRegistry struct {
	indicators []Indicator
	index      map[types.IndicatorType]int
}

func NewIndicatorRegistry() IndicatorRegistry {
	return &OrderedRegistry{index: make(map[types.IndicatorType]int)}
}

func (r *OrderedRegistry) RegisterIndicator(indicator Indicator) error {
	name := indicator.Name()
	if _, exists := r.index[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s is already registered", name)
	}

	r.index[name] = len(r.indicators)
	r.indicators = append(r.indicators, indicator)

	return nil
}

func (r *OrderedRegistry) GetIndicator(name types.IndicatorType) (Indicator, error) {
	i, exists := r.index[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	return r.indicators[i], nil
}

func (r *OrderedRegistry) ListIndicators() []types.IndicatorType {
	names := make([]types.IndicatorType, len(r.indicators))
	for i, ind := range r.indicators {
		names[i] = ind.Name()
	}

	return names
}

func (r *OrderedRegistry) Indicators() []Indicator {
	return append([]Indicator(nil), r.indicators...)
}

func (r *OrderedRegistry) CheckHistory(length int) error {
	for _, ind := range r.indicators {
		if length < ind.MinLength() {
			return errors.NewInsufficientDataError(string(ind.Name()), ind.MinLength(), length)
		}
	}

	return nil
}
