package indicator

import (
	"context"

	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// NewRegistryForParams returns a registry holding the moving-average pair, RSI,
// MACD and Bollinger Bands configured from params. The registration order is
// the order in which missing history is reported.
func NewRegistryForParams(params types.StrategyParams) (IndicatorRegistry, error) {
	ma := NewMA()
	if err := ma.Config(params.SMAShortWindow, params.SMALongWindow); err != nil {
		return nil, err
	}

	rsi := NewRSI()
	if err := rsi.Config(params.RSIWindow); err != nil {
		return nil, err
	}

	macd := NewMACD()
	if err := macd.Config(params.MACDFast, params.MACDSlow, params.MACDSignal); err != nil {
		return nil, err
	}

	bb := NewBollingerBands()
	if err := bb.Config(params.BollingerWindow, params.BollingerStdMult); err != nil {
		return nil, err
	}

	registry := NewIndicatorRegistry()
	for _, ind := range []Indicator{ma, rsi, macd, bb} {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Engine computes the full IndicatorSet for a price series.
// It holds no state between calls.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compute validates params, checks every indicator has enough history and then
// runs the indicators concurrently.
func (e *Engine) Compute(ctx context.Context, series types.PriceSeries, params types.StrategyParams) (types.IndicatorSet, error) {
	if err := params.Validate(); err != nil {
		return types.IndicatorSet{}, err
	}

	if series.Len() == 0 {
		return types.IndicatorSet{}, errors.New(errors.ErrCodeEmptySeries, "price series has no data points")
	}

	registry, err := NewRegistryForParams(params)
	if err != nil {
		return types.IndicatorSet{}, err
	}

	return e.ComputeWith(ctx, registry, series.Closes())
}

// ComputeWith runs every indicator in registry over closes.
func (e *Engine) ComputeWith(ctx context.Context, registry IndicatorRegistry, closes []float64) (types.IndicatorSet, error) {
	if err := registry.CheckHistory(len(closes)); err != nil {
		return types.IndicatorSet{}, err
	}

	indicators := registry.Indicators()

	var set types.IndicatorSet

	g, gctx := errgroup.WithContext(ctx)

	for _, ind := range indicators {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if err := ind.Compute(closes, &set); err != nil {
				return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute %s", ind.Name())
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.IndicatorSet{}, err
	}

	return set, nil
}
