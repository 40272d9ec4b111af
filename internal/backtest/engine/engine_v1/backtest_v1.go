package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/findash/internal/backtest/engine"
	"github.com/rxtech-lab/findash/internal/backtest/stats"
	"github.com/rxtech-lab/findash/internal/backtest/tradelog"
	"github.com/rxtech-lab/findash/internal/indicator"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/strategy"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BacktestEngineV1 struct {
	log        *logger.Logger
	indicators *indicator.Engine
	strategy   strategy.SignalGenerator
}

// NewBacktestEngineV1 creates the engine. A nil logger disables logging.
func NewBacktestEngineV1(log *logger.Logger) engine.Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BacktestEngineV1{
		log:        log,
		indicators: indicator.NewEngine(),
		strategy:   strategy.NewCrossover(),
	}
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(
	ctx context.Context,
	series types.PriceSeries,
	params types.StrategyParams,
	callbacks engine.LifecycleCallbacks,
) (result types.BacktestResult, err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	log := b.log.With(
		zap.String("symbol", series.Symbol()),
		zap.Int("data_points", series.Len()),
		zap.String("strategy", b.strategy.Name()),
	)

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(series.Symbol(), series.Len()); err != nil {
			return types.BacktestResult{}, err
		}
	}

	var set types.IndicatorSet

	err = b.stage(ctx, callbacks, engine.StageIndicators, func() error {
		var computeErr error
		set, computeErr = b.indicators.Compute(ctx, series, params)

		return computeErr
	})
	if err != nil {
		log.Warn("Indicator computation failed", zap.Error(err))

		return types.BacktestResult{}, err
	}

	var decision strategy.Decision

	err = b.stage(ctx, callbacks, engine.StageSignals, func() error {
		var generateErr error
		decision, generateErr = b.strategy.Generate(series, set.SMAShort, set.SMALong)

		return generateErr
	})
	if err != nil {
		log.Error("Signal generation failed", zap.Error(err))

		return types.BacktestResult{}, err
	}

	// The trade log and the return metrics only depend on the positions.
	var (
		trades  []types.Trade
		returns stats.ReturnMetrics
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.stage(gctx, callbacks, engine.StageTradeLog, func() error {
			var buildErr error
			trades, buildErr = tradelog.Build(series, decision.Positions)

			return buildErr
		})
	})

	g.Go(func() error {
		return b.stage(gctx, callbacks, engine.StagePerformance, func() error {
			var analyzeErr error
			returns, analyzeErr = stats.AnalyzeReturns(series, decision.Positions)

			return analyzeErr
		})
	})

	if err = g.Wait(); err != nil {
		log.Error("Backtest failed", zap.Error(err))

		return types.BacktestResult{}, err
	}

	report := stats.Merge(returns, stats.AnalyzeTrades(trades, params.CountOpenTrades))

	log.Info("Backtest completed",
		zap.Int("signals", len(decision.Signals)),
		zap.Int("trades", report.TradeCount),
		zap.Float64("strategy_return", report.StrategyTotalReturn),
		zap.Float64("buy_hold_return", report.BuyHoldTotalReturn),
	)

	return types.BacktestResult{
		Prices:     series,
		Params:     params,
		Indicators: set,
		Positions:  decision.Positions,
		Signals:    decision.Signals,
		Trades:     trades,
		Equity:     returns.Equity,
		Report:     report,
	}, nil
}

// stage runs fn between the stage callbacks. A cancelled context aborts before fn runs.
func (b *BacktestEngineV1) stage(ctx context.Context, callbacks engine.LifecycleCallbacks, stage engine.Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if callbacks.OnStageStart != nil {
		if err := (*callbacks.OnStageStart)(stage); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestFailed, err, "stage %s aborted", stage)
		}
	}

	start := time.Now()

	if err := fn(); err != nil {
		return err
	}

	elapsed := time.Since(start)

	b.log.Debug("Stage finished",
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", elapsed),
	)

	if callbacks.OnStageEnd != nil {
		(*callbacks.OnStageEnd)(stage, elapsed)
	}

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	params := types.DefaultStrategyParams()

	return params.GenerateSchemaJSON()
}
