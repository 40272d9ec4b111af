package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/findash/internal/types"
)

// Stage names one step of the backtest pipeline.
type Stage string

const (
	StageIndicators  Stage = "indicators"
	StageSignals     Stage = "signals"
	StageTradeLog    Stage = "trade_log"
	StagePerformance Stage = "performance"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called before any computation begins.
type OnBacktestStartCallback func(symbol string, totalDataPoints int) error

// OnBacktestEndCallback is called when the run completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnStageStartCallback is called when a pipeline stage begins.
type OnStageStartCallback func(stage Stage) error

// OnStageEndCallback is called when a pipeline stage finishes successfully.
type OnStageEndCallback func(stage Stage, elapsed time.Duration)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
// OnStageStart and OnStageEnd may be called concurrently for the trade log and
// performance stages.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnStageStart    *OnStageStartCallback
	OnStageEnd      *OnStageEndCallback
}

// Engine runs the moving-average crossover backtest over one price series.
type Engine interface {
	// Run computes indicators, positions, the trade log and the performance report.
	// It fails on the first error from any stage and returns no partial result.
	// The context can be used to cancel the run.
	Run(ctx context.Context, series types.PriceSeries, params types.StrategyParams, callbacks LifecycleCallbacks) (types.BacktestResult, error)
	// GetConfigSchema returns the JSON schema of the strategy parameters
	GetConfigSchema() (string, error)
}
