package main

import "github.com/rxtech-lab/findash/internal/types"

// BacktestDoneMsg carries the result of a finished backtest run.
type BacktestDoneMsg struct {
	Result types.BacktestResult
}

// BacktestErrorMsg indicates the fetch or the backtest failed.
type BacktestErrorMsg struct {
	Err error
}
