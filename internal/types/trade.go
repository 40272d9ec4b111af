package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Trade is one entry/exit pair produced by the crossover strategy.
// An open trade at the end of the series has no exit fields.
type Trade struct {
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
	// ExitDate is None while the trade is open
	ExitDate optional.Option[time.Time] `json:"exit_date"`
	// ExitPrice is None while the trade is open
	ExitPrice optional.Option[float64] `json:"exit_price"`
	// ReturnPct is (exit/entry - 1) * 100, None while the trade is open
	ReturnPct optional.Option[float64] `json:"return_pct"`
}

// NewOpenTrade creates a trade that has not been exited.
func NewOpenTrade(entryDate time.Time, entryPrice float64) Trade {
	return Trade{
		EntryDate:  entryDate,
		EntryPrice: entryPrice,
		ExitDate:   optional.None[time.Time](),
		ExitPrice:  optional.None[float64](),
		ReturnPct:  optional.None[float64](),
	}
}

// NewClosedTrade creates a completed trade and computes its return.
func NewClosedTrade(entryDate time.Time, entryPrice float64, exitDate time.Time, exitPrice float64) Trade {
	return Trade{
		EntryDate:  entryDate,
		EntryPrice: entryPrice,
		ExitDate:   optional.Some(exitDate),
		ExitPrice:  optional.Some(exitPrice),
		ReturnPct:  optional.Some((exitPrice/entryPrice - 1) * 100),
	}
}

// IsOpen reports whether the trade has no exit yet.
func (t Trade) IsOpen() bool {
	return t.ExitDate.IsNone()
}

// IsWinner reports whether the trade is closed with a positive return.
func (t Trade) IsWinner() bool {
	return t.ReturnPct.TakeOr(0) > 0
}
