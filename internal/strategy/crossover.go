// Package strategy turns indicator columns into positions and trade signals.
package strategy

import (
	"fmt"

	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// Decision is the output of a strategy over a whole price series.
type Decision struct {
	// Positions holds the position after the close at each index.
	Positions []types.Position
	// Signals are the position changes in date order.
	Signals []types.Signal
}

// SignalGenerator derives positions from a price series and its moving averages.
type SignalGenerator interface {
	Name() string
	Generate(series types.PriceSeries, short, long types.Series) (Decision, error)
}

// Crossover goes LONG while the short moving average is strictly above the long one.
// Indices where either average is undefined are FLAT, and so is equality.
type Crossover struct {
	name string
}

func NewCrossover() *Crossover {
	return &Crossover{
		name: "sma_crossover",
	}
}

func (c *Crossover) Name() string {
	return c.name
}

// Positions applies the crossover rule at each index using only values available at that index.
func Positions(short, long types.Series) []types.Position {
	positions := make([]types.Position, len(short))

	for i := range positions {
		if short.Defined(i) && long.Defined(i) && short.Value(i) > long.Value(i) {
			positions[i] = types.PositionLong
		}
	}

	return positions
}

// Generate computes the position series and emits a buy signal on every FLAT to LONG
// transition and a sell signal on every LONG to FLAT transition.
func (c *Crossover) Generate(series types.PriceSeries, short, long types.Series) (Decision, error) {
	if len(short) != series.Len() || len(long) != series.Len() {
		return Decision{}, errors.Newf(errors.ErrCodeLengthMismatch,
			"moving averages must match the price series length %d, got %d and %d", series.Len(), len(short), len(long))
	}

	positions := Positions(short, long)
	signals := make([]types.Signal, 0)
	previous := types.PositionFlat

	for i, position := range positions {
		if position == previous {
			continue
		}

		point := series.At(i)
		signal := types.Signal{
			Time:   point.Date,
			Index:  i,
			Price:  point.Close,
			Symbol: series.Symbol(),
		}

		if position == types.PositionLong {
			signal.Type = types.SignalTypeBuyLong
			signal.Reason = fmt.Sprintf("short SMA crossed above long SMA (%.4f > %.4f)", short.Value(i), long.Value(i))
		} else {
			signal.Type = types.SignalTypeSellLong
			signal.Reason = crossBelowReason(short, long, i)
		}

		signals = append(signals, signal)
		previous = position
	}

	return Decision{Positions: positions, Signals: signals}, nil
}

func crossBelowReason(short, long types.Series, i int) string {
	if !short.Defined(i) || !long.Defined(i) {
		return "moving averages undefined"
	}

	if short.Value(i) == long.Value(i) {
		return fmt.Sprintf("short SMA met long SMA (%.4f)", short.Value(i))
	}

	return fmt.Sprintf("short SMA crossed below long SMA (%.4f < %.4f)", short.Value(i), long.Value(i))
}
