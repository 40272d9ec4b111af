// Package tradelog converts a position series into entry/exit trade records.
package tradelog

import (
	"strings"

	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// Build scans positions in date order. A FLAT to LONG change opens a trade at that
// day's close and the next LONG to FLAT change closes it. A trade still open when
// the series ends is kept with its exit fields unset.
func Build(series types.PriceSeries, positions []types.Position) ([]types.Trade, error) {
	if len(positions) != series.Len() {
		return nil, errors.Newf(errors.ErrCodeLengthMismatch,
			"position series length %d does not match price series length %d", len(positions), series.Len())
	}

	trades := make([]types.Trade, 0)
	open := -1
	previous := types.PositionFlat

	for i, position := range positions {
		point := series.At(i)

		switch {
		case previous == types.PositionFlat && position == types.PositionLong:
			trades = append(trades, types.NewOpenTrade(point.Date, point.Close))
			open = len(trades) - 1
		case previous == types.PositionLong && position == types.PositionFlat:
			entry := trades[open]
			trades[open] = types.NewClosedTrade(entry.EntryDate, entry.EntryPrice, point.Date, point.Close)
			open = -1
		}

		previous = position
	}

	return trades, nil
}

// Action selects which trade events an export includes.
type Action string

const (
	ActionAll  Action = "all"
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// ParseAction accepts all, buy or sell in any letter case.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case "", ActionAll:
		return ActionAll, nil
	case ActionBuy:
		return ActionBuy, nil
	case ActionSell:
		return ActionSell, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unknown trade action %q, expected all, buy or sell", s)
	}
}
