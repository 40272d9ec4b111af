package tradelog

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/types"
)

// DefaultShares is the lot size used to express trade events in currency.
const DefaultShares = 100

// Event is one buy or sell execution of a trade, the row format of the exported log.
type Event struct {
	ID     int                      `json:"id"`
	Date   time.Time                `json:"date"`
	Action string                   `json:"action"`
	Price  float64                  `json:"price"`
	Shares int                      `json:"shares"`
	Value  float64                  `json:"value"`
	PnL    optional.Option[float64] `json:"pnl"`
}

// Events flattens trades into buy and sell rows in date order. Sell rows carry the
// profit of the lot against its entry price.
func Events(trades []types.Trade, shares int) []Event {
	events := make([]Event, 0, len(trades)*2)

	for _, t := range trades {
		events = append(events, Event{
			ID:     len(events) + 1,
			Date:   t.EntryDate,
			Action: "Buy",
			Price:  t.EntryPrice,
			Shares: shares,
			Value:  t.EntryPrice * float64(shares),
			PnL:    optional.None[float64](),
		})

		if t.IsOpen() {
			continue
		}

		exitPrice := t.ExitPrice.Unwrap()
		events = append(events, Event{
			ID:     len(events) + 1,
			Date:   t.ExitDate.Unwrap(),
			Action: "Sell",
			Price:  exitPrice,
			Shares: shares,
			Value:  exitPrice * float64(shares),
			PnL:    optional.Some((exitPrice - t.EntryPrice) * float64(shares)),
		})
	}

	return events
}

// Filter keeps the events matching action. IDs are preserved.
func Filter(events []Event, action Action) []Event {
	if action == ActionAll {
		return events
	}

	filtered := make([]Event, 0, len(events))

	for _, e := range events {
		if (action == ActionBuy && e.Action == "Buy") || (action == ActionSell && e.Action == "Sell") {
			filtered = append(filtered, e)
		}
	}

	return filtered
}

// WriteCSV writes events with a Date,Action,Price,Shares,Value,PnL header.
// Prices and values are written with two decimals, an open PnL is left empty.
func WriteCSV(w io.Writer, events []Event) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Date", "Action", "Price", "Shares", "Value", "PnL"}); err != nil {
		return err
	}

	for _, e := range events {
		pnl := ""
		if e.PnL.IsSome() {
			pnl = strconv.FormatFloat(e.PnL.Unwrap(), 'f', 2, 64)
		}

		record := []string{
			e.Date.Format(time.DateOnly),
			e.Action,
			strconv.FormatFloat(e.Price, 'f', 2, 64),
			strconv.Itoa(e.Shares),
			strconv.FormatFloat(e.Value, 'f', 2, 64),
			pnl,
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
