package types

import "time"

type SignalType string

const (
	// SignalTypeBuyLong marks a FLAT to LONG transition.
	SignalTypeBuyLong SignalType = "buy_long"
	// SignalTypeSellLong marks a LONG to FLAT transition.
	SignalTypeSellLong SignalType = "sell_long"
)

type Signal struct {
	// Time is the date of the close the signal was evaluated on
	Time time.Time `json:"time" yaml:"time"`
	// Index is the position of the signal in the price series
	Index int `json:"index" yaml:"index"`
	// Type is the type of the signal
	Type SignalType `json:"type" yaml:"type"`
	// Price is the close at Time
	Price float64 `json:"price" yaml:"price"`
	// Reason is a human readable description of the crossover
	Reason string `json:"reason" yaml:"reason"`
	// Symbol is the symbol of the signal
	Symbol string `json:"symbol" yaml:"symbol"`
}
