// Package writer stores bars fetched by a market data provider.
package writer

import (
	"github.com/rxtech-lab/findash/internal/types"
)

// MarketDataWriter is the sink a provider streams bars into during a download.
// Calls happen in the order Initialize, Write..., Finalize, Close.
type MarketDataWriter interface {
	Initialize() error
	Write(bar types.Bar) error
	// Finalize flushes the stored bars and returns the file they were written to.
	Finalize() (outputPath string, err error)
	Close() error
}
