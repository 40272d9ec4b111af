package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/types"
)

// FileFormat identifies the layout of a market data file.
type FileFormat string

const (
	FormatParquet FileFormat = "parquet"
	FormatCSV     FileFormat = "csv"
)

// DataSource reads daily price series out of market data files.
// Files carry at least the columns time, symbol, close and volume.
type DataSource interface {
	// Initialize points the data source at a parquet or CSV file. The format is
	// taken from the file extension.
	Initialize(path string) error
	// ReadSeries returns the daily closes of symbol between the optional bounds, both inclusive.
	// Intraday rows are collapsed to the last close of each day.
	ReadSeries(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error)
	// Symbols lists the distinct symbols in the file.
	Symbols(ctx context.Context) ([]string, error)
	// Count returns the number of trading days stored for symbol.
	Count(ctx context.Context, symbol string) (int, error)
	// Close releases the underlying database.
	Close() error
}
