package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/types"
)

// SeriesSource serves price series out of a local market data file, so the
// dashboard can run without a provider account.
type SeriesSource struct {
	ds DataSource
}

func NewSeriesSource(ds DataSource) *SeriesSource {
	return &SeriesSource{ds: ds}
}

// FetchSeries returns the closes of ticker between start and end, both inclusive.
func (s *SeriesSource) FetchSeries(ctx context.Context, ticker string, start time.Time, end time.Time) (types.PriceSeries, error) {
	return s.ds.ReadSeries(ctx, ticker, optional.Some(start), optional.Some(end))
}

// OpenSeriesSource opens an in-memory DuckDB source over the parquet or CSV file at path.
func OpenSeriesSource(path string, log *logger.Logger) (*SeriesSource, error) {
	ds, err := NewDataSource("", log)
	if err != nil {
		return nil, err
	}

	if err := ds.Initialize(path); err != nil {
		_ = ds.Close()

		return nil, err
	}

	return NewSeriesSource(ds), nil
}

// Close releases the underlying data source.
func (s *SeriesSource) Close() error {
	return s.ds.Close()
}
