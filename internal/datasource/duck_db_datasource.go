package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"go.uber.org/zap"
)

const viewName = "market_data"

type DuckDBDataSource struct {
	db          *sql.DB
	logger      *logger.Logger
	sq          squirrel.StatementBuilderType
	initialized bool
}

// NewDataSource opens a DuckDB database at path. An empty path opens an in-memory database.
// Call Initialize to attach a market data file before reading.
func NewDataSource(path string, log *logger.Logger) (DataSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	_, err = db.Exec(`SET threads=4;`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to configure duckdb", err)
	}

	return &DuckDBDataSource{
		db:          db,
		logger:      log,
		sq:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		initialized: false,
	}, nil
}

// FormatFromPath derives the file format from the extension of path.
func FormatFromPath(path string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported market data file %q, expected .parquet or .csv", path)
	}
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path), zap.String("format", string(format)))

	_, err = d.db.Exec(`DROP VIEW IF EXISTS ` + viewName + `;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	reader := "read_parquet"
	if format == FormatCSV {
		reader = "read_csv_auto"
	}

	// squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s('%s');`,
		viewName, reader, strings.ReplaceAll(path, "'", "''"))

	if _, err = d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load market data file %s", path)
	}

	d.initialized = true

	return nil
}

func (d *DuckDBDataSource) checkInitialized() error {
	if !d.initialized {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized")
	}

	return nil
}

// buildSeriesQuery collapses rows to one row per calendar day, keeping the latest close.
func (d *DuckDBDataSource) buildSeriesQuery(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (string, []interface{}, error) {
	conditions := squirrel.And{}

	if symbol != "" {
		conditions = append(conditions, squirrel.Eq{"symbol": symbol})
	}

	if start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{"CAST(time AS DATE)": types.CalendarDate(start.Unwrap())})
	}

	if end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{"CAST(time AS DATE)": types.CalendarDate(end.Unwrap())})
	}

	builder := d.sq.
		Select(
			"CAST(time AS DATE) AS day",
			"CAST(arg_max(close, time) AS DOUBLE) AS close",
			"CAST(COALESCE(SUM(volume), 0) AS DOUBLE) AS volume",
		).
		From(viewName).
		GroupBy("day").
		OrderBy("day ASC")

	if len(conditions) > 0 {
		builder = builder.Where(conditions)
	}

	return builder.ToSql()
}

// ReadSeries implements DataSource.
func (d *DuckDBDataSource) ReadSeries(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	if err := d.checkInitialized(); err != nil {
		return types.PriceSeries{}, err
	}

	query, args, err := d.buildSeriesQuery(symbol, start, end)
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build series query", err)
	}

	d.logger.Debug("Reading price series", zap.String("symbol", symbol), zap.String("query", query))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	points := make([]types.PricePoint, 0, 256)

	for rows.Next() {
		var (
			day           time.Time
			close, volume float64
		)

		if err := rows.Scan(&day, &close, &volume); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		points = append(points, types.NewPricePoint(day, close, volume))
	}

	if err = rows.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	if len(points) == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeDataNotFound, "no prices found for ticker %s", symbol)
	}

	return types.NewPriceSeries(symbol, points)
}

// Symbols implements DataSource.
func (d *DuckDBDataSource) Symbols(ctx context.Context) ([]string, error) {
	if err := d.checkInitialized(); err != nil {
		return nil, err
	}

	query, args, err := d.sq.Select("DISTINCT symbol").From(viewName).OrderBy("symbol").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build symbol query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating symbols", err)
	}

	return symbols, nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(ctx context.Context, symbol string) (int, error) {
	if err := d.checkInitialized(); err != nil {
		return 0, err
	}

	query, args, err := d.sq.
		Select("COUNT(DISTINCT CAST(time AS DATE))").
		From(viewName).
		Where(squirrel.Eq{"symbol": symbol}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count rows", err)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}
