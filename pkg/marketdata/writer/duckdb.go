package writer

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"go.uber.org/zap"
)

// Bars are keyed by (symbol, time). Paginated providers may return the
// boundary bar twice; the later copy wins.
const (
	createBarsTable = `CREATE TABLE bars (
		time TIMESTAMP NOT NULL,
		symbol TEXT NOT NULL,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		volume DOUBLE,
		PRIMARY KEY (symbol, time)
	)`
	upsertBar = `INSERT OR REPLACE INTO bars (time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	exportBars = `COPY (
		SELECT time, symbol, open, high, low, close, volume FROM bars ORDER BY symbol, time
	) TO '%s' (FORMAT PARQUET)`
)

// DuckDBWriter stages bars in an in-memory DuckDB table and exports them
// as a parquet file that datasource.OpenSeriesSource can read back.
type DuckDBWriter struct {
	outputPath string
	log        *logger.Logger

	db     *sql.DB
	tx     *sql.Tx
	upsert *sql.Stmt
	writes int
}

// NewDuckDBWriter creates a writer that exports to outputPath on Finalize.
func NewDuckDBWriter(outputPath string, log *logger.Logger) MarketDataWriter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &DuckDBWriter{outputPath: outputPath, log: log}
}

// Initialize opens the staging database and starts the insert transaction.
func (w *DuckDBWriter) Initialize() error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	if _, err := db.Exec(createBarsTable); err != nil {
		_ = db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create bars table", err)
	}

	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	upsert, err := tx.Prepare(upsertBar)
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare upsert", err)
	}

	w.db, w.tx, w.upsert, w.writes = db, tx, upsert, 0

	return nil
}

// Write stages one bar, replacing an earlier bar with the same symbol and time.
func (w *DuckDBWriter) Write(bar types.Bar) error {
	if w.upsert == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	if bar.Symbol == "" || bar.Time.IsZero() {
		return errors.Newf(errors.ErrCodeMarketDataWriteFailed, "bar needs a symbol and a time, got %q at %v", bar.Symbol, bar.Time)
	}

	if _, err := w.upsert.Exec(bar.Time, bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to stage %s bar at %s", bar.Symbol, bar.Time.Format("2006-01-02 15:04"))
	}

	w.writes++

	return nil
}

// Finalize commits the staged bars and exports them ordered by time.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized or already finalized")
	}

	tx := w.tx
	w.tx = nil

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit staged bars", err)
	}

	var stored int
	if err := w.db.QueryRow(`SELECT count(*) FROM bars`).Scan(&stored); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to count staged bars", err)
	}

	if _, err := w.db.Exec(fmt.Sprintf(exportBars, strings.ReplaceAll(w.outputPath, "'", "''"))); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export bars to %s", w.outputPath)
	}

	w.log.Info("Exported bars",
		zap.String("path", w.outputPath),
		zap.Int("bars", stored),
		zap.Int("duplicates", w.writes-stored),
	)

	return w.outputPath, nil
}

// Close releases the statement, an unfinished transaction and the database.
// It is safe to call more than once.
func (w *DuckDBWriter) Close() error {
	var errs []string

	if w.upsert != nil {
		if err := w.upsert.Close(); err != nil {
			errs = append(errs, "statement: "+err.Error())
		}
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.log.Warn("Failed to roll back staged bars", zap.Error(err))
		}
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			errs = append(errs, "database: "+err.Error())
		}
	}

	w.db, w.tx, w.upsert = nil, nil, nil

	if len(errs) > 0 {
		return errors.Newf(errors.ErrCodeMarketDataWriteFailed, "failed to close writer: %s", strings.Join(errs, "; "))
	}

	return nil
}

// OutputPath is where Finalize writes the parquet file.
func (w *DuckDBWriter) OutputPath() string {
	return w.outputPath
}
