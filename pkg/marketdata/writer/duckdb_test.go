package writer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/datasource"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func bar(day int, closePrice float64) types.Bar {
	return types.Bar{
		Symbol: "AAPL",
		Time:   time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
		Open:   closePrice - 1,
		High:   closePrice + 1,
		Low:    closePrice - 2,
		Close:  closePrice,
		Volume: 1000,
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath, nil)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(outputPath, duckWriter.OutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.upsert)
}

func (suite *DuckDBWriterTestSuite) TestWriteAndReadBack() {
	outputPath := filepath.Join(suite.tempDir, "AAPL.parquet")
	writer := NewDuckDBWriter(outputPath, nil)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	// written out of order on purpose
	for _, b := range []types.Bar{bar(3, 12), bar(1, 10), bar(2, 11)} {
		suite.Require().NoError(writer.Write(b))
	}

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	ds, err := datasource.NewDataSource("", nil)
	suite.Require().NoError(err)

	defer ds.Close()

	suite.Require().NoError(ds.Initialize(path))

	series, err := ds.ReadSeries(context.Background(), "AAPL", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal([]float64{10, 11, 12}, series.Closes())
	suite.Equal(1000.0, series.At(0).Volume)
}

func (suite *DuckDBWriterTestSuite) TestOverlappingPagesKeepLatestBar() {
	outputPath := filepath.Join(suite.tempDir, "overlap.parquet")
	writer := NewDuckDBWriter(outputPath, nil)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	for _, b := range []types.Bar{bar(1, 10), bar(2, 11), bar(2, 11.5), bar(3, 12)} {
		suite.Require().NoError(writer.Write(b))
	}

	path, err := writer.Finalize()
	suite.Require().NoError(err)

	ds, err := datasource.NewDataSource("", nil)
	suite.Require().NoError(err)

	defer ds.Close()

	suite.Require().NoError(ds.Initialize(path))

	series, err := ds.ReadSeries(context.Background(), "AAPL", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal([]float64{10, 11.5, 12}, series.Closes())
}

func (suite *DuckDBWriterTestSuite) TestWriteRejectsBarWithoutSymbol() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "nosymbol.parquet"), nil)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	b := bar(1, 10)
	b.Symbol = ""
	err := writer.Write(b)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
	suite.Contains(err.Error(), "needs a symbol")
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"), nil)

	err := writer.Write(bar(1, 10))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
}

func (suite *DuckDBWriterTestSuite) TestFinalizeWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"), nil)

	_, err := writer.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestFinalizeTwice() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "twice.parquet"), nil)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	suite.Require().NoError(writer.Write(bar(1, 10)))

	_, err := writer.Finalize()
	suite.Require().NoError(err)

	_, err = writer.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestCloseIsIdempotent() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "close.parquet"), nil)
	suite.Require().NoError(writer.Initialize())

	suite.NoError(writer.Close())
	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestFinalizeToMissingDirectory() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "missing", "dir", "out.parquet"), nil)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	suite.Require().NoError(writer.Write(bar(1, 10)))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
}
