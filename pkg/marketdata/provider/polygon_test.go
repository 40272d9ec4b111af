package provider

import (
	"context"
	"fmt"
	"testing"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator   PolygonAggsIterator
	lastParams *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.lastParams = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

func agg(d int, closePrice float64) models.Agg {
	//nolint:exhaustruct // only the fields the provider reads
	return models.Agg{
		Timestamp: models.Millis(day(d)),
		Open:      closePrice - 1,
		High:      closePrice + 1,
		Low:       closePrice - 2,
		Close:     closePrice,
		Volume:    1000,
	}
}

type PolygonClientTestSuite struct {
	suite.Suite
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient() {
	client, err := NewPolygonClient("test-api-key")
	suite.Require().NoError(err)

	polygonClient, ok := client.(*PolygonClient)
	suite.Require().True(ok)
	suite.NotNil(polygonClient.apiClient)
	suite.Nil(polygonClient.writer)

	_, err = NewPolygonClient("")
	suite.Error(err)
	suite.Contains(err.Error(), "apiKey is required")
}

func (suite *PolygonClientTestSuite) TestFetchBars() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 10), agg(3, 11)}}}
	client := NewPolygonClientWithAPI(api)

	bars, err := client.FetchBars(context.Background(), "AAPL", day(1), day(5), 1, models.Day)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)

	suite.Equal("AAPL", bars[0].Symbol)
	suite.Equal(day(2), bars[0].Time)
	suite.Equal(10.0, bars[0].Close)
	suite.Equal(9.0, bars[0].Open)
	suite.Equal(1000.0, bars[1].Volume)

	suite.Equal("AAPL", api.lastParams.Ticker)
	suite.Equal(models.Day, api.lastParams.Timespan)
	suite.Equal(1, api.lastParams.Multiplier)
}

func (suite *PolygonClientTestSuite) TestFetchBarsIteratorError() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{err: fmt.Errorf("status 429")}}
	client := NewPolygonClientWithAPI(api)

	_, err := client.FetchBars(context.Background(), "AAPL", day(1), day(5), 1, models.Day)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *PolygonClientTestSuite) TestFetchBarsCancelled() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 10)}}}
	client := NewPolygonClientWithAPI(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchBars(ctx, "AAPL", day(1), day(5), 1, models.Day)
	suite.Error(err)
}

func (suite *PolygonClientTestSuite) TestDownload() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(1, 10), agg(2, 11), agg(3, 12)}}}
	client := NewPolygonClientWithAPI(api)

	w := &mockWriter{outputPath: "/tmp/AAPL.parquet"}
	client.ConfigWriter(w)

	var calls int

	path, err := client.Download(context.Background(), "AAPL", day(1), day(3), 1, models.Day, func(current, total float64, _ string) {
		calls++
		suite.LessOrEqual(current, total)
	})
	suite.Require().NoError(err)

	suite.Equal("/tmp/AAPL.parquet", path)
	suite.True(w.initialized)
	suite.Len(w.writtenData, 3)
	suite.Equal(3, calls)
	suite.Equal(1, w.finalizeCallCount)
	suite.Equal(1, w.closeCallCount)
}

func (suite *PolygonClientTestSuite) TestDownloadWriterErrors() {
	tests := []struct {
		name   string
		writer *mockWriter
		errMsg string
	}{
		{name: "initialize", writer: &mockWriter{initializeErr: fmt.Errorf("init failed")}, errMsg: "failed to initialize writer"},
		{name: "write", writer: &mockWriter{writeErr: fmt.Errorf("disk full")}, errMsg: "failed to write bar"},
		{name: "finalize", writer: &mockWriter{finalizeErr: fmt.Errorf("copy failed")}, errMsg: "failed to finalize writer"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(1, 10)}}}
			client := NewPolygonClientWithAPI(api)
			client.ConfigWriter(tt.writer)

			_, err := client.Download(context.Background(), "AAPL", day(1), day(3), 1, models.Day, nil)
			suite.Require().Error(err)
			suite.Contains(err.Error(), tt.errMsg)
		})
	}
}
