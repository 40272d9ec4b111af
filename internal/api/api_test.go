package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/metrics"
	"github.com/rxtech-lab/findash/mocks"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type APITestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	source  *mocks.MockSeriesSource
	metrics *metrics.Metrics
	handler http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (suite *APITestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockSeriesSource(suite.ctrl)
	suite.metrics = metrics.NewMetrics(prometheus.NewRegistry())

	cfg := config.ServerConfig{
		Addr:           ":0",
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
	}
	suite.handler = NewServer(suite.source, cfg, suite.metrics, logger.NewNopLogger()).Router()
}

func (suite *APITestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func goldenBody(extra string) string {
	return `{"ticker":" gold ","start_date":"2024-01-01","end_date":"2024-01-10",` +
		`"sma_short":2,"sma_long":4,"rsi_window":3,"macd_fast":2,"macd_slow":4,"macd_signal":2,` +
		`"bollinger_window":3,"bollinger_std_mult":2,"count_open_trades":true` + extra + `}`
}

func (suite *APITestSuite) expectGoldenFetch() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	suite.source.EXPECT().
		FetchSeries(gomock.Any(), "GOLD", start, end).
		Return(mocks.SeriesFromCloses("GOLD", mocks.GoldenCloses()...), nil)
}

func (suite *APITestSuite) post(path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *APITestSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func (suite *APITestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (suite *APITestSuite) TestRootAndHealth() {
	rec := suite.get("/")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "FinDash API is running")

	rec = suite.get("/health")
	suite.Equal(http.StatusOK, rec.Code)

	var health map[string]string
	suite.decode(rec, &health)
	suite.Equal("healthy", health["status"])
	suite.NotEmpty(health["timestamp"])
	suite.NotEmpty(rec.Header().Get(RequestIDHeader))
}

func (suite *APITestSuite) TestPriceData() {
	suite.expectGoldenFetch()

	rec := suite.post("/api/stock/price-data", goldenBody(""))
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var rows []PriceDataPoint
	suite.decode(rec, &rows)

	// warm-up rows of the long average are dropped
	suite.Require().Len(rows, 7)
	suite.Equal("2024-01-04", rows[0].Date)
	suite.Equal(11.0, rows[0].Price)
	suite.Equal(11.5, rows[0].SMAShort)
	suite.Equal(11.0, rows[0].SMALong)
	suite.Equal("LONG", rows[0].Position)
	suite.Equal("FLAT", rows[1].Position)
	suite.Equal("2024-01-10", rows[6].Date)
}

func (suite *APITestSuite) TestPerformance() {
	suite.expectGoldenFetch()

	rec := suite.post("/api/stock/performance", goldenBody(""))
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var perf PerformanceMetrics
	suite.decode(rec, &perf)

	suite.Equal(13.64, perf.StrategyReturn)
	suite.Equal(50.0, perf.BuyHoldReturn)
	suite.Equal(2, perf.TotalTrades)
	suite.Equal(-9.09, perf.MaxDrawdown)
	suite.Equal(0.0, perf.WinRate)
	suite.Equal(-36.36, perf.Alpha)
}

func (suite *APITestSuite) TestTrades() {
	testCases := []struct {
		name    string
		action  string
		actions []string
	}{
		{name: "all events", action: "", actions: []string{"Buy", "Sell", "Buy"}},
		{name: "buy only", action: `,"action":"buy"`, actions: []string{"Buy", "Buy"}},
		{name: "sell only", action: `,"action":"Sell"`, actions: []string{"Sell"}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.expectGoldenFetch()

			rec := suite.post("/api/stock/trades", goldenBody(tc.action))
			suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

			var rows []TradeRow
			suite.decode(rec, &rows)

			actions := make([]string, len(rows))
			for i, row := range rows {
				actions[i] = row.Action
			}

			suite.Equal(tc.actions, actions)
		})
	}
}

func (suite *APITestSuite) TestTradePnL() {
	suite.expectGoldenFetch()

	rec := suite.post("/api/stock/trades", goldenBody(""))
	suite.Require().Equal(http.StatusOK, rec.Code)

	var raw []map[string]any
	suite.decode(rec, &raw)
	suite.Require().Len(raw, 3)

	suite.Nil(raw[0]["pnl"])
	suite.Equal(-100.0, raw[1]["pnl"])
	suite.Equal(1000.0, raw[1]["value"])
	suite.Equal("2024-01-05", raw[1]["date"])
	suite.Nil(raw[2]["pnl"])
}

func (suite *APITestSuite) TestIndicators() {
	suite.expectGoldenFetch()
	rec := suite.post("/api/stock/rsi", goldenBody(""))
	suite.Require().Equal(http.StatusOK, rec.Code)

	var rsi []IndicatorPoint
	suite.decode(rec, &rsi)
	suite.Len(rsi, 7)

	for _, p := range rsi {
		suite.GreaterOrEqual(p.Value, 0.0)
		suite.LessOrEqual(p.Value, 100.0)
	}

	suite.expectGoldenFetch()
	rec = suite.post("/api/stock/macd", goldenBody(""))
	suite.Require().Equal(http.StatusOK, rec.Code)

	var macd []MACDRow
	suite.decode(rec, &macd)
	suite.NotEmpty(macd)

	for _, p := range macd {
		suite.InDelta(p.MACD-p.Signal, p.Histogram, 0.0002)
	}

	suite.expectGoldenFetch()
	rec = suite.post("/api/stock/bollinger", goldenBody(""))
	suite.Require().Equal(http.StatusOK, rec.Code)

	var bands []BollingerRow
	suite.decode(rec, &bands)
	suite.Len(bands, 8)
	suite.Equal(12.0, bands[0].Price)

	for _, p := range bands {
		suite.GreaterOrEqual(p.Upper, p.Middle)
		suite.GreaterOrEqual(p.Middle, p.Lower)
	}
}

func (suite *APITestSuite) TestBacktest() {
	suite.expectGoldenFetch()

	rec := suite.post("/api/backtest", goldenBody(""))
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp BacktestResponse
	suite.decode(rec, &resp)

	suite.Equal("GOLD", resp.Ticker)
	suite.Equal(4, resp.Params.SMALongWindow)
	suite.Len(resp.PriceData, 7)
	suite.Len(resp.Trades, 3)
	suite.Len(resp.Signals, 3)
	suite.Equal("buy_long", resp.Signals[0].Type)
	suite.Len(resp.Equity, 10)
	suite.Equal(50.0, resp.Equity[9].BuyHold)
	suite.Equal(2, resp.Performance.TotalTrades)
}

func (suite *APITestSuite) TestValidationErrors() {
	testCases := []struct {
		name   string
		body   string
		detail string
	}{
		{name: "malformed json", body: `{"ticker":`, detail: "invalid JSON body"},
		{name: "missing ticker", body: `{"start_date":"2024-01-01","end_date":"2024-02-01"}`, detail: "ticker is required"},
		{name: "blank ticker", body: `{"ticker":"  ","start_date":"2024-01-01","end_date":"2024-02-01"}`, detail: "ticker is required"},
		{name: "bad date", body: `{"ticker":"AAPL","start_date":"01/01/2024","end_date":"2024-02-01"}`, detail: "YYYY-MM-DD"},
		{name: "start after end", body: `{"ticker":"AAPL","start_date":"2024-03-01","end_date":"2024-02-01"}`, detail: "start date must be before end date"},
		{name: "same dates", body: `{"ticker":"AAPL","start_date":"2024-03-01","end_date":"2024-03-01"}`, detail: "start date must be before end date"},
		{name: "short window not below long", body: `{"ticker":"AAPL","start_date":"2024-01-01","end_date":"2024-02-01","sma_short":50,"sma_long":20}`, detail: "sma_long_window"},
		{name: "bad action", body: goldenBody(`,"action":"hold"`), detail: "unknown trade action"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			if tc.name == "bad action" {
				suite.expectGoldenFetch()
			}

			rec := suite.post("/api/stock/trades", tc.body)
			suite.Equal(http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			suite.decode(rec, &resp)
			suite.Contains(resp.Detail, tc.detail)
		})
	}
}

func (suite *APITestSuite) TestUpstreamErrors() {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: errors.New(errors.ErrCodeDataNotFound, "no data"), status: http.StatusNotFound},
		{name: "fetch failed", err: errors.New(errors.ErrCodeMarketDataFetchFailed, "failed after 3 attempts"), status: http.StatusBadGateway},
		{name: "deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout},
		{name: "unknown", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.source.EXPECT().FetchSeries(gomock.Any(), "GOLD", gomock.Any(), gomock.Any()).Return(mocks.SeriesFromCloses("GOLD", 1), tc.err)

			rec := suite.post("/api/stock/performance", goldenBody(""))
			suite.Equal(tc.status, rec.Code)
		})
	}

	suite.Equal(4.0, testutil.ToFloat64(suite.metrics.SeriesFetchErrors))
}

func (suite *APITestSuite) TestInsufficientData() {
	suite.source.EXPECT().
		FetchSeries(gomock.Any(), "GOLD", gomock.Any(), gomock.Any()).
		Return(mocks.SeriesFromCloses("GOLD", 10, 11, 12), nil)

	rec := suite.post("/api/stock/performance", goldenBody(""))
	suite.Equal(http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	suite.decode(rec, &resp)
	suite.Equal(errors.ErrCodeInsufficientData, resp.Code)
	suite.Equal(errors.CategoryValidation, resp.Category)
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.BacktestsTotal.WithLabelValues("error")))
}

func (suite *APITestSuite) TestCORS() {
	req := httptest.NewRequest(http.MethodOptions, "/api/stock/performance", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	suite.Equal(http.StatusNoContent, rec.Code)
	suite.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")

	rec = httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
}

func (suite *APITestSuite) TestRequestIDPropagated() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")

	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	suite.Equal("req-123", rec.Header().Get(RequestIDHeader))
}

func (suite *APITestSuite) TestSchemaAndMetrics() {
	rec := suite.get("/api/schema")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "sma_short_window")

	rec = suite.get("/metrics")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `findash_http_requests_total{method="GET",route="/api/schema",status="200"} 1`)
}

func (suite *APITestSuite) TestStatusFor() {
	suite.Equal(http.StatusBadRequest, statusFor(errors.New(errors.ErrCodeInvalidParameter, "x")))
	suite.Equal(http.StatusUnprocessableEntity, statusFor(errors.New(errors.ErrCodeEmptySeries, "x")))
	suite.Equal(http.StatusUnprocessableEntity, statusFor(errors.NewInsufficientDataError("rsi", 15, 3)))
	suite.Equal(http.StatusNotFound, statusFor(errors.New(errors.ErrCodeNoDataFound, "x")))
	suite.Equal(http.StatusBadGateway, statusFor(errors.New(errors.ErrCodeInvalidProvider, "x")))
	suite.Equal(http.StatusInternalServerError, statusFor(errors.New(errors.ErrCodeBacktestFailed, "x")))
	suite.Equal(http.StatusInternalServerError, statusFor(errors.New(errors.ErrCodeCacheFailed, "x")))
}

func (suite *APITestSuite) TestWriteErrorCarriesRequestContext() {
	path := suite.T().TempDir() + "/api.log"
	log, err := logger.New(logger.Options{File: path})
	suite.Require().NoError(err)

	server := NewServer(suite.source, config.ServerConfig{}, suite.metrics, log)

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	req = req.WithContext(context.WithValue(req.Context(), requestIDKey{}, "req-500"))
	rec := httptest.NewRecorder()

	server.writeError(rec, req, errors.New(errors.ErrCodeBacktestFailed, "engine stopped"))
	_ = log.Sync()

	suite.Equal(http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	suite.decode(rec, &resp)
	suite.Equal(errors.ErrCodeBacktestFailed, resp.Code)
	suite.Equal(errors.CategoryBacktest, resp.Category)

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"request_id":"req-500"`)
}
