package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/backtest/tradelog"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"go.uber.org/zap"
)

// renderFunc turns a finished run into the response body of one endpoint.
type renderFunc func(req StockDataRequest, result types.BacktestResult) (any, error)

func (s *Server) handlePriceData(w http.ResponseWriter, r *http.Request) {
	s.serveBacktest(w, r, func(_ StockDataRequest, result types.BacktestResult) (any, error) {
		rows := priceData(result)
		if len(rows) == 0 {
			return nil, errors.New(errors.ErrCodeNoDataFound, "no valid price data found after processing")
		}

		return rows, nil
	})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	s.serveBacktest(w, r, func(_ StockDataRequest, result types.BacktestResult) (any, error) {
		return performance(result.Report), nil
	})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	s.serveBacktest(w, r, func(req StockDataRequest, result types.BacktestResult) (any, error) {
		action, err := tradelog.ParseAction(req.Action)
		if err != nil {
			return nil, err
		}

		return tradeRows(result.Trades, action), nil
	})
}

func (s *Server) handleRSI(w http.ResponseWriter, r *http.Request) {
	s.serveBacktest(w, r, func(_ StockDataRequest, result types.BacktestResult) (any, error) {
		return rsiRows(result), nil
	})
}

func (s *Server) handleMACD(w http.ResponseWriter, r *http.Request) {
	s.serveBacktest(w, r, func(_ StockDataRequest, result types.BacktestResult) (any, error) {
		return macdRows(result), nil
	})
}

func (s *Server) handleBollinger(w http.ResponseWriter, r *http.Request) {
	s.serveBacktest(w, r, func(_ StockDataRequest, result types.BacktestResult) (any, error) {
		return bollingerRows(result), nil
	})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	s.serveBacktest(w, r, func(req StockDataRequest, result types.BacktestResult) (any, error) {
		action, err := tradelog.ParseAction(req.Action)
		if err != nil {
			return nil, err
		}

		return BacktestResponse{
			Ticker:      result.Prices.Symbol(),
			Params:      result.Params,
			PriceData:   priceData(result),
			Performance: performance(result.Report),
			Trades:      tradeRows(result.Trades, action),
			Signals:     signalRows(result.Signals),
			Equity:      equityRows(result.Equity),
			RSI:         rsiRows(result),
			MACD:        macdRows(result),
			Bollinger:   bollingerRows(result),
		}, nil
	})
}

// serveBacktest decodes and validates the request, fetches the series, runs the
// pipeline and writes what render returns.
func (s *Server) serveBacktest(w http.ResponseWriter, r *http.Request, render renderFunc) {
	req := newStockDataRequest()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid JSON body", err))

		return
	}

	query, err := req.validate()
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	ctx := r.Context()

	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)

		defer cancel()
	}

	fetchStart := time.Now()
	series, err := s.source.FetchSeries(ctx, query.Ticker, query.Start, query.End)
	s.metrics.ObserveFetch(time.Since(fetchStart), err)

	if err != nil {
		s.writeError(w, r, err)

		return
	}

	result, err := s.engine.Run(ctx, series, query.Params, s.metrics.Callbacks())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	body, err := render(req, result)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.log.Debug("Backtest served",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("ticker", query.Ticker),
		zap.Int("data_points", series.Len()),
		zap.Int("trades", len(result.Trades)),
	)

	writeJSON(w, http.StatusOK, body)
}

// priceData keeps the rows where both moving averages are defined.
func priceData(result types.BacktestResult) []PriceDataPoint {
	view := result.PriceView()
	rows := make([]PriceDataPoint, 0, len(view))

	for _, p := range view {
		if p.SMAShort.IsNone() || p.SMALong.IsNone() {
			continue
		}

		rows = append(rows, PriceDataPoint{
			Date:     formatDate(p.Date),
			Price:    round(p.Close, 2),
			SMAShort: round(p.SMAShort.Unwrap(), 2),
			SMALong:  round(p.SMALong.Unwrap(), 2),
			Volume:   int64(max(p.Volume, 0)),
			Position: p.Position.String(),
		})
	}

	return rows
}

func performance(report types.PerformanceReport) PerformanceMetrics {
	return PerformanceMetrics{
		StrategyReturn: round(report.StrategyTotalReturn, 2),
		BuyHoldReturn:  round(report.BuyHoldTotalReturn, 2),
		TotalTrades:    report.TradeCount,
		MaxDrawdown:    round(report.MaxDrawdown, 2),
		SharpeRatio:    round(report.SharpeRatio, 2),
		WinRate:        round(report.WinRate, 2),
		Volatility:     round(report.Volatility, 2),
		Alpha:          round(report.Alpha, 2),
	}
}

func tradeRows(trades []types.Trade, action tradelog.Action) []TradeRow {
	events := tradelog.Filter(tradelog.Events(trades, tradelog.DefaultShares), action)
	rows := make([]TradeRow, len(events))

	for i, e := range events {
		pnl := optional.None[float64]()
		if e.PnL.IsSome() {
			pnl = optional.Some(round(e.PnL.Unwrap(), 2))
		}

		rows[i] = TradeRow{
			ID:     e.ID,
			Date:   formatDate(e.Date),
			Action: e.Action,
			Price:  round(e.Price, 2),
			Shares: e.Shares,
			Value:  round(e.Value, 2),
			PnL:    pnl,
		}
	}

	return rows
}

func rsiRows(result types.BacktestResult) []IndicatorPoint {
	view := result.RSIView()
	rows := make([]IndicatorPoint, len(view))

	for i, p := range view {
		rows[i] = IndicatorPoint{Date: formatDate(p.Date), Value: round(p.Value, 2)}
	}

	return rows
}

func macdRows(result types.BacktestResult) []MACDRow {
	view := result.MACDView()
	rows := make([]MACDRow, len(view))

	for i, p := range view {
		rows[i] = MACDRow{
			Date:      formatDate(p.Date),
			MACD:      round(p.MACD, 4),
			Signal:    round(p.Signal, 4),
			Histogram: round(p.Histogram, 4),
		}
	}

	return rows
}

func bollingerRows(result types.BacktestResult) []BollingerRow {
	view := result.BollingerView()
	rows := make([]BollingerRow, len(view))

	for i, p := range view {
		rows[i] = BollingerRow{
			Date:   formatDate(p.Date),
			Price:  round(p.Close, 2),
			Upper:  round(p.Upper, 2),
			Middle: round(p.Middle, 2),
			Lower:  round(p.Lower, 2),
		}
	}

	return rows
}

func signalRows(signals []types.Signal) []SignalRow {
	rows := make([]SignalRow, len(signals))

	for i, sig := range signals {
		rows[i] = SignalRow{Date: formatDate(sig.Time), Type: string(sig.Type), Price: round(sig.Price, 2)}
	}

	return rows
}

func equityRows(equity []types.EquityPoint) []EquityRow {
	rows := make([]EquityRow, len(equity))

	for i, p := range equity {
		rows[i] = EquityRow{Date: formatDate(p.Date), Strategy: round(p.Strategy, 2), BuyHold: round(p.BuyHold, 2)}
	}

	return rows
}
