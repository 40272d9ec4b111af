package api

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/shopspring/decimal"
)

// StockDataRequest is the body of every POST endpoint. Omitted strategy fields
// keep their defaults.
type StockDataRequest struct {
	Ticker           string  `json:"ticker" validate:"required"`
	StartDate        string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	SMAShort         int     `json:"sma_short"`
	SMALong          int     `json:"sma_long"`
	RSIWindow        int     `json:"rsi_window"`
	MACDFast         int     `json:"macd_fast"`
	MACDSlow         int     `json:"macd_slow"`
	MACDSignal       int     `json:"macd_signal"`
	BollingerWindow  int     `json:"bollinger_window"`
	BollingerStdMult float64 `json:"bollinger_std_mult"`
	CountOpenTrades  bool    `json:"count_open_trades"`
	// Action filters the trade log: all, buy or sell.
	Action string `json:"action,omitempty"`
}

func newStockDataRequest() StockDataRequest {
	p := types.DefaultStrategyParams()

	return StockDataRequest{
		SMAShort:         p.SMAShortWindow,
		SMALong:          p.SMALongWindow,
		RSIWindow:        p.RSIWindow,
		MACDFast:         p.MACDFast,
		MACDSlow:         p.MACDSlow,
		MACDSignal:       p.MACDSignal,
		BollingerWindow:  p.BollingerWindow,
		BollingerStdMult: p.BollingerStdMult,
		CountOpenTrades:  p.CountOpenTrades,
	}
}

// stockQuery is a validated request.
type stockQuery struct {
	Ticker string
	Start  time.Time
	End    time.Time
	Params types.StrategyParams
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})

	return v
}

func (r StockDataRequest) validate() (stockQuery, error) {
	r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))

	if err := requestValidator.Struct(r); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			if fe.Tag() == "datetime" {
				return stockQuery{}, errors.New(errors.ErrCodeInvalidParameter, "invalid date format, use YYYY-MM-DD")
			}

			return stockQuery{}, errors.Newf(errors.ErrCodeInvalidParameter, "%s is required", fe.Field())
		}

		return stockQuery{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request", err)
	}

	start, _ := time.Parse(time.DateOnly, r.StartDate)
	end, _ := time.Parse(time.DateOnly, r.EndDate)

	if !start.Before(end) {
		return stockQuery{}, errors.New(errors.ErrCodeInvalidParameter, "start date must be before end date")
	}

	params := types.StrategyParams{
		SMAShortWindow:   r.SMAShort,
		SMALongWindow:    r.SMALong,
		RSIWindow:        r.RSIWindow,
		MACDFast:         r.MACDFast,
		MACDSlow:         r.MACDSlow,
		MACDSignal:       r.MACDSignal,
		BollingerWindow:  r.BollingerWindow,
		BollingerStdMult: r.BollingerStdMult,
		CountOpenTrades:  r.CountOpenTrades,
	}

	if err := params.Validate(); err != nil {
		return stockQuery{}, err
	}

	return stockQuery{Ticker: r.Ticker, Start: start, End: end, Params: params}, nil
}

// PriceDataPoint is one row of /api/stock/price-data.
type PriceDataPoint struct {
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
	SMAShort float64 `json:"smaShort"`
	SMALong  float64 `json:"smaLong"`
	Volume   int64   `json:"volume"`
	Position string  `json:"position"`
}

// PerformanceMetrics is the body of /api/stock/performance.
type PerformanceMetrics struct {
	StrategyReturn float64 `json:"strategyReturn"`
	BuyHoldReturn  float64 `json:"buyHoldReturn"`
	TotalTrades    int     `json:"totalTrades"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	WinRate        float64 `json:"winRate"`
	Volatility     float64 `json:"volatility"`
	Alpha          float64 `json:"alpha"`
}

// TradeRow is one buy or sell event of /api/stock/trades.
type TradeRow struct {
	ID     int                      `json:"id"`
	Date   string                   `json:"date"`
	Action string                   `json:"action"`
	Price  float64                  `json:"price"`
	Shares int                      `json:"shares"`
	Value  float64                  `json:"value"`
	PnL    optional.Option[float64] `json:"pnl"`
}

type IndicatorPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type MACDRow struct {
	Date      string  `json:"date"`
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type BollingerRow struct {
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

type SignalRow struct {
	Date  string  `json:"date"`
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

type EquityRow struct {
	Date     string  `json:"date"`
	Strategy float64 `json:"strategy"`
	BuyHold  float64 `json:"buyHold"`
}

// BacktestResponse bundles every view of one run.
type BacktestResponse struct {
	Ticker      string               `json:"ticker"`
	Params      types.StrategyParams `json:"params"`
	PriceData   []PriceDataPoint     `json:"priceData"`
	Performance PerformanceMetrics   `json:"performance"`
	Trades      []TradeRow           `json:"trades"`
	Signals     []SignalRow          `json:"signals"`
	Equity      []EquityRow          `json:"equity"`
	RSI         []IndicatorPoint     `json:"rsi"`
	MACD        []MACDRow            `json:"macd"`
	Bollinger   []BollingerRow       `json:"bollinger"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Detail   string           `json:"detail"`
	Code     errors.ErrorCode `json:"code"`
	Category errors.Category  `json:"category"`
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
