package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/findash/internal/backtest/tradelog"
	"github.com/rxtech-lab/findash/internal/types"
)

// ViewKind selects which part of a backtest result the table shows.
type ViewKind string

const (
	ViewPrice       ViewKind = "Price & Moving Averages"
	ViewTrades      ViewKind = "Trade Log"
	ViewSignals     ViewKind = "Signals"
	ViewRSI         ViewKind = "RSI"
	ViewMACD        ViewKind = "MACD"
	ViewBollinger   ViewKind = "Bollinger Bands"
	ViewEquity      ViewKind = "Equity Curve"
	ViewPerformance ViewKind = "Performance"
)

// listItem implements list.Item for the view list.
type listItem struct {
	view        ViewKind
	description string
}

func (i listItem) Title() string       { return string(i.view) }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return string(i.view) }

// NewViewList creates the list of result views.
func NewViewList() list.Model {
	items := []list.Item{
		listItem{view: ViewPrice, description: "Closes with short and long SMA and the position held"},
		listItem{view: ViewTrades, description: "Buy and sell events of every trade"},
		listItem{view: ViewSignals, description: "Crossover signals"},
		listItem{view: ViewRSI, description: "Relative strength index"},
		listItem{view: ViewMACD, description: "MACD line, signal and histogram"},
		listItem{view: ViewBollinger, description: "Upper, middle and lower bands"},
		listItem{view: ViewEquity, description: "Cumulative strategy and buy-and-hold returns"},
		listItem{view: ViewPerformance, description: "Summary metrics of the run"},
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select View"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewTickerInput creates the text input for the ticker symbol.
func NewTickerInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "AAPL"
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 20
	ti.Prompt = "> "

	return ti
}

// ParseTicker normalizes the typed ticker. It returns "" when nothing usable was typed.
func ParseTicker(input string) string {
	ticker := strings.ToUpper(strings.TrimSpace(input))
	if strings.ContainsAny(ticker, " ,\t") {
		return ""
	}

	return ticker
}

// NewDataTable creates an empty table for result views.
func NewDataTable() table.Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// BuildTable returns the columns and rows of the given view of result.
func BuildTable(view ViewKind, result types.BacktestResult) ([]table.Column, []table.Row) {
	switch view {
	case ViewPrice:
		return priceTable(result)
	case ViewTrades:
		return tradeTable(result)
	case ViewSignals:
		return signalTable(result)
	case ViewRSI:
		return rsiTable(result)
	case ViewMACD:
		return macdTable(result)
	case ViewBollinger:
		return bollingerTable(result)
	case ViewEquity:
		return equityTable(result)
	default:
		return performanceTable(result)
	}
}

// UpdateTable replaces the columns and rows of t with the given view.
func UpdateTable(t table.Model, view ViewKind, result types.BacktestResult) table.Model {
	columns, rows := BuildTable(view, result)

	// Rows are cleared first so the old rows are never rendered against the new columns.
	t.SetRows(nil)
	t.SetColumns(columns)
	t.SetRows(rows)
	t.GotoTop()

	return t
}

func dateCell(p types.PriceViewPoint) string {
	return p.Date.Format("2006-01-02")
}

func priceTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Close", Width: 12},
		{Title: "SMA Short", Width: 12},
		{Title: "SMA Long", Width: 12},
		{Title: "Position", Width: 10},
	}

	view := result.PriceView()
	rows := make([]table.Row, 0, len(view))

	for _, p := range view {
		rows = append(rows, table.Row{
			dateCell(p),
			FormatNumber(p.Close, 2),
			optionalCell(p.SMAShort.IsSome(), p.SMAShort.TakeOr(0)),
			optionalCell(p.SMALong.IsSome(), p.SMALong.TakeOr(0)),
			FormatPosition(p.Position),
		})
	}

	return columns, rows
}

func optionalCell(defined bool, v float64) string {
	if !defined {
		return "-"
	}

	return FormatNumber(v, 2)
}

func tradeTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Date", Width: 12},
		{Title: "Action", Width: 6},
		{Title: "Price", Width: 10},
		{Title: "Shares", Width: 7},
		{Title: "Value", Width: 12},
		{Title: "P&L", Width: 10},
	}

	events := tradelog.Events(result.Trades, tradelog.DefaultShares)
	rows := make([]table.Row, 0, len(events))

	for _, e := range events {
		pnl := "-"
		if e.PnL.IsSome() {
			pnl = FormatNumber(e.PnL.TakeOr(0), 2)
		}

		rows = append(rows, table.Row{
			strconv.Itoa(e.ID),
			e.Date.Format("2006-01-02"),
			e.Action,
			FormatNumber(e.Price, 2),
			strconv.Itoa(e.Shares),
			FormatNumber(e.Value, 2),
			pnl,
		})
	}

	return columns, rows
}

func signalTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 10},
		{Title: "Price", Width: 10},
		{Title: "Reason", Width: 40},
	}

	rows := make([]table.Row, 0, len(result.Signals))
	for _, s := range result.Signals {
		rows = append(rows, table.Row{
			s.Time.Format("2006-01-02"),
			string(s.Type),
			FormatNumber(s.Price, 2),
			s.Reason,
		})
	}

	return columns, rows
}

func rsiTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "RSI", Width: 10},
	}

	view := result.RSIView()
	rows := make([]table.Row, 0, len(view))

	for _, p := range view {
		rows = append(rows, table.Row{p.Date.Format("2006-01-02"), FormatNumber(p.Value, 2)})
	}

	return columns, rows
}

func macdTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "MACD", Width: 10},
		{Title: "Signal", Width: 10},
		{Title: "Histogram", Width: 10},
	}

	view := result.MACDView()
	rows := make([]table.Row, 0, len(view))

	for _, p := range view {
		rows = append(rows, table.Row{
			p.Date.Format("2006-01-02"),
			FormatNumber(p.MACD, 4),
			FormatNumber(p.Signal, 4),
			FormatNumber(p.Histogram, 4),
		})
	}

	return columns, rows
}

func bollingerTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Close", Width: 10},
		{Title: "Upper", Width: 10},
		{Title: "Middle", Width: 10},
		{Title: "Lower", Width: 10},
	}

	view := result.BollingerView()
	rows := make([]table.Row, 0, len(view))

	for _, p := range view {
		rows = append(rows, table.Row{
			p.Date.Format("2006-01-02"),
			FormatNumber(p.Close, 2),
			FormatNumber(p.Upper, 2),
			FormatNumber(p.Middle, 2),
			FormatNumber(p.Lower, 2),
		})
	}

	return columns, rows
}

func equityTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Strategy", Width: 14},
		{Title: "Buy & Hold", Width: 14},
	}

	rows := make([]table.Row, 0, len(result.Equity))
	for _, p := range result.Equity {
		rows = append(rows, table.Row{
			p.Date.Format("2006-01-02"),
			FormatPercent(p.Strategy),
			FormatPercent(p.BuyHold),
		})
	}

	return columns, rows
}

func performanceTable(result types.BacktestResult) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Metric", Width: 20},
		{Title: "Value", Width: 14},
	}

	r := result.Report
	rows := []table.Row{
		{"Strategy return", FormatPercent(r.StrategyTotalReturn)},
		{"Buy & hold return", FormatPercent(r.BuyHoldTotalReturn)},
		{"Alpha", FormatPercent(r.Alpha)},
		{"Max drawdown", FormatPercent(r.MaxDrawdown)},
		{"Sharpe ratio", FormatNumber(r.SharpeRatio, 2)},
		{"Volatility", FormatPercent(r.Volatility)},
		{"Win rate", FormatNumber(r.WinRate, 2) + "%"},
		{"Trades", strconv.Itoa(r.TradeCount)},
	}

	return columns, rows
}
