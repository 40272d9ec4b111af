package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/shopspring/decimal"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Width(22)
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func formatPercent(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2) + "%"

	switch {
	case v > 0:
		return positiveStyle.Render(s)
	case v < 0:
		return negativeStyle.Render(s)
	default:
		return s
	}
}

func row(label string, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// renderReport formats the performance report and the trade list of a run.
func renderReport(result types.BacktestResult) string {
	r := result.Report
	p := result.Params
	prices := result.Prices

	header := titleStyle.Render(fmt.Sprintf("%s  %s → %s", prices.Symbol(),
		prices.First().Date.Format(time.DateOnly), prices.Last().Date.Format(time.DateOnly)))
	params := faintStyle.Render(fmt.Sprintf("SMA %d/%d  RSI %d  MACD %d/%d/%d  BB %d×%s",
		p.SMAShortWindow, p.SMALongWindow, p.RSIWindow, p.MACDFast, p.MACDSlow, p.MACDSignal,
		p.BollingerWindow, decimal.NewFromFloat(p.BollingerStdMult).String()))

	metrics := []string{
		row("Strategy Return", formatPercent(r.StrategyTotalReturn)),
		row("Buy & Hold Return", formatPercent(r.BuyHoldTotalReturn)),
		row("Alpha", formatPercent(r.Alpha)),
		row("Sharpe Ratio", decimal.NewFromFloat(r.SharpeRatio).StringFixed(2)),
		row("Max Drawdown", formatPercent(r.MaxDrawdown)),
		row("Volatility", decimal.NewFromFloat(r.Volatility).StringFixed(2)+"%"),
		row("Win Rate", decimal.NewFromFloat(r.WinRate).StringFixed(2)+"%"),
		row("Total Trades", fmt.Sprintf("%d (%d closed)", r.TradeCount, r.ClosedTradeCount)),
	}

	sections := []string{header, params, "", strings.Join(metrics, "\n")}

	if len(result.Trades) > 0 {
		sections = append(sections, "", titleStyle.Render("Trades"))

		for i, t := range result.Trades {
			entry := fmt.Sprintf("%2d. %s @ %s", i+1, t.EntryDate.Format(time.DateOnly),
				decimal.NewFromFloat(t.EntryPrice).StringFixed(2))

			if t.IsOpen() {
				sections = append(sections, entry+faintStyle.Render("  open"))

				continue
			}

			sections = append(sections, fmt.Sprintf("%s → %s @ %s  %s", entry,
				t.ExitDate.Unwrap().Format(time.DateOnly),
				decimal.NewFromFloat(t.ExitPrice.Unwrap()).StringFixed(2),
				formatPercent(t.ReturnPct.Unwrap())))
		}
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
