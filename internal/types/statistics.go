package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PerformanceReport is the aggregate outcome of one backtest run.
// Returns, drawdown, win rate and volatility are percentages.
type PerformanceReport struct {
	// Compounded return of the strategy over the whole series.
	StrategyTotalReturn float64 `yaml:"strategy_total_return" json:"strategy_total_return"`
	// Return of holding from the first close to the last close.
	BuyHoldTotalReturn float64 `yaml:"buy_hold_total_return" json:"buy_hold_total_return"`
	// Annualized Sharpe ratio of the strategy period returns. 0 when returns have no variance.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// Largest peak-to-trough decline of the strategy equity curve. Zero or negative.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Number of trades, including the open one when open trades are counted.
	TradeCount int `yaml:"trade_count" json:"trade_count"`
	// Share of closed trades with a positive return.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Annualized standard deviation of the strategy period returns.
	Volatility float64 `yaml:"volatility" json:"volatility"`
	// Strategy return minus buy-and-hold return.
	Alpha float64 `yaml:"alpha" json:"alpha"`
	// Count of closed trades.
	ClosedTradeCount int `yaml:"closed_trade_count" json:"closed_trade_count"`
	// Count of closed trades with a positive return.
	WinningTradeCount int `yaml:"winning_trade_count" json:"winning_trade_count"`
}

// ReportFile is the YAML document written for one backtest run.
type ReportFile struct {
	Symbol string            `yaml:"symbol"`
	Start  string            `yaml:"start"`
	End    string            `yaml:"end"`
	Params StrategyParams    `yaml:"params"`
	Report PerformanceReport `yaml:"report"`
}

// WritePerformanceReports writes the reports to path as YAML.
func WritePerformanceReports(path string, reports []ReportFile) error {
	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to marshal performance reports to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write performance reports to file: %w", err)
	}

	return nil
}
