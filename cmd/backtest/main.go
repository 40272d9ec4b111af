package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/findash/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/findash/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/findash/internal/backtest/tradelog"
	"github.com/rxtech-lab/findash/internal/cache"
	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/datasource"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// options are the resolved flags of one backtest invocation.
type options struct {
	Ticker    string
	Start     time.Time
	End       time.Time
	DataFile  string
	TradesCSV string
	Action    tradelog.Action
	Report    string
}

func fetchSeries(ctx context.Context, cfg *config.Config, opts options, log *logger.Logger) (types.PriceSeries, error) {
	if opts.DataFile != "" {
		source, err := datasource.OpenSeriesSource(opts.DataFile, log)
		if err != nil {
			return types.PriceSeries{}, err
		}

		defer source.Close()

		return source.FetchSeries(ctx, opts.Ticker, opts.Start, opts.End)
	}

	client, err := marketdata.NewClient(marketdata.ClientConfigFrom(cfg.MarketData), cache.NewNoopCache(), log, nil)
	if err != nil {
		return types.PriceSeries{}, err
	}

	return client.FetchSeries(ctx, opts.Ticker, opts.Start, opts.End)
}

// runBacktest fetches the series, runs the pipeline, prints the report to out and
// writes the requested exports.
func runBacktest(ctx context.Context, cfg *config.Config, opts options, out io.Writer, log *logger.Logger) (types.BacktestResult, error) {
	series, err := fetchSeries(ctx, cfg, opts, log)
	if err != nil {
		return types.BacktestResult{}, err
	}

	onStageEnd := engine.OnStageEndCallback(func(stage engine.Stage, elapsed time.Duration) {
		log.Debug("Stage completed", zap.String("stage", string(stage)), zap.Duration("elapsed", elapsed))
	})

	result, err := engine_v1.NewBacktestEngineV1(log).Run(ctx, series, cfg.Strategy, engine.LifecycleCallbacks{
		OnStageEnd: &onStageEnd,
	})
	if err != nil {
		return types.BacktestResult{}, err
	}

	fmt.Fprintln(out, renderReport(result))

	if opts.TradesCSV != "" {
		if err := writeTrades(opts.TradesCSV, result.Trades, opts.Action); err != nil {
			return types.BacktestResult{}, err
		}

		log.Info("Trade log written", zap.String("path", opts.TradesCSV))
	}

	if opts.Report != "" {
		report := types.ReportFile{
			Symbol: series.Symbol(),
			Start:  series.First().Date.Format(time.DateOnly),
			End:    series.Last().Date.Format(time.DateOnly),
			Params: result.Params,
			Report: result.Report,
		}

		if err := types.WritePerformanceReports(opts.Report, []types.ReportFile{report}); err != nil {
			return types.BacktestResult{}, err
		}

		log.Info("Performance report written", zap.String("path", opts.Report))
	}

	return result, nil
}

func writeTrades(path string, trades []types.Trade, action tradelog.Action) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trade log: %w", err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close trade log: %w", cerr)
		}
	}()

	events := tradelog.Filter(tradelog.Events(trades, tradelog.DefaultShares), action)

	return tradelog.WriteCSV(file, events)
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadDotEnv(cmd.String("env")); err != nil {
		return err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if v := cmd.Int("sma-short"); v > 0 {
		cfg.Strategy.SMAShortWindow = int(v)
	}

	if v := cmd.Int("sma-long"); v > 0 {
		cfg.Strategy.SMALongWindow = int(v)
	}

	if cmd.IsSet("count-open-trades") {
		cfg.Strategy.CountOpenTrades = cmd.Bool("count-open-trades")
	}

	action, err := tradelog.ParseAction(cmd.String("action"))
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Options())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	_, err = runBacktest(ctx, cfg, options{
		Ticker:    cmd.String("ticker"),
		Start:     cmd.Timestamp("start"),
		End:       cmd.Timestamp("end"),
		DataFile:  cmd.String("file"),
		TradesCSV: cmd.String("trades-csv"),
		Action:    action,
		Report:    cmd.String("report"),
	}, os.Stdout, log)

	return err
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Backtest the moving-average crossover strategy on one ticker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read prices from a parquet or CSV file instead of the provider",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config/findash.yaml",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file",
				Value: ".env",
			},
			&cli.IntFlag{
				Name:  "sma-short",
				Usage: "Short moving average window, overrides the config file",
			},
			&cli.IntFlag{
				Name:  "sma-long",
				Usage: "Long moving average window, overrides the config file",
			},
			&cli.BoolFlag{
				Name:  "count-open-trades",
				Usage: "Count a trade still open at the end of the series in the trade count",
			},
			&cli.StringFlag{
				Name:  "trades-csv",
				Usage: "Write the trade log to this CSV file",
			},
			&cli.StringFlag{
				Name:  "action",
				Usage: "Trade log filter: all, buy or sell",
				Value: string(tradelog.ActionAll),
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write the performance report to this YAML file",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
