package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	engine_v1 "github.com/rxtech-lab/findash/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/findash/internal/cache"
	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/datasource"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

// newSeriesSource reads from dataFile when set, otherwise from the configured provider.
func newSeriesSource(cfg *config.Config, dataFile string, log *logger.Logger) (SeriesSource, func(), error) {
	if dataFile != "" {
		source, err := datasource.OpenSeriesSource(dataFile, log)
		if err != nil {
			return nil, nil, err
		}

		return source, func() { _ = source.Close() }, nil
	}

	seriesCache, err := cache.NewFromConfig(cfg.Cache, log)
	if err != nil {
		return nil, nil, err
	}

	client, err := marketdata.NewClient(marketdata.ClientConfigFrom(cfg.MarketData), seriesCache, log, nil)
	if err != nil {
		return nil, nil, err
	}

	return client, func() {}, nil
}

func dashboardAction(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadDotEnv(cmd.String("env")); err != nil {
		return err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so entries go to a file.
	logOptions := cfg.Log.Options()
	if logOptions.File == "" {
		logOptions.File = filepath.Join(os.TempDir(), "findash-dashboard.log")
	}

	log, err := logger.New(logOptions)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	source, closeSource, err := newSeriesSource(cfg, cmd.String("file"), log)
	if err != nil {
		return err
	}

	defer closeSource()

	m := NewModel(source, engine_v1.NewBacktestEngineV1(log), cfg.Strategy, cmd.Timestamp("start"), cmd.Timestamp("end"))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}

func main() {
	now := time.Now()

	cmd := &cli.Command{
		Name:  "dashboard",
		Usage: "Browse backtest results of the moving-average crossover strategy in the terminal",
		Flags: []cli.Flag{
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format. Defaults to one year ago.",
				Value:   now.AddDate(-1, 0, 0),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   now,
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
		},
		Action: dashboardAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
