package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/rxtech-lab/findash/pkg/marketdata"
	"github.com/rxtech-lab/findash/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// loadDownloadConfig starts from fromFlags and overlays the JSON job file at path
// when given. An empty API key falls back to the provider's environment variable.
func loadDownloadConfig(path string, fromFlags marketdata.DownloadConfig) (*marketdata.DownloadConfig, error) {
	cfg := fromFlags

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read download config: %w", err)
		}

		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
		}
	}

	if err := marketdata.ApplyProviderDefaults(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func newProgressBar() (provider.OnDownloadProgress, *progressbar.ProgressBar) {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)

	onProgress := func(current float64, total float64, message string) {
		if total > 0 {
			bar.ChangeMax64(int64(total))
		}

		bar.Describe(message)
		_ = bar.Set64(int64(current))
	}

	return onProgress, bar
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadDotEnv(cmd.String("env")); err != nil {
		return err
	}

	downloadConfig, err := loadDownloadConfig(cmd.String("config"), marketdata.DownloadConfig{
		Provider:  provider.ProviderType(cmd.String("provider")),
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start").Format(time.DateOnly),
		EndDate:   cmd.Timestamp("end").Format(time.DateOnly),
		Interval:  cmd.String("interval"),
		APIKey:    "",
	})
	if err != nil {
		return err
	}

	params, err := downloadConfig.ToDownloadParams()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	onProgress, bar := newProgressBar()

	client, err := marketdata.NewClient(downloadConfig.ToClientConfig(cmd.String("data")), nil, log, onProgress)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	path, err := client.Download(ctx, params)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	_ = bar.Finish()

	fmt.Printf("Downloaded %s %s bars to %s\n", params.Ticker, downloadConfig.Interval, path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical market data to a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Stock ticker symbol",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
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
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%v)", marketdata.GetSupportedProviders()),
				Value:   string(provider.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval such as 1d, 1h or 15m",
				Value:   string(marketdata.TimespanOneDay),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "JSON download config, replaces the other flags",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file",
				Value: ".env",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
