package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rxtech-lab/findash/internal/api"
	"github.com/rxtech-lab/findash/internal/cache"
	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/datasource"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/metrics"
	"github.com/rxtech-lab/findash/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// newSeriesSource serves from dataFile when set, otherwise from the configured provider.
func newSeriesSource(cfg *config.Config, dataFile string, log *logger.Logger) (api.SeriesSource, func(), error) {
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

func serverAction(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadDotEnv(cmd.String("env")); err != nil {
		return err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := logger.New(cfg.Log.Options())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	source, closeSource, err := newSeriesSource(cfg, cmd.String("data-file"), log)
	if err != nil {
		return err
	}

	defer closeSource()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := api.NewServer(source, cfg.Server, metrics.NewMetrics(registry), log).HTTPServer()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		log.Info("Server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("provider", string(cfg.MarketData.Provider)),
			zap.String("cache", string(cfg.Cache.Backend)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func main() {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "Serve the backtest API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file. Missing files fall back to defaults",
				Value:   "config/findash.yaml",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address, overrides the config file",
			},
			&cli.StringFlag{
				Name:    "data-file",
				Aliases: []string{"f"},
				Usage:   "Serve prices from a local parquet or CSV file instead of the provider",
			},
		},
		Action: serverAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
