package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/findash/internal/cache"
	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/rxtech-lab/findash/pkg/marketdata/provider"
	"github.com/rxtech-lab/findash/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType provider.ProviderType `validate:"required,oneof=polygon binance"`
	// DataPath is the directory downloads are written to.
	DataPath   string        `validate:"required"`
	APIKey     string        `validate:"required_if=ProviderType polygon"`
	MaxRetries int           `validate:"gte=1"`
	RetryWait  time.Duration `validate:"gt=0"`
	// Timeout bounds every single provider call, retries included separately.
	Timeout time.Duration `validate:"gt=0"`
}

// DefaultClientConfig retries three times, the way the dashboard backend did.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ProviderType: provider.ProviderPolygon,
		DataPath:     "data",
		APIKey:       "",
		MaxRetries:   3,
		RetryWait:    3 * time.Second,
		Timeout:      30 * time.Second,
	}
}

// ClientConfigFrom builds a client configuration from the market_data section of the
// application config.
func ClientConfigFrom(cfg config.MarketDataConfig) ClientConfig {
	clientConfig := DefaultClientConfig()
	clientConfig.ProviderType = provider.ProviderType(cfg.Provider)
	clientConfig.APIKey = cfg.APIKey

	if cfg.DataDir != "" {
		clientConfig.DataPath = cfg.DataDir
	}

	if cfg.MaxRetries > 0 {
		clientConfig.MaxRetries = cfg.MaxRetries
	}

	if cfg.RetryWait > 0 {
		clientConfig.RetryWait = cfg.RetryWait
	}

	if cfg.Timeout > 0 {
		clientConfig.Timeout = cfg.Timeout
	}

	return clientConfig
}

// FetchParams identifies a daily price series.
type FetchParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker     string          `validate:"required"`
	StartDate  time.Time       `validate:"required"`
	EndDate    time.Time       `validate:"required,gtfield=StartDate"`
	Multiplier int             `validate:"required,min=1"`
	Timespan   models.Timespan `validate:"required"`
}

// Client fetches price series with retry and caching, and downloads bars to parquet files.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	cache      cache.Cache
	validate   *validator.Validate
	log        *logger.Logger
	onProgress provider.OnDownloadProgress
}

// NewClient creates a client for the provider named in config.
// A nil seriesCache disables caching.
func NewClient(config ClientConfig, seriesCache cache.Cache, log *logger.Logger, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.APIKey)
	if err != nil {
		return nil, err
	}

	return NewClientWithProvider(config, marketProvider, seriesCache, log, onProgress)
}

// NewClientWithProvider creates a client on top of an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, seriesCache cache.Cache, log *logger.Logger, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if seriesCache == nil {
		seriesCache = cache.NewNoopCache()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		cache:      seriesCache,
		validate:   validate,
		log:        log.Component("marketdata"),
		onProgress: onProgress,
	}, nil
}

// FetchSeries returns the daily closes of ticker between start and end.
// Provider failures are retried with exponential backoff. Successful results are cached.
func (c *Client) FetchSeries(ctx context.Context, ticker string, start time.Time, end time.Time) (types.PriceSeries, error) {
	params := FetchParams{Ticker: ticker, StartDate: start, EndDate: end}
	if err := c.validate.Struct(params); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid fetch parameters", err)
	}

	key := cache.Key(string(c.provider.Name()), ticker, start, end)

	cached, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("Series cache read failed", zap.String("key", key), zap.Error(err))
	} else if cached.IsSome() {
		c.log.Debug("Series cache hit", zap.String("key", key))

		return cached.Unwrap(), nil
	}

	bars, err := c.fetchWithRetry(ctx, params)
	if err != nil {
		return types.PriceSeries{}, err
	}

	series, err := types.BarsToSeries(ticker, bars)
	if err != nil {
		return types.PriceSeries{}, err
	}

	if err := c.cache.Set(ctx, key, series); err != nil {
		c.log.Warn("Series cache write failed", zap.String("key", key), zap.Error(err))
	}

	return series, nil
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.config.RetryWait
	policy.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.config.MaxRetries-1)), ctx)
}

func (c *Client) fetchWithRetry(ctx context.Context, params FetchParams) ([]types.Bar, error) {
	var bars []types.Bar

	attempt := 0

	operation := func() error {
		attempt++

		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		result, err := c.provider.FetchBars(callCtx, params.Ticker, params.StartDate, params.EndDate, 1, models.Day)
		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}

			return err
		}

		if len(result) == 0 {
			return backoff.Permanent(errors.Newf(errors.ErrCodeDataNotFound, "no data found for ticker %s", params.Ticker))
		}

		bars = result

		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.log.Warn("Fetch failed, retrying",
			zap.String("ticker", params.Ticker),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, c.retryPolicy(ctx), notify); err != nil {
		if errors.GetCode(err) != errors.ErrCodeUnknown {
			return nil, err
		}

		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s after %d attempts", params.Ticker, attempt)
	}

	c.log.Debug("Fetched bars", zap.String("ticker", params.Ticker), zap.Int("bars", len(bars)), zap.Int("attempts", attempt))

	return bars, nil
}

// isRetryable reports whether a provider error may go away on a second attempt.
func isRetryable(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeMissingParameter,
		errors.ErrCodeMarketDataParseFailed, errors.ErrCodeDataNotFound:
		return false
	default:
		return true
	}
}

// Download writes the bars described by params to a parquet file below DataPath and returns its path.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data directory %s", c.config.DataPath)
	}

	outputPath := filepath.Join(c.config.DataPath, OutputFileName(params))

	c.provider.ConfigWriter(writer.NewDuckDBWriter(outputPath, c.log))

	c.log.Info("Downloading market data",
		zap.String("provider", string(c.provider.Name())),
		zap.String("ticker", params.Ticker),
		zap.String("output", outputPath),
	)

	path, err := c.provider.Download(ctx, params.Ticker, params.StartDate, params.EndDate, params.Multiplier, params.Timespan, c.onProgress)
	if err != nil {
		return "", err
	}

	return path, nil
}

// OutputFileName is TICKER_START_END_MULTIPLIER_TIMESPAN.parquet.
func OutputFileName(params DownloadParams) string {
	return fmt.Sprintf("%s_%s_%s_%d_%s.parquet",
		params.Ticker,
		params.StartDate.Format(time.DateOnly),
		params.EndDate.Format(time.DateOnly),
		params.Multiplier,
		params.Timespan)
}
