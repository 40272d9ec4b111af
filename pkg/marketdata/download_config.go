package marketdata

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/rxtech-lab/findash/pkg/marketdata/provider"
)

// DownloadConfig describes one download job. It is read from JSON or built from CLI flags.
type DownloadConfig struct {
	Provider  provider.ProviderType `json:"provider" jsonschema:"title=Provider,enum=polygon,enum=binance,default=polygon" validate:"required,oneof=polygon binance"`
	Ticker    string                `json:"ticker" jsonschema:"title=Ticker,description=The symbol to download (e.g. AAPL or BTCUSDT),required" validate:"required"`
	StartDate string                `json:"start_date" jsonschema:"title=Start Date,description=First day in YYYY-MM-DD,format=date,required" validate:"required,datetime=2006-01-02"`
	EndDate   string                `json:"end_date" jsonschema:"title=End Date,description=Last day in YYYY-MM-DD,format=date,required" validate:"required,datetime=2006-01-02"`
	Interval  string                `json:"interval" jsonschema:"title=Interval,default=1d,enum=1m,enum=5m,enum=15m,enum=30m,enum=1h,enum=4h,enum=1d,enum=1w,enum=1M" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d 1w 1M"`
	APIKey    string                `json:"api_key,omitempty" jsonschema:"title=API Key,description=Polygon.io API key. Falls back to POLYGON_API_KEY" validate:"required_if=Provider polygon"`
}

// Validate checks the fields and that the start date precedes the end date.
func (c *DownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	start, end, err := c.dates()
	if err != nil {
		return err
	}

	if !start.Before(end) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "start_date %s must be before end_date %s", c.StartDate, c.EndDate)
	}

	return nil
}

func (c *DownloadConfig) dates() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid start_date, expected YYYY-MM-DD", err)
	}

	end, err := time.Parse(time.DateOnly, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid end_date, expected YYYY-MM-DD", err)
	}

	return start, end, nil
}

// ToDownloadParams converts the config into client download parameters.
func (c *DownloadConfig) ToDownloadParams() (DownloadParams, error) {
	start, end, err := c.dates()
	if err != nil {
		return DownloadParams{}, err
	}

	timespan, err := ParseTimespan(c.Interval)
	if err != nil {
		return DownloadParams{}, err
	}

	return DownloadParams{
		Ticker:     c.Ticker,
		StartDate:  start,
		EndDate:    end,
		Multiplier: timespan.Multiplier(),
		Timespan:   timespan.Timespan(),
	}, nil
}

// ToClientConfig converts the config into a client configuration writing below dataPath.
func (c *DownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.ProviderType = c.Provider
	cfg.DataPath = dataPath
	cfg.APIKey = c.APIKey

	return cfg
}

// ParseDownloadConfig parses and validates a JSON download config.
func ParseDownloadConfig(jsonConfig string) (*DownloadConfig, error) {
	var config DownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
