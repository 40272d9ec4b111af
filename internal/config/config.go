// Package config loads the application configuration from YAML, .env files and
// environment variables.
package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/internal/version"
	"github.com/rxtech-lab/findash/pkg/errors"
	"gopkg.in/yaml.v3"
)

type ProviderName string

const (
	ProviderPolygon ProviderName = "polygon"
	ProviderBinance ProviderName = "binance"
)

type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

type ServerConfig struct {
	Addr           string        `yaml:"addr" json:"addr" validate:"required" jsonschema:"title=Listen Address,default=:8000"`
	AllowedOrigins []string      `yaml:"allowed_origins" json:"allowed_origins" jsonschema:"title=CORS Origins,description=Origins allowed to call the API"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" validate:"gt=0" jsonschema:"title=Request Timeout,type=string,description=Per request deadline such as 30s"`
}

type MarketDataConfig struct {
	Provider ProviderName `yaml:"provider" json:"provider" validate:"oneof=polygon binance" jsonschema:"title=Provider,enum=polygon,enum=binance,default=polygon"`
	// APIKey is read from POLYGON_API_KEY when empty.
	APIKey     string        `yaml:"api_key" json:"api_key" jsonschema:"title=API Key"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries" validate:"gte=1" jsonschema:"title=Max Retries,minimum=1,default=3"`
	RetryWait  time.Duration `yaml:"retry_wait" json:"retry_wait" validate:"gt=0" jsonschema:"title=Retry Wait,type=string,description=Wait before the first retry. Grows with every attempt"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0" jsonschema:"title=Fetch Timeout,type=string"`
	DataDir    string        `yaml:"data_dir" json:"data_dir" jsonschema:"title=Data Directory,description=Directory for downloaded parquet files"`
}

type CacheConfig struct {
	Backend       CacheBackend  `yaml:"backend" json:"backend" validate:"oneof=none memory redis" jsonschema:"title=Backend,enum=none,enum=memory,enum=redis,default=memory"`
	TTL           time.Duration `yaml:"ttl" json:"ttl" validate:"gte=0" jsonschema:"title=TTL,type=string"`
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr" validate:"required_if=Backend redis" jsonschema:"title=Redis Address"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password" jsonschema:"title=Redis Password"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db" validate:"gte=0" jsonschema:"title=Redis Database"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json console" jsonschema:"title=Log Format,enum=json,enum=console,default=json"`
	// File replaces stdout as the log destination when set.
	File string `yaml:"file" json:"file" jsonschema:"title=Log File"`
}

// Options converts the section for logger.New.
func (c LogConfig) Options() logger.Options {
	return logger.Options{Level: c.Level, Format: c.Format, File: c.File}
}

// Config is the root configuration shared by the server and the commands.
type Config struct {
	// EngineVersion is the findash version or semver constraint the file was written for.
	EngineVersion string               `yaml:"engine_version" json:"engine_version" jsonschema:"title=Engine Version,description=Version or semver constraint of findash this file targets"`
	Server        ServerConfig         `yaml:"server" json:"server"`
	MarketData    MarketDataConfig     `yaml:"market_data" json:"market_data"`
	Cache         CacheConfig          `yaml:"cache" json:"cache"`
	Log           LogConfig            `yaml:"log" json:"log"`
	Strategy      types.StrategyParams `yaml:"strategy" json:"strategy"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		EngineVersion: "",
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
			RequestTimeout: 60 * time.Second,
		},
		MarketData: MarketDataConfig{
			Provider:   ProviderPolygon,
			APIKey:     "",
			MaxRetries: 3,
			RetryWait:  3 * time.Second,
			Timeout:    30 * time.Second,
			DataDir:    "data",
		},
		Cache: CacheConfig{
			Backend:       CacheMemory,
			TTL:           15 * time.Minute,
			RedisAddr:     "",
			RedisPassword: "",
			RedisDB:       0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logger.FormatJSON,
			File:   "",
		},
		Strategy: types.DefaultStrategyParams(),
	}
}

// LoadDotEnv loads .env style files into the process environment. Missing files
// are skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load env file %s", path)
		}
	}

	return nil
}

// Load reads the YAML file at path over the defaults, then applies environment
// overrides and validates the result. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}

		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FINDASH_ADDR"); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv("FINDASH_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)

		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}

		c.Server.AllowedOrigins = origins
	}

	if v := os.Getenv("FINDASH_PROVIDER"); v != "" {
		c.MarketData.Provider = ProviderName(strings.ToLower(v))
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" && c.MarketData.APIKey == "" {
		c.MarketData.APIKey = v
	}

	if v := os.Getenv("FINDASH_DATA_DIR"); v != "" {
		c.MarketData.DataDir = v
	}

	if v := os.Getenv("FINDASH_CACHE"); v != "" {
		c.Cache.Backend = CacheBackend(strings.ToLower(v))
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}

	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// Validate checks field constraints, the strategy parameters and the engine version.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if err := c.Strategy.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid strategy section", err)
	}

	if err := version.CheckCompatibility(version.GetVersion(), c.EngineVersion); err != nil {
		return err
	}

	return nil
}

// APIKey returns the market data API key if one is configured.
func (c *Config) APIKey() optional.Option[string] {
	if c.MarketData.APIKey == "" {
		return optional.None[string]()
	}

	return optional.Some(c.MarketData.APIKey)
}

// GenerateSchemaJSON returns the JSON schema of the configuration file.
func GenerateSchemaJSON() (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "findash-config"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
