package marketdata

import (
	"os"
	"slices"

	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/rxtech-lab/findash/pkg/marketdata/provider"
	"github.com/rxtech-lab/findash/pkg/utils"
)

// ProviderInfo describes a market data source the download command can use.
type ProviderInfo struct {
	Name        provider.ProviderType `json:"name"`
	DisplayName string                `json:"display_name"`
	Description string                `json:"description"`
	// APIKeyEnv names the environment variable read when no key is configured.
	// Empty for sources that need no key.
	APIKeyEnv string `json:"api_key_env,omitempty"`
}

// RequiresAuth reports whether the source needs an API key.
func (p ProviderInfo) RequiresAuth() bool {
	return p.APIKeyEnv != ""
}

// Kept sorted by name.
var providerCatalog = []ProviderInfo{
	{
		Name:        provider.ProviderBinance,
		DisplayName: "Binance",
		Description: "Cryptocurrency klines from the public Binance API",
	},
	{
		Name:        provider.ProviderPolygon,
		DisplayName: "Polygon.io",
		Description: "US equity aggregates",
		APIKeyEnv:   "POLYGON_API_KEY",
	},
}

// GetSupportedProviders returns the provider names in alphabetical order.
func GetSupportedProviders() []string {
	names := make([]string, len(providerCatalog))
	for i, info := range providerCatalog {
		names[i] = string(info.Name)
	}

	return names
}

// GetProviderInfo looks up a provider by name.
func GetProviderInfo(name provider.ProviderType) (ProviderInfo, error) {
	idx := slices.IndexFunc(providerCatalog, func(info ProviderInfo) bool { return info.Name == name })
	if idx < 0 {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", name)
	}

	return providerCatalog[idx], nil
}

// ApplyProviderDefaults fills an empty API key from the provider's
// environment variable.
func ApplyProviderDefaults(cfg *DownloadConfig) error {
	info, err := GetProviderInfo(cfg.Provider)
	if err != nil {
		return err
	}

	if cfg.APIKey == "" && info.RequiresAuth() {
		cfg.APIKey = os.Getenv(info.APIKeyEnv)
	}

	return nil
}

// GetDownloadConfigSchema returns the JSON schema of DownloadConfig.
func GetDownloadConfigSchema() (string, error) {
	//nolint:exhaustruct // empty struct is intentional for schema generation
	return utils.ToJSONSchema(DownloadConfig{})
}
