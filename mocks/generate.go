package mocks

//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/findash/internal/indicator Indicator
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/findash/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_cache.go -package=mocks github.com/rxtech-lab/findash/internal/cache Cache
//go:generate mockgen -destination=./mock_series_source.go -package=mocks github.com/rxtech-lab/findash/internal/api SeriesSource
