package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/findash/internal/types"
)

// DataGenerator generates daily close prices for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how prices are generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "AAPL", "SPY")
	Symbol string
	// StartDate is the date of the first close
	StartDate time.Time
	// Count is the number of trading days to generate
	Count int
	// SkipWeekends leaves Saturdays and Sundays out of the series
	SkipWeekends bool
	// InitialPrice is the first close
	InitialPrice float64
	// Volatility controls daily price movement (0.02 = 2% typical daily move)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per day
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:          500,
		SkipWeekends:   true,
		InitialPrice:   100.0,
		Volatility:     0.02,
		Trend:          0.0,
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates daily price points following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.PricePoint {
	points := make([]types.PricePoint, config.Count)
	price := config.InitialPrice
	date := types.CalendarDate(config.StartDate)

	for i := 0; i < config.Count; i++ {
		if config.SkipWeekends {
			date = nextWeekday(date)
		}

		// Box-Muller transform for a standard normal sample
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		next := price * (1 + config.Volatility*z + drift)
		if next <= 0 {
			next = price * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation

		points[i] = types.PricePoint{
			Date:   date,
			Close:  math.Max(roundToDecimals(next, 4), 0.0001),
			Volume: roundToDecimals(volume, 0),
		}

		price = next
		date = date.AddDate(0, 0, 1)
	}

	return points
}

// GenerateSeries generates prices and wraps them in a validated PriceSeries.
func (g *DataGenerator) GenerateSeries(config GeneratorConfig) types.PriceSeries {
	series, err := types.NewPriceSeries(config.Symbol, g.Generate(config))
	if err != nil {
		panic(err)
	}

	return series
}

// SeriesFromCloses builds a PriceSeries with one close per consecutive calendar day.
func SeriesFromCloses(symbol string, closes ...float64) types.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.PricePoint, len(closes))

	for i, c := range closes {
		points[i] = types.NewPricePoint(start.AddDate(0, 0, i), c, 0)
	}

	series, err := types.NewPriceSeries(symbol, points)
	if err != nil {
		panic(err)
	}

	return series
}

// GoldenCloses is the ten-day fixture used across the strategy tests.
func GoldenCloses() []float64 {
	return []float64{10, 11, 12, 11, 10, 11, 12, 13, 14, 15}
}

func nextWeekday(date time.Time) time.Time {
	for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, 1)
	}

	return date
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
