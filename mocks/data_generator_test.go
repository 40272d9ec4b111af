package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSkipsWeekendsAndStaysPositive(t *testing.T) {
	config := DefaultConfig()
	config.Count = 100

	points := NewDataGenerator(42).Generate(config)
	require.Len(t, points, 100)

	for i, p := range points {
		assert.Greater(t, p.Close, 0.0, "close at %d", i)
		assert.NotEqual(t, time.Saturday, p.Date.Weekday(), "index %d", i)
		assert.NotEqual(t, time.Sunday, p.Date.Weekday(), "index %d", i)
		if i > 0 {
			assert.True(t, p.Date.After(points[i-1].Date), "index %d out of order", i)
		}
	}
}

func TestGenerateCalendarDays(t *testing.T) {
	config := DefaultConfig()
	config.Count = 14
	config.SkipWeekends = false

	points := NewDataGenerator(1).Generate(config)
	require.Len(t, points, 14)
	assert.Equal(t, config.StartDate, points[0].Date)
	assert.Equal(t, 24*time.Hour, points[6].Date.Sub(points[5].Date))
}

func TestGenerateSeeds(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	closes := func(seed int64) []float64 {
		out := make([]float64, 0, config.Count)
		for _, p := range NewDataGenerator(seed).Generate(config) {
			out = append(out, p.Close)
		}
		return out
	}

	assert.Equal(t, closes(42), closes(42), "same seed must reproduce closes")
	assert.NotEqual(t, closes(42), closes(123), "different seeds must diverge")
}

func TestGenerateSeries(t *testing.T) {
	config := DefaultConfig()
	config.Symbol = "AAPL"
	config.Count = 250

	series := NewDataGenerator(7).GenerateSeries(config)
	assert.Equal(t, 250, series.Len())
	assert.Equal(t, "AAPL", series.Symbol())
}

func TestSeriesFromCloses(t *testing.T) {
	series := SeriesFromCloses("GOLD", GoldenCloses()...)

	require.Equal(t, 10, series.Len())
	assert.Equal(t, 15.0, series.Last().Close)
	assert.Equal(t, 24*time.Hour, series.At(1).Date.Sub(series.At(0).Date))
}
