package types

import (
	"testing"
	"time"

	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsToSeries(t *testing.T) {
	at := func(d, h int) time.Time {
		return time.Date(2024, time.January, d, h, 0, 0, 0, time.UTC)
	}

	bars := []Bar{
		{Symbol: "AAPL", Time: at(3, 0), Close: 12, Volume: 30},
		{Symbol: "AAPL", Time: at(1, 16), Close: 10.5, Volume: 5},
		{Symbol: "AAPL", Time: at(1, 10), Close: 10, Volume: 5},
		{Symbol: "AAPL", Time: at(2, 0), Close: 11, Volume: 20},
	}

	series, err := BarsToSeries("AAPL", bars)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", series.Symbol())
	assert.Equal(t, []float64{10.5, 11, 12}, series.Closes())
	assert.Equal(t, 10.0, series.At(0).Volume)
	assert.Equal(t, at(1, 0), series.At(0).Date)
	// input is left untouched
	assert.Equal(t, at(3, 0), bars[0].Time)
}

func TestBarsToSeriesErrors(t *testing.T) {
	_, err := BarsToSeries("AAPL", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptySeries))

	_, err = BarsToSeries("AAPL", []Bar{{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 0}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidPrice))
}
