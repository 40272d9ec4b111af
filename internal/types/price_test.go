package types

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PriceSeriesTestSuite struct {
	suite.Suite
}

func TestPriceSeriesSuite(t *testing.T) {
	suite.Run(t, new(PriceSeriesTestSuite))
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func (suite *PriceSeriesTestSuite) TestNewPriceSeries() {
	series, err := NewPriceSeries("AAPL", []PricePoint{
		NewPricePoint(day(2), 10, 100),
		NewPricePoint(day(3), 11, 200),
		NewPricePoint(day(4), 12, 0),
	})
	suite.Require().NoError(err)

	suite.Equal("AAPL", series.Symbol())
	suite.Equal(3, series.Len())
	suite.Equal([]float64{10, 11, 12}, series.Closes())
	suite.Equal(day(2), series.First().Date)
	suite.Equal(12.0, series.Last().Close)
	suite.Equal([]time.Time{day(2), day(3), day(4)}, series.Dates())
}

func (suite *PriceSeriesTestSuite) TestNewPriceSeriesTruncatesToCalendarDate() {
	series, err := NewPriceSeries("AAPL", []PricePoint{
		{Date: time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC), Close: 10},
	})
	suite.Require().NoError(err)
	suite.Equal(day(2), series.At(0).Date)
}

func (suite *PriceSeriesTestSuite) TestNewPriceSeriesErrors() {
	tests := []struct {
		name   string
		points []PricePoint
		code   errors.ErrorCode
	}{
		{
			name:   "empty",
			points: nil,
			code:   errors.ErrCodeEmptySeries,
		},
		{
			name:   "zero close",
			points: []PricePoint{{Date: day(2), Close: 0}},
			code:   errors.ErrCodeInvalidPrice,
		},
		{
			name:   "negative close",
			points: []PricePoint{{Date: day(2), Close: 10}, {Date: day(3), Close: -1}},
			code:   errors.ErrCodeInvalidPrice,
		},
		{
			name:   "NaN close",
			points: []PricePoint{{Date: day(2), Close: math.NaN()}},
			code:   errors.ErrCodeInvalidPrice,
		},
		{
			name:   "duplicate date",
			points: []PricePoint{{Date: day(2), Close: 10}, {Date: day(2), Close: 11}},
			code:   errors.ErrCodeUnorderedSeries,
		},
		{
			name:   "decreasing date",
			points: []PricePoint{{Date: day(3), Close: 10}, {Date: day(2), Close: 11}},
			code:   errors.ErrCodeUnorderedSeries,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := NewPriceSeries("AAPL", tt.points)
			suite.Error(err)
			suite.True(errors.HasCode(err, tt.code), "unexpected error: %v", err)
		})
	}
}

func (suite *PriceSeriesTestSuite) TestPointsReturnsCopy() {
	input := []PricePoint{{Date: day(2), Close: 10}}
	series, err := NewPriceSeries("AAPL", input)
	suite.Require().NoError(err)

	input[0].Close = 99
	points := series.Points()
	points[0].Close = 42

	suite.Equal(10.0, series.At(0).Close)
}

func (suite *PriceSeriesTestSuite) TestJSON() {
	series, err := NewPriceSeries("MSFT", []PricePoint{
		{Date: day(2), Close: 10, Volume: 5},
		{Date: day(3), Close: 11},
	})
	suite.Require().NoError(err)

	data, err := json.Marshal(series)
	suite.Require().NoError(err)

	var decoded PriceSeries
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(series, decoded)
}

func (suite *PriceSeriesTestSuite) TestUnmarshalJSONValidates() {
	var decoded PriceSeries
	err := json.Unmarshal([]byte(`{"symbol":"X","points":[]}`), &decoded)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}
