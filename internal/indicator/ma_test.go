package indicator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/mocks"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	"github.com/stretchr/testify/suite"
)

type MATestSuite struct {
	suite.Suite
}

func TestMASuite(t *testing.T) {
	suite.Run(t, new(MATestSuite))
}

func (suite *MATestSuite) assertSeries(expected []any, actual types.Series) {
	suite.Require().Len(actual, len(expected))

	for i, e := range expected {
		if e == nil {
			suite.False(actual.Defined(i), "index %d should be undefined", i)

			continue
		}

		suite.True(actual.Defined(i), "index %d should be defined", i)
		suite.InDelta(e.(float64), actual.Value(i), 1e-9, "index %d", i)
	}
}

func (suite *MATestSuite) TestSMAGolden() {
	closes := mocks.GoldenCloses()

	suite.assertSeries([]any{nil, 10.5, 11.5, 11.5, 10.5, 10.5, 11.5, 12.5, 13.5, 14.5}, SMA(closes, 2))
	suite.assertSeries([]any{nil, nil, nil, 11.0, 11.0, 11.0, 11.0, 11.5, 12.5, 13.5}, SMA(closes, 4))
}

func (suite *MATestSuite) TestSMAWindowOne() {
	closes := []float64{3, 4, 5}
	suite.assertSeries([]any{3.0, 4.0, 5.0}, SMA(closes, 1))
}

func (suite *MATestSuite) TestSMAWindowLongerThanSeries() {
	sma := SMA([]float64{1, 2}, 3)
	suite.Len(sma, 2)
	suite.Equal(0, sma.DefinedCount())
}

func (suite *MATestSuite) TestSMADefinedFromWindowMinusOne() {
	config := mocks.DefaultConfig()
	config.Count = 200
	closes := mocks.NewDataGenerator(1).GenerateSeries(config).Closes()

	for _, window := range []int{1, 5, 20, 50, 100} {
		sma := SMA(closes, window)
		suite.Equal(window-1, sma.FirstDefined(), "window %d", window)
		suite.Equal(len(closes)-window+1, sma.DefinedCount(), "window %d", window)
	}
}

// techan is an independent implementation of the same average.
func (suite *MATestSuite) TestSMAMatchesTechan() {
	config := mocks.DefaultConfig()
	config.Count = 120
	points := mocks.NewDataGenerator(99).Generate(config)

	timeSeries := techan.NewTimeSeries()
	closes := make([]float64, len(points))

	for i, p := range points {
		candle := techan.NewCandle(techan.NewTimePeriod(p.Date, 24*time.Hour))
		candle.ClosePrice = big.NewDecimal(p.Close)
		suite.Require().True(timeSeries.AddCandle(candle))

		closes[i] = p.Close
	}

	for _, window := range []int{3, 10, 30} {
		oracle := techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(timeSeries), window)
		sma := SMA(closes, window)

		for i := window - 1; i < len(closes); i++ {
			suite.InDelta(oracle.Calculate(i).Float(), sma.Value(i), 1e-6, "window %d index %d", window, i)
		}
	}
}

func (suite *MATestSuite) TestNewMA() {
	ma := NewMA()
	maImpl := ma.(*MA)

	suite.Equal(types.IndicatorTypeMA, ma.Name())
	suite.Equal(20, maImpl.shortPeriod)
	suite.Equal(50, maImpl.longPeriod)
	suite.Equal(50, ma.MinLength())
}

func (suite *MATestSuite) TestConfig() {
	ma := NewMA()
	maImpl := ma.(*MA)

	suite.NoError(ma.Config(2, 4))
	suite.Equal(2, maImpl.shortPeriod)
	suite.Equal(4, maImpl.longPeriod)

	suite.NoError(ma.Config(5.0, 10.0))
	suite.Equal(5, maImpl.shortPeriod)
	suite.Equal(10, maImpl.longPeriod)
}

func (suite *MATestSuite) TestConfigErrors() {
	tests := []struct {
		name   string
		params []any
	}{
		{name: "no parameters", params: nil},
		{name: "one parameter", params: []any{5}},
		{name: "zero short", params: []any{0, 4}},
		{name: "negative long", params: []any{2, -4}},
		{name: "short equals long", params: []any{4, 4}},
		{name: "short above long", params: []any{5, 4}},
		{name: "wrong type", params: []any{"2", 4}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := NewMA().Config(tt.params...)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
		})
	}
}

func (suite *MATestSuite) TestCompute() {
	ma := NewMA()
	suite.Require().NoError(ma.Config(2, 4))

	var set types.IndicatorSet
	suite.Require().NoError(ma.Compute(mocks.GoldenCloses(), &set))

	suite.Equal(1, set.SMAShort.FirstDefined())
	suite.Equal(3, set.SMALong.FirstDefined())
	suite.Nil(set.RSI)
}
