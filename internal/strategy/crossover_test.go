package strategy

import (
	"testing"

	"github.com/rxtech-lab/findash/internal/indicator"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/mocks"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CrossoverTestSuite struct {
	suite.Suite
}

func TestCrossoverSuite(t *testing.T) {
	suite.Run(t, new(CrossoverTestSuite))
}

const (
	F = types.PositionFlat
	L = types.PositionLong
)

func (suite *CrossoverTestSuite) TestGolden() {
	closes := mocks.GoldenCloses()
	series := mocks.SeriesFromCloses("GOLD", closes...)

	decision, err := NewCrossover().Generate(series, indicator.SMA(closes, 2), indicator.SMA(closes, 4))
	suite.Require().NoError(err)

	suite.Equal([]types.Position{F, F, F, L, F, F, L, L, L, L}, decision.Positions)
	suite.Require().Len(decision.Signals, 3)

	buy := decision.Signals[0]
	suite.Equal(types.SignalTypeBuyLong, buy.Type)
	suite.Equal(3, buy.Index)
	suite.Equal(11.0, buy.Price)
	suite.Equal(series.At(3).Date, buy.Time)
	suite.Equal("GOLD", buy.Symbol)

	sell := decision.Signals[1]
	suite.Equal(types.SignalTypeSellLong, sell.Type)
	suite.Equal(4, sell.Index)
	suite.Equal(10.0, sell.Price)
	suite.Contains(sell.Reason, "below")

	suite.Equal(types.SignalTypeBuyLong, decision.Signals[2].Type)
	suite.Equal(6, decision.Signals[2].Index)
}

func (suite *CrossoverTestSuite) TestEqualityIsFlat() {
	short := types.NewSeries(3)
	long := types.NewSeries(3)

	short.Set(1, 5)
	long.Set(1, 4)
	short.Set(2, 5)
	long.Set(2, 5)

	suite.Equal([]types.Position{F, L, F}, Positions(short, long))
}

func (suite *CrossoverTestSuite) TestFlatLineNeverGoesLong() {
	tests := []struct {
		price       float64
		short, long int
	}{
		{price: 33.3, short: 20, long: 50},
		{price: 100.1, short: 5, long: 20},
		{price: 0.1, short: 3, long: 7},
		{price: 19.99, short: 2, long: 4},
	}

	for _, tt := range tests {
		closes := make([]float64, 80)
		for i := range closes {
			closes[i] = tt.price
		}

		series := mocks.SeriesFromCloses("FLAT", closes...)

		decision, err := NewCrossover().Generate(series, indicator.SMA(closes, tt.short), indicator.SMA(closes, tt.long))
		suite.Require().NoError(err)
		suite.Empty(decision.Signals, "close %v windows %d/%d", tt.price, tt.short, tt.long)

		for i, position := range decision.Positions {
			suite.Equal(F, position, "close %v windows %d/%d index %d", tt.price, tt.short, tt.long, i)
		}
	}
}

func (suite *CrossoverTestSuite) TestNeverLongWhileUndefined() {
	config := mocks.DefaultConfig()
	config.Count = 300
	closes := mocks.NewDataGenerator(17).GenerateSeries(config).Closes()

	short := indicator.SMA(closes, 10)
	long := indicator.SMA(closes, 30)

	for i, p := range Positions(short, long) {
		if !short.Defined(i) || !long.Defined(i) {
			suite.Equal(F, p, "index %d", i)
		}
	}
}

func (suite *CrossoverTestSuite) TestSignalsAlternate() {
	config := mocks.DefaultConfig()
	config.Count = 400
	config.Volatility = 0.04
	series := mocks.NewDataGenerator(23).GenerateSeries(config)
	closes := series.Closes()

	decision, err := NewCrossover().Generate(series, indicator.SMA(closes, 5), indicator.SMA(closes, 20))
	suite.Require().NoError(err)
	suite.NotEmpty(decision.Signals)

	for i, s := range decision.Signals {
		if i%2 == 0 {
			suite.Equal(types.SignalTypeBuyLong, s.Type)
		} else {
			suite.Equal(types.SignalTypeSellLong, s.Type)
		}

		if i > 0 {
			suite.Greater(s.Index, decision.Signals[i-1].Index)
		}
	}
}

func (suite *CrossoverTestSuite) TestMonotonicSeriesHasSingleBuy() {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	series := mocks.SeriesFromCloses("UP", closes...)

	decision, err := NewCrossover().Generate(series, indicator.SMA(closes, 3), indicator.SMA(closes, 6))
	suite.Require().NoError(err)
	suite.Require().Len(decision.Signals, 1)
	suite.Equal(types.SignalTypeBuyLong, decision.Signals[0].Type)
	suite.Equal(5, decision.Signals[0].Index)
}

func (suite *CrossoverTestSuite) TestLengthMismatch() {
	series := mocks.SeriesFromCloses("GOLD", mocks.GoldenCloses()...)

	_, err := NewCrossover().Generate(series, types.NewSeries(10), types.NewSeries(9))
	suite.True(errors.HasCode(err, errors.ErrCodeLengthMismatch))
}

func (suite *CrossoverTestSuite) TestName() {
	suite.Equal("sma_crossover", NewCrossover().Name())
}
