package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type EMATestSuite struct {
	suite.Suite
}

func TestEMASuite(t *testing.T) {
	suite.Run(t, new(EMATestSuite))
}

func (suite *EMATestSuite) TestSeededWithSimpleAverage() {
	ema := EMA([]float64{1, 2, 3, 4, 5}, 3)

	suite.False(ema.Defined(0))
	suite.False(ema.Defined(1))
	suite.InDelta(2.0, ema.Value(2), 1e-9)
	suite.InDelta(3.0, ema.Value(3), 1e-9)
	suite.InDelta(4.0, ema.Value(4), 1e-9)
}

func (suite *EMATestSuite) TestSmoothingFactor() {
	// alpha = 2/(1+1) = 1 so the EMA tracks the input exactly
	ema := EMA([]float64{4, 8, 2}, 1)
	suite.Equal(4.0, ema.Value(0))
	suite.Equal(8.0, ema.Value(1))
	suite.Equal(2.0, ema.Value(2))

	// alpha = 2/(4+1) = 0.4
	ema = EMA([]float64{10, 10, 10, 10, 20}, 4)
	suite.InDelta(10.0, ema.Value(3), 1e-9)
	suite.InDelta(14.0, ema.Value(4), 1e-9)
}

func (suite *EMATestSuite) TestConstantSeriesStaysConstant() {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 33.3
	}

	ema := EMA(closes, 12)
	for i := 11; i < len(closes); i++ {
		suite.Equal(33.3, ema.Value(i), "index %d", i)
	}
}

func (suite *EMATestSuite) TestPeriodLongerThanSeries() {
	ema := EMA([]float64{1, 2}, 3)
	suite.Equal(0, ema.DefinedCount())
}

func (suite *EMATestSuite) TestEmaFromIgnoresPrefix() {
	ema := emaFrom([]float64{0, 0, 2, 4, 6}, 2, 2)

	suite.Equal(3, ema.FirstDefined())
	suite.InDelta(3.0, ema.Value(3), 1e-9)
	// alpha = 2/3
	suite.InDelta(5.0, ema.Value(4), 1e-9)
}

func (suite *EMATestSuite) TestInvalidPeriod() {
	suite.Equal(0, EMA([]float64{1, 2, 3}, 0).DefinedCount())
}
