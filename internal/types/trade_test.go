package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestOpenTrade() {
	trade := NewOpenTrade(day(2), 10)

	suite.True(trade.IsOpen())
	suite.False(trade.IsWinner())
	suite.True(trade.ExitDate.IsNone())
	suite.True(trade.ExitPrice.IsNone())
	suite.True(trade.ReturnPct.IsNone())
}

func (suite *TradeTestSuite) TestClosedTrade() {
	trade := NewClosedTrade(day(2), 10, day(5), 12)

	suite.False(trade.IsOpen())
	suite.True(trade.IsWinner())
	suite.Equal(day(5), trade.ExitDate.Unwrap())
	suite.Equal(12.0, trade.ExitPrice.Unwrap())
	suite.InDelta(20.0, trade.ReturnPct.Unwrap(), 1e-9)
}

func (suite *TradeTestSuite) TestLosingTrade() {
	trade := NewClosedTrade(day(4), 11, day(5), 10)

	suite.False(trade.IsWinner())
	suite.InDelta(-9.0909, trade.ReturnPct.Unwrap(), 1e-4)
}

func (suite *TradeTestSuite) TestBreakEvenIsNotAWin() {
	trade := NewClosedTrade(day(4), 11, day(5), 11)
	suite.False(trade.IsWinner())
}
