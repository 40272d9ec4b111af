package types

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StrategyParamsTestSuite struct {
	suite.Suite
}

func TestStrategyParamsSuite(t *testing.T) {
	suite.Run(t, new(StrategyParamsTestSuite))
}

func (suite *StrategyParamsTestSuite) TestDefaults() {
	p := DefaultStrategyParams()

	suite.Equal(20, p.SMAShortWindow)
	suite.Equal(50, p.SMALongWindow)
	suite.Equal(14, p.RSIWindow)
	suite.Equal(12, p.MACDFast)
	suite.Equal(26, p.MACDSlow)
	suite.Equal(9, p.MACDSignal)
	suite.Equal(20, p.BollingerWindow)
	suite.Equal(2.0, p.BollingerStdMult)
	suite.True(p.CountOpenTrades)
	suite.NoError(p.Validate())
	suite.Equal(50, p.MaxWindow())
}

func (suite *StrategyParamsTestSuite) TestValidate() {
	tests := []struct {
		name     string
		mutate   func(p *StrategyParams)
		contains string
	}{
		{
			name:     "zero short window",
			mutate:   func(p *StrategyParams) { p.SMAShortWindow = 0 },
			contains: "sma_short_window",
		},
		{
			name:     "short equals long",
			mutate:   func(p *StrategyParams) { p.SMAShortWindow = 50 },
			contains: "sma_long_window must be greater than sma_short_window",
		},
		{
			name:     "short above long",
			mutate:   func(p *StrategyParams) { p.SMAShortWindow = 60 },
			contains: "sma_long_window",
		},
		{
			name:     "negative rsi window",
			mutate:   func(p *StrategyParams) { p.RSIWindow = -1 },
			contains: "rsi_window",
		},
		{
			name:     "fast not below slow",
			mutate:   func(p *StrategyParams) { p.MACDFast = 26 },
			contains: "macd_slow",
		},
		{
			name:     "zero signal",
			mutate:   func(p *StrategyParams) { p.MACDSignal = 0 },
			contains: "macd_signal",
		},
		{
			name:     "zero bollinger window",
			mutate:   func(p *StrategyParams) { p.BollingerWindow = 0 },
			contains: "bollinger_window",
		},
		{
			name:     "zero multiplier",
			mutate:   func(p *StrategyParams) { p.BollingerStdMult = 0 },
			contains: "bollinger_std_mult",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			p := DefaultStrategyParams()
			tt.mutate(&p)

			err := p.Validate()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
			suite.Contains(err.Error(), tt.contains)
		})
	}
}

func (suite *StrategyParamsTestSuite) TestMaxWindow() {
	p := StrategyParams{SMAShortWindow: 2, SMALongWindow: 4, RSIWindow: 3, MACDFast: 2, MACDSlow: 4, MACDSignal: 3, BollingerWindow: 3}
	suite.Equal(6, p.MaxWindow())
}

func (suite *StrategyParamsTestSuite) TestDecodeKeepsDefaults() {
	p := DefaultStrategyParams()
	suite.Require().NoError(yaml.Unmarshal([]byte("sma_short_window: 5\nsma_long_window: 10\n"), &p))

	suite.Equal(5, p.SMAShortWindow)
	suite.Equal(10, p.SMALongWindow)
	suite.Equal(14, p.RSIWindow)
	suite.Equal(2.0, p.BollingerStdMult)
}

func (suite *StrategyParamsTestSuite) TestGenerateSchemaJSON() {
	p := StrategyParams{}
	schemaJSON, err := p.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &schema))
	suite.Equal("strategy-params", schema["title"])

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "sma_short_window")
	suite.Contains(properties, "bollinger_std_mult")
	suite.Contains(properties, "count_open_trades")
}
