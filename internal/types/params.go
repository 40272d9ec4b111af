package types

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// StrategyParams configures the crossover strategy and its supporting indicators.
// Start from DefaultStrategyParams and override what is needed; decoding YAML or
// JSON into the defaults keeps every field that the document omits.
type StrategyParams struct {
	SMAShortWindow   int     `yaml:"sma_short_window" json:"sma_short_window" validate:"gt=0" jsonschema:"title=Short SMA Window,description=Window of the fast simple moving average,minimum=1,default=20"`
	SMALongWindow    int     `yaml:"sma_long_window" json:"sma_long_window" validate:"gt=0,gtfield=SMAShortWindow" jsonschema:"title=Long SMA Window,description=Window of the slow simple moving average. Must be greater than the short window,minimum=2,default=50"`
	RSIWindow        int     `yaml:"rsi_window" json:"rsi_window" validate:"gt=0" jsonschema:"title=RSI Window,description=Wilder smoothing window of the RSI,minimum=1,default=14"`
	MACDFast         int     `yaml:"macd_fast" json:"macd_fast" validate:"gt=0" jsonschema:"title=MACD Fast,description=Fast EMA window,minimum=1,default=12"`
	MACDSlow         int     `yaml:"macd_slow" json:"macd_slow" validate:"gt=0,gtfield=MACDFast" jsonschema:"title=MACD Slow,description=Slow EMA window. Must be greater than the fast window,minimum=2,default=26"`
	MACDSignal       int     `yaml:"macd_signal" json:"macd_signal" validate:"gt=0" jsonschema:"title=MACD Signal,description=EMA window of the signal line,minimum=1,default=9"`
	BollingerWindow  int     `yaml:"bollinger_window" json:"bollinger_window" validate:"gt=0" jsonschema:"title=Bollinger Window,description=Window of the middle band and the standard deviation,minimum=1,default=20"`
	BollingerStdMult float64 `yaml:"bollinger_std_mult" json:"bollinger_std_mult" validate:"gt=0" jsonschema:"title=Bollinger Multiplier,description=Number of standard deviations between the middle and outer bands,exclusiveMinimum=0,default=2"`
	// CountOpenTrades includes a trade still open at the end of the series in trade_count.
	CountOpenTrades bool `yaml:"count_open_trades" json:"count_open_trades" jsonschema:"title=Count Open Trades,description=Include a trade still open at the end of the series in trade_count,default=true"`
}

// DefaultStrategyParams returns the documented defaults.
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		SMAShortWindow:   20,
		SMALongWindow:    50,
		RSIWindow:        14,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		BollingerWindow:  20,
		BollingerStdMult: 2.0,
		CountOpenTrades:  true,
	}
}

// Validate checks every window and multiplier. The returned error carries
// ErrCodeInvalidParameter and names the offending field by its JSON name.
func (p StrategyParams) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid strategy parameters", err)
	}

	fe := fieldErrors[0]

	switch fe.Tag() {
	case "gtfield":
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s must be greater than %s, got %v",
			fe.Field(), paramJSONName(fe.Param()), fe.Value())
	case "gt":
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s must be greater than %s, got %v",
			fe.Field(), fe.Param(), fe.Value())
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s failed the %q constraint", fe.Field(), fe.Tag())
	}
}

// MaxWindow returns the longest history any configured indicator needs.
func (p StrategyParams) MaxWindow() int {
	return max(p.SMALongWindow, p.RSIWindow+1, p.MACDSlow+p.MACDSignal-1, p.BollingerWindow)
}

// GenerateSchema generates a JSON schema for StrategyParams.
func (p *StrategyParams) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(p)
	schema.Title = "strategy-params"
	schema.Description = "Parameters of the moving-average crossover backtest"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates the JSON schema as an indented string.
func (p *StrategyParams) GenerateSchemaJSON() (string, error) {
	schema, err := p.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}

	return name
}

func paramJSONName(goName string) string {
	field, ok := reflect.TypeOf(StrategyParams{}).FieldByName(goName)
	if !ok {
		return goName
	}

	return jsonFieldName(field)
}
