package types

type IndicatorType string

const (
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
)

// IndicatorSet holds every indicator column computed for one request.
// All columns have the same length as the PriceSeries they were computed from.
type IndicatorSet struct {
	SMAShort Series
	SMALong  Series

	RSI Series

	MACD          Series
	MACDSignal    Series
	MACDHistogram Series

	BollingerUpper  Series
	BollingerMiddle Series
	BollingerLower  Series
}
