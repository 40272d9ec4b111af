package marketdata

import (
	"testing"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/findash/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TimespanTestSuite struct {
	suite.Suite
}

func TestTimespanSuite(t *testing.T) {
	suite.Run(t, new(TimespanTestSuite))
}

func (suite *TimespanTestSuite) TestUnits() {
	tests := []struct {
		timespan   Timespan
		multiplier int
		unit       models.Timespan
	}{
		{TimespanOneMinute, 1, models.Minute},
		{TimespanFiveMinutes, 5, models.Minute},
		{TimespanFifteenMinutes, 15, models.Minute},
		{TimespanThirtyMinutes, 30, models.Minute},
		{TimespanOneHour, 1, models.Hour},
		{TimespanFourHours, 4, models.Hour},
		{TimespanOneDay, 1, models.Day},
		{TimespanOneWeek, 1, models.Week},
		{TimespanOneMonth, 1, models.Month},
	}

	for _, tc := range tests {
		suite.Run(string(tc.timespan), func() {
			suite.Equal(tc.multiplier, tc.timespan.Multiplier())
			suite.Equal(tc.unit, tc.timespan.Timespan())
		})
	}
}

func (suite *TimespanTestSuite) TestUnknownTimespanDefaults() {
	unknown := Timespan("7y")
	suite.Equal(1, unknown.Multiplier())
	suite.Equal(models.Day, unknown.Timespan())
}

func (suite *TimespanTestSuite) TestParseTimespan() {
	t, err := ParseTimespan("15m")
	suite.NoError(err)
	suite.Equal(TimespanFifteenMinutes, t)

	_, err = ParseTimespan("1D")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = ParseTimespan("")
	suite.Error(err)
}
