package summarize

import (
	"time"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
)

// Window returns the rolling window duration for a summary period
func Window(period models.SummaryPeriod) time.Duration {
	switch period {
	case models.PeriodShort:
		return time.Hour
	case models.PeriodMedium:
		return 12 * time.Hour
	case models.PeriodLong:
		return 24 * time.Hour
	}
	return time.Hour
}

// instruction returns the per-period system instruction for the model
func instruction(period models.SummaryPeriod) string {
	switch period {
	case models.PeriodShort:
		return "Briefly summarize the key points of the tracked accounts' activity over the last hour."
	case models.PeriodMedium:
		return "Summarize the main activity and trends from the tracked accounts over the last 12 hours, including notable interactions."
	case models.PeriodLong:
		return "Summarize the tracked accounts' activity over the last 24 hours and analyze how the main topics developed."
	}
	return "Summarize the following activity."
}

// AllPeriods lists every summary period, shortest window first
var AllPeriods = []models.SummaryPeriod{
	models.PeriodShort,
	models.PeriodMedium,
	models.PeriodLong,
}
