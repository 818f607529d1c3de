package pipeline

import "strings"

// ScheduleManual marks a definition that only runs when explicitly
// instantiated.
const ScheduleManual = "manual"

// Cron expressions for the recognized trigger cadences. All fire at
// 09:00 so scheduled work lands at the start of the business day.
const (
	scheduleWeekly  = "0 9 * * 1"
	scheduleMonthly = "0 9 1 * *"
	scheduleDaily   = "0 9 * * *"
)

// ParseTrigger converts a free-text trigger description into either a
// cron expression or ScheduleManual. Matching is a case-insensitive
// substring check so "Weekly on Mondays" and "runs weekly" both parse.
func ParseTrigger(trigger string) string {
	lower := strings.ToLower(trigger)
	switch {
	case strings.Contains(lower, "weekly"):
		return scheduleWeekly
	case strings.Contains(lower, "monthly"):
		return scheduleMonthly
	case strings.Contains(lower, "daily"):
		return scheduleDaily
	default:
		return ScheduleManual
	}
}
