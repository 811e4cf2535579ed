package routing

import (
	"fmt"
	"math"
)

// FormatDuration renders a duration in hours as a human-readable
// string: "45 min", "2 hr 15 min", "1 day 3 hr".
func FormatDuration(hours float64) string {
	if hours < 0 {
		hours = 0
	}

	totalMinutes := int(math.Round(hours * 60))
	days := totalMinutes / (24 * 60)
	totalMinutes -= days * 24 * 60
	hrs := totalMinutes / 60
	mins := totalMinutes % 60

	dayUnit := "day"
	if days > 1 {
		dayUnit = "days"
	}

	switch {
	case days > 0 && hrs > 0:
		return fmt.Sprintf("%d %s %d hr", days, dayUnit, hrs)
	case days > 0:
		return fmt.Sprintf("%d %s", days, dayUnit)
	case hrs > 0 && mins > 0:
		return fmt.Sprintf("%d hr %d min", hrs, mins)
	case hrs > 0:
		return fmt.Sprintf("%d hr", hrs)
	default:
		return fmt.Sprintf("%d min", mins)
	}
}

// FormatDriveTime renders a duration in hours compactly for result
// rows: "45min", "2h", "2h 15min".
func FormatDriveTime(hours float64) string {
	if hours < 0 {
		hours = 0
	}

	totalMinutes := int(math.Round(hours * 60))
	hrs := totalMinutes / 60
	mins := totalMinutes % 60

	switch {
	case hrs > 0 && mins > 0:
		return fmt.Sprintf("%dh %dmin", hrs, mins)
	case hrs > 0:
		return fmt.Sprintf("%dh", hrs)
	default:
		return fmt.Sprintf("%dmin", mins)
	}
}
