// Package dates provides the calendar helpers shared by the simulator,
// normalizers and aggregation layer. All dates are ISO "2006-01-02" strings
// anchored in UTC so cache keys and timeline comparisons are stable.
package dates

import (
	"strings"
	"time"
)

// ISOLayout is the calendar-date layout used across the timeline.
const ISOLayout = "2006-01-02"

// Offset returns the ISO date offset days away from now's calendar date.
func Offset(now time.Time, offset int) string {
	return now.UTC().AddDate(0, 0, offset).Format(ISOLayout)
}

// DayOfWeek returns the short uppercase weekday label for an ISO date,
// e.g. "MON". Unparseable dates yield an empty string.
func DayOfWeek(dateStr string) string {
	d, err := time.Parse(ISOLayout, dateStr)
	if err != nil {
		return ""
	}
	return strings.ToUpper(d.Weekday().String()[:3])
}

// Label returns the human date label for an ISO date relative to now:
// "Today", "Tomorrow", "Yesterday", or the full weekday name.
func Label(now time.Time, dateStr string) string {
	d, err := time.Parse(ISOLayout, dateStr)
	if err != nil {
		return dateStr
	}

	today, _ := time.Parse(ISOLayout, now.UTC().Format(ISOLayout))
	diff := int(d.Sub(today).Hours() / 24)

	switch diff {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}
	return d.Weekday().String()
}
