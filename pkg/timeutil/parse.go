// Package timeutil provides shared time parsing utilities.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Pre-compiled regex for parsing relative time formats (e.g., "2h", "30m", "7d")
var relativeTimeRe = regexp.MustCompile(`^(\d+)([smhdw])$`)

// LocalLayout is the wall-clock layout accepted besides RFC3339.
const LocalLayout = "2006-01-02 15:04:05"

// ParseAt parses a time string that can be RFC3339, a wall clock time or a
// relative duration like "2h", "30m", or "7d" counted back from now. Wall
// clock times are read in now's location.
//
// Examples:
//   - "now" or "" -> now
//   - "90s" -> 90 seconds ago
//   - "2h" -> 2 hours ago
//   - "7d" -> 7 days ago
//   - "2w" -> 2 weeks ago
//   - "2025-12-02T06:00:00Z" -> specific RFC3339 time
//   - "2025-12-02 06:00:00" -> wall clock time
func ParseAt(input string, now time.Time) (time.Time, error) {
	if input == "" || input == "now" {
		return now, nil
	}

	// Try RFC3339 first
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(LocalLayout, input, now.Location()); err == nil {
		return t, nil
	}

	// Parse relative (e.g., "2h", "30m", "7d") using pre-compiled regex
	matches := relativeTimeRe.FindStringSubmatch(input)
	if matches != nil {
		value, _ := strconv.Atoi(matches[1])
		unit := matches[2]
		var duration time.Duration
		switch unit {
		case "s":
			duration = time.Duration(value) * time.Second
		case "m":
			duration = time.Duration(value) * time.Minute
		case "h":
			duration = time.Duration(value) * time.Hour
		case "d":
			duration = time.Duration(value) * 24 * time.Hour
		case "w":
			duration = time.Duration(value) * 7 * 24 * time.Hour
		}
		return now.Add(-duration), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %s - use RFC3339 (2025-12-02T06:00:00Z), wall clock (2025-12-02 06:00:00) or relative (2h, 30m, 7d)", input)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%.1fd", d.Hours()/24)
}

// TimeRangeWarning represents a validation warning for a time range.
type TimeRangeWarning struct {
	Message string
	Level   string // "warning" or "info"
}

// ValidateTimeRange checks a time range for potential issues and returns warnings.
// This helps catch user mistakes without blocking the operation.
func ValidateTimeRange(start, end time.Time) []TimeRangeWarning {
	var warnings []TimeRangeWarning
	now := time.Now()

	// Check if end time is significantly in the future (more than 1 minute)
	// This could indicate a typo in the year or other mistake
	if end.After(now.Add(time.Minute)) {
		futureBy := end.Sub(now)
		warnings = append(warnings, TimeRangeWarning{
			Message: fmt.Sprintf("end time is %s in the future - is this intentional?", FormatDuration(futureBy)),
			Level:   "warning",
		})
	}

	// Check if start time is in the future
	if start.After(now.Add(time.Minute)) {
		warnings = append(warnings, TimeRangeWarning{
			Message: "start time is in the future - no results will be returned",
			Level:   "warning",
		})
	}

	// Check for very large time ranges (more than 30 days)
	duration := end.Sub(start)
	if duration > 30*24*time.Hour {
		warnings = append(warnings, TimeRangeWarning{
			Message: fmt.Sprintf("searching %s of data - the job may take a long time to finish", FormatDuration(duration)),
			Level:   "info",
		})
	}

	if !end.After(start) {
		warnings = append(warnings, TimeRangeWarning{
			Message: "end time is not after start time - the search window is empty",
			Level:   "warning",
		})
	}

	// Check for very short time ranges that might miss data
	if duration < time.Minute && duration > 0 {
		warnings = append(warnings, TimeRangeWarning{
			Message: fmt.Sprintf("time range is only %s - you may miss relevant logs", FormatDuration(duration)),
			Level:   "info",
		})
	}

	return warnings
}

// Millis returns t as milliseconds since the Unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts milliseconds since the Unix epoch to a time in loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc)
}
