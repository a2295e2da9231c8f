package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Window is a named search time range.
type Window struct {
	Name string
	From time.Time
	To   time.Time
}

// FromMillis returns the start of the window in epoch milliseconds.
func (w Window) FromMillis() int64 { return Millis(w.From) }

// ToMillis returns the end of the window in epoch milliseconds.
func (w Window) ToMillis() int64 { return Millis(w.To) }

type windowFunc func(now time.Time) (from, to time.Time)

func last(d time.Duration) windowFunc {
	return func(now time.Time) (time.Time, time.Time) { return now.Add(-d), now }
}

func lastDays(n int) windowFunc {
	return func(now time.Time) (time.Time, time.Time) { return now.AddDate(0, 0, -n), now }
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay is the last representable instant of t's day.
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Microsecond)
}

var windows = []struct {
	name string
	fn   windowFunc
}{
	{"Last 60 Seconds", last(60 * time.Second)},
	{"Last 5 Minutes", last(5 * time.Minute)},
	{"Last 10 Minutes", last(10 * time.Minute)},
	{"Last 15 Minutes", last(15 * time.Minute)},
	{"Last 60 Minutes", last(60 * time.Minute)},
	{"Last 3 Hours", last(3 * time.Hour)},
	{"Last 6 Hours", last(6 * time.Hour)},
	{"Last 24 Hours", last(24 * time.Hour)},
	{"Today", func(now time.Time) (time.Time, time.Time) {
		return startOfDay(now), endOfDay(now)
	}},
	{"Yesterday", func(now time.Time) (time.Time, time.Time) {
		y := now.AddDate(0, 0, -1)
		return startOfDay(y), endOfDay(y)
	}},
	{"Last 3 Days", lastDays(3)},
	{"Last 7 Days", lastDays(7)},
	{"This Week", func(now time.Time) (time.Time, time.Time) {
		// Weeks start on Monday.
		back := (int(now.Weekday()) + 6) % 7
		return startOfDay(now.AddDate(0, 0, -back)), now
	}},
	{"Last 14 Days", lastDays(14)},
	{"Last 30 Days", lastDays(30)},
	{"This Month", func(now time.Time) (time.Time, time.Time) {
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), now
	}},
	{"Previous Month", func(now time.Time) (time.Time, time.Time) {
		y, m, _ := now.Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		return first.AddDate(0, -1, 0), endOfDay(first.AddDate(0, 0, -1))
	}},
}

// WindowNames lists the named windows in menu order.
func WindowNames() []string {
	names := make([]string, len(windows))
	for i, w := range windows {
		names[i] = w.name
	}
	return names
}

// normalizeWindow folds "last-15-minutes" and "LAST 15 MINUTES" together.
func normalizeWindow(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(name))
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ResolveWindow computes the named window relative to now. Calendar
// windows use now's location.
func ResolveWindow(name string, now time.Time) (Window, error) {
	want := normalizeWindow(name)
	for _, w := range windows {
		if normalizeWindow(w.name) == want {
			from, to := w.fn(now)
			return Window{Name: w.name, From: from, To: to}, nil
		}
	}
	return Window{}, fmt.Errorf("unknown time window %q", name)
}

// LoadLocation resolves a timezone name. An empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
