// Package analytics provides event metadata capture and the aggregation engine
// behind the analytics dashboard.
package analytics

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxWindowDays caps the length of any aggregation window.
	MaxWindowDays = 90

	dateLayout = "2006-01-02"
)

// Named ranges accepted by ParseRange.
const (
	Range7d  = "7d"
	Range30d = "30d"
	Range90d = "90d"
)

// ErrInvalidWindow is returned for unparseable or inverted windows.
var ErrInvalidWindow = errors.New("invalid analytics window")

// Window is a bounded range of whole UTC days ending on the day of End.
// Start is midnight UTC of the first day; End is the read cutoff.
type Window struct {
	Start time.Time
	End   time.Time
	Days  int
}

// NewWindow returns a window of days calendar days whose last day is the day of now.
func NewWindow(days int, now time.Time) Window {
	if days < 0 {
		days = 0
	}
	if days > MaxWindowDays {
		days = MaxWindowDays
	}
	today := truncateDay(now)
	return Window{
		Start: today.AddDate(0, 0, -days+1),
		End:   now.UTC(),
		Days:  days,
	}
}

// ParseRange converts a named range ("7d", "30d", "90d") into a window ending now.
func ParseRange(name string, now time.Time) (Window, error) {
	switch name {
	case "", Range7d:
		return NewWindow(7, now), nil
	case Range30d:
		return NewWindow(30, now), nil
	case Range90d:
		return NewWindow(90, now), nil
	default:
		return Window{}, fmt.Errorf("%w: unknown range %q", ErrInvalidWindow, name)
	}
}

// ParseDates builds a window from inclusive ISO dates. The end date is
// clamped to now and the window is capped to MaxWindowDays.
func ParseDates(from, to string, now time.Time) (Window, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return Window{}, fmt.Errorf("%w: from: %v", ErrInvalidWindow, err)
	}
	last, err := time.Parse(dateLayout, to)
	if err != nil {
		return Window{}, fmt.Errorf("%w: to: %v", ErrInvalidWindow, err)
	}
	if last.Before(start) {
		return Window{}, fmt.Errorf("%w: to is before from", ErrInvalidWindow)
	}

	today := truncateDay(now)
	end := last.Add(24*time.Hour - time.Nanosecond)
	if !last.Before(today) {
		last = today
		end = now.UTC()
	}
	if last.Before(start) {
		return Window{}, fmt.Errorf("%w: window starts in the future", ErrInvalidWindow)
	}

	days := int(last.Sub(start).Hours()/24) + 1
	if days > MaxWindowDays {
		days = MaxWindowDays
		start = last.AddDate(0, 0, -days+1)
	}

	return Window{Start: start, End: end, Days: days}, nil
}

// Previous returns the window of equal length immediately before w.
func (w Window) Previous() Window {
	return Window{
		Start: w.Start.AddDate(0, 0, -w.Days),
		End:   w.Start.Add(-time.Nanosecond),
		Days:  w.Days,
	}
}

// LastDay returns midnight UTC of the window's final day.
func (w Window) LastDay() time.Time {
	return w.Start.AddDate(0, 0, w.Days-1)
}

// Key identifies the window for stale-response detection.
func (w Window) Key() string {
	return fmt.Sprintf("%s/%d", w.Start.Format(dateLayout), w.Days)
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
