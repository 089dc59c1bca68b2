package mealtime

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	Breakfast Category = "Breakfast"
	Lunch     Category = "Lunch"
	Dinner    Category = "Dinner"
	Snack     Category = "Snack"
)

// Window is a half-open local-time interval [Start, End) in minutes since
// midnight. End <= Start means the window wraps past midnight.
type Window struct {
	Start int
	End   int
}

func (w Window) wraps() bool { return w.End <= w.Start }

// Contains reports whether a minute-of-day falls inside the window.
func (w Window) Contains(minute int) bool {
	if w.wraps() {
		return minute >= w.Start || minute < w.End
	}
	return minute >= w.Start && minute < w.End
}

// Windows holds the three configured meal windows. Windows may overlap;
// overlaps resolve by the fixed breakfast, lunch, dinner check order, not
// by interval size. Anything outside all three is a snack.
type Windows struct {
	Breakfast Window
	Lunch     Window
	Dinner    Window
}

// ParseWindow parses "HH:MM-HH:MM".
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("meal window %q: want HH:MM-HH:MM", s)
	}
	start, err := parseMinute(strings.TrimSpace(parts[0]))
	if err != nil {
		return Window{}, fmt.Errorf("meal window %q: %w", s, err)
	}
	end, err := parseMinute(strings.TrimSpace(parts[1]))
	if err != nil {
		return Window{}, fmt.Errorf("meal window %q: %w", s, err)
	}
	return Window{Start: start, End: end}, nil
}

func parseMinute(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewWindows parses the three configured windows. Only dinner is allowed to
// wrap past midnight; a wrapping breakfast or lunch is a configuration
// error rather than a silently odd classification.
func NewWindows(breakfast, lunch, dinner string) (Windows, error) {
	b, err := ParseWindow(breakfast)
	if err != nil {
		return Windows{}, err
	}
	if b.wraps() {
		return Windows{}, fmt.Errorf("breakfast window %q must not wrap past midnight", breakfast)
	}
	l, err := ParseWindow(lunch)
	if err != nil {
		return Windows{}, err
	}
	if l.wraps() {
		return Windows{}, fmt.Errorf("lunch window %q must not wrap past midnight", lunch)
	}
	d, err := ParseWindow(dinner)
	if err != nil {
		return Windows{}, err
	}
	return Windows{Breakfast: b, Lunch: l, Dinner: d}, nil
}

// Classify maps a timestamp's local time-of-day to a meal category. Pure
// function of the timestamp and the windows.
func Classify(t time.Time, w Windows) Category {
	minute := t.Hour()*60 + t.Minute()
	switch {
	case w.Breakfast.Contains(minute):
		return Breakfast
	case w.Lunch.Contains(minute):
		return Lunch
	case w.Dinner.Contains(minute):
		return Dinner
	default:
		return Snack
	}
}
