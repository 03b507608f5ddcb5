package core

import (
	"strings"
	"time"
)

// DayLayout is how transaction dates are stored and shown.
const DayLayout = "02 Jan 2006"

var dayInputLayouts = []string{
	"2006-01-02", // <input type="date">
	DayLayout,
	"2 Jan 2006",
	"2 January 2006",
	"02 January 2006",
}

// FormatDay renders t in DayLayout.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// NormalizeDay parses a date typed or picked by the user and returns it in
// DayLayout.
func NormalizeDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTime
	}
	for _, layout := range dayInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatDay(t), nil
		}
	}
	return "", ErrInvalidTime
}
