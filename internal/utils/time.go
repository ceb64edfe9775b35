package utils

import (
	"strconv"
	"strings"
	"time"
)

// ResolveLocation loads an IANA timezone name, falling back when it is empty or unknown
func ResolveLocation(name string, fallback *time.Location) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback, false
	}
	return loc, true
}

// FormatGrams renders grams without trailing zeros, e.g. 20 -> "20", 12.5 -> "12.5"
func FormatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatClock renders t as HH:MM in loc
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}
