package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BedTime is the fixed end of every schedule: 23:00 in minutes since midnight.
const BedTime = 23 * 60

// Clock formats minutes since midnight as "H:MM" (no zero-padding on the hour).
// This is the display format the timeline uses.
func Clock(mins int) string {
	h := mins / 60
	m := mins % 60
	return fmt.Sprintf("%d:%02d", h, m)
}

// ClockPadded formats minutes since midnight as "HH:MM", the wire/storage format
// notification times are matched against.
func ClockPadded(mins int) string {
	if mins < 0 {
		mins = 0
	}
	h := mins / 60
	m := mins % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// ParseClock parses "HH:MM" (or "H:MM") into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, errors.New("invalid minute")
	}
	return h*60 + m, nil
}

// RoundToStep rounds a minute value to the nearest multiple of step.
// A result that would reach 60 clamps to the largest step below 60,
// so rounding never rolls over into the next hour.
func RoundToStep(m, step int) int {
	if step <= 0 {
		return m
	}
	r := (m + step/2) / step * step
	if r >= 60 {
		r = 60 - step
	}
	return r
}
