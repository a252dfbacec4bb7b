package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var durationUnits = map[string]time.Duration{
	"w":       7 * 24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"weeks":   7 * 24 * time.Hour,
	"d":       24 * time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"h":       time.Hour,
	"hr":      time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"m":       time.Minute,
	"min":     time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"s":       time.Second,
	"sec":     time.Second,
	"second":  time.Second,
	"seconds": time.Second,
}

// ParseDuration parses human durations like "1d", "2h30m" or "1 day 6 hours".
// A bare number is taken as minutes.
func ParseDuration(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, fmt.Errorf("duration is empty")
	}

	// Bare number defaults to minutes.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(n) * time.Minute, nil
	}

	var total time.Duration
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == ',') {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		for i < len(s) && unicode.IsDigit(rune(s[i])) {
			i++
		}
		if start == i {
			return 0, fmt.Errorf("invalid duration %q: expected a number at %q", input, s[i:])
		}
		n, err := strconv.ParseInt(s[start:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", input, err)
		}

		for i < len(s) && s[i] == ' ' {
			i++
		}
		unitStart := i
		for i < len(s) && unicode.IsLetter(rune(s[i])) {
			i++
		}
		unit, ok := durationUnits[s[unitStart:i]]
		if !ok {
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", input, s[unitStart:i])
		}
		total += time.Duration(n) * unit
	}

	if total <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return total, nil
}

// HumanizeDuration renders a duration as "1 day 2 hours 30 minutes". Zero
// units are skipped; a zero duration renders as "0 seconds".
func HumanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "0 seconds"
	}

	seconds := int64(d.Seconds())
	parts := []struct {
		name string
		size int64
	}{
		{"week", 7 * 24 * 3600},
		{"day", 24 * 3600},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	var out []string
	for _, p := range parts {
		if n := seconds / p.size; n > 0 {
			label := p.name
			if n != 1 {
				label += "s"
			}
			out = append(out, fmt.Sprintf("%d %s", n, label))
			seconds %= p.size
		}
	}
	return strings.Join(out, " ")
}
