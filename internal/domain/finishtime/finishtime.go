// Package finishtime converts finish times between "H:M:S" text and whole seconds.
package finishtime

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	fieldCount       = 3
)

// ToSeconds parses a three-field "H:M:S" time into seconds. Every field must be
// a non-negative decimal integer; minutes and seconds must be below 60.
func ToSeconds(text string) (int, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, ":")
	if len(parts) != fieldCount {
		return 0, fmt.Errorf("%w: %q: want H:M:S", ErrFormat, text)
	}

	var fields [fieldCount]int
	for i, p := range parts {
		if p == "" || !isDigits(p) {
			return 0, fmt.Errorf("%w: %q: field %d is not an integer", ErrFormat, text, i+1)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrFormat, text, err)
		}
		fields[i] = n
	}

	h, m, s := fields[0], fields[1], fields[2]
	if m >= secondsPerMinute || s >= secondsPerMinute {
		return 0, fmt.Errorf("%w: %q: minutes and seconds must be below 60", ErrFormat, text)
	}
	return h*secondsPerHour + m*secondsPerMinute + s, nil
}

// ToText formats seconds as "H:MM:SS". Negative input formats as zero.
func ToText(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / secondsPerHour
	m := (seconds % secondsPerHour) / secondsPerMinute
	s := seconds % secondsPerMinute
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
