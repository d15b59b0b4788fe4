package utils

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	DATE_LAYOUT,
	DATETIME_LAYOUT,
	DATE_LAYOUT_SLASHED,
	DATE_LAYOUT_DMY,
}

// ParseDate parses a date entered in any of the accepted layouts
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayDate formats a stored date for display. Empty or unparsable values
// return fallback, and ok is false only when a non-empty value failed to parse.
func DisplayDate(value, fallback string) (display string, ok bool) {
	if strings.TrimSpace(value) == "" {
		return fallback, true
	}
	t, parsed := ParseDate(value)
	if !parsed {
		return fallback, false
	}
	return t.Format(DISPLAY_DATE_LAYOUT), true
}
