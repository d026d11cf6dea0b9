package utils

import (
	"strconv"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

// FormatAmount prints a single-precision value in its shortest exact decimal
// form without an exponent: 94, 0.94, 8250000.
func FormatAmount(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// FormatTimestamp renders t in UTC, or "unknown" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(timestampLayout)
}
