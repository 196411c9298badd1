package util

import (
	"math"
	"time"
)

// Round2 rounds to two decimal places. Report percentages and currency
// amounts are normalized through this before serialization.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ReformatReportDate converts the compact yyyymmdd date the Analytics Data
// API emits into ISO form. Values that don't parse pass through unchanged.
func ReformatReportDate(raw string) string {
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}
