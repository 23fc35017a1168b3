package domain

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as "Hh Mmin", truncating rather than rounding.
func FormatDuration(seconds float64) string {
	var secs int64
	switch {
	case seconds < 0 || math.IsNaN(seconds):
		secs = 0
	case seconds >= math.MaxInt64:
		secs = math.MaxInt64
	default:
		secs = int64(seconds)
	}
	hours := secs / 3600
	minutes := (secs - hours*3600) / 60
	return fmt.Sprintf("%dh %dmin", hours, minutes)
}

// RoundTenth rounds x to one decimal place.
func RoundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

// MetersToKm converts metres to kilometres rounded to one decimal place.
func MetersToKm(meters float64) float64 {
	return RoundTenth(meters / 1000)
}
