package progress

import (
	"fmt"
	"math"
	"strconv"
)

// RoundPercent rounds to 2 decimal places.
func RoundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}

// FormatVolume renders compact volumes, e.g. 1.5M, 68.5K or 950.
func FormatVolume(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return trimFloat(v/1_000_000) + "M"
	case abs >= 1_000:
		return trimFloat(v/1_000) + "K"
	default:
		return trimFloat(v)
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// FormatTotalVolume is the confirmation line shown after a submit.
func FormatTotalVolume(v float64) string {
	return fmt.Sprintf("Total Volume: %.1f lbs", v)
}

func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", RoundPercent(p))
}
