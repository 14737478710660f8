package wardroom

import (
	"fmt"
	"math"
)

var cardinalLabels = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// FormatHeading renders a heading as degrees plus the nearest cardinal
// label, e.g. "312° NW".
func FormatHeading(headingDeg float64) string {
	wrapped := math.Mod(math.Mod(headingDeg, 360)+360, 360)
	label := cardinalLabels[int(math.Round(wrapped/45))%len(cardinalLabels)]
	return fmt.Sprintf("%.0f° %s", wrapped, label)
}

// FormatDrift renders lateral offset in helm language. Anything under one
// point reads as centerline.
func FormatDrift(drift float64) string {
	magnitude := math.Abs(drift)
	if magnitude < 1 {
		return "centerline"
	}
	side := "port"
	if drift > 0 {
		side = "starboard"
	}
	return fmt.Sprintf("%.0f pt %s", magnitude, side)
}

// FormatEfficiency renders a 0..1 efficiency as a percentage phrase.
func FormatEfficiency(efficiency float64) string {
	return fmt.Sprintf("Efficiency %.0f%%", efficiency*100)
}

// FormatFuel renders remaining-tank percentage consumed.
func FormatFuel(consumedPercent float64) string {
	return fmt.Sprintf("%.1f%% fuel", consumedPercent)
}
