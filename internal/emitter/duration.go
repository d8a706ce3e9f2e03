package emitter

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as HH:MM:SS.mmm per spec.md §4.7.
func FormatDuration(d float64) string {
	hours := math.Floor(d / 3600)
	minutes := math.Floor(d/60) - hours*60
	seconds := d - minutes*60 - hours*3600
	return fmt.Sprintf("%02d:%02d:%06.3f", int(hours), int(minutes), seconds)
}
