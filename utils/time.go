package utils

import (
	"fmt"
	"math"
)

// FormatSRTTimestamp renders a second offset as a SubRip timestamp
// (HH:MM:SS,mmm)
func FormatSRTTimestamp(seconds float64) string {
	whole := int(seconds)
	millis := int(math.Round((seconds - float64(whole)) * 1000))
	if millis == 1000 {
		whole++
		millis = 0
	}

	return fmt.Sprintf("%02d:%02d:%02d,%03d",
		whole/3600, (whole%3600)/60, whole%60, millis)
}
