// Package readtime estimates reading time from a word count.
package readtime

import (
	"math"
	"strings"
)

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

// Estimate returns whole minutes, at least 1. Halves round to even.
func Estimate(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.RoundToEven(float64(words) / WordsPerMinute))
	return max(1, minutes)
}
