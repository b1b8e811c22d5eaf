// Package steps rescales embedded step-count markers for a user's stride
// preference. Applied at display time only; stored instructions keep their
// {{N}} markers.
package steps

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tactilepath/wayfinder/internal/models"
)

var markerRe = regexp.MustCompile(`\{\{(\d+)\}\}`)

// Adjust replaces the first {{N}} marker in text with N scaled by the stride
// multiplier, rounded to the nearest integer. Text without a marker is
// returned unchanged. Any stray braces left by malformed upstream text are
// stripped from the result.
func Adjust(text string, size models.StepSize) string {
	m := markerRe.FindStringSubmatchIndex(text)
	if m == nil {
		return text
	}
	n, err := strconv.Atoi(text[m[2]:m[3]])
	if err != nil {
		return text
	}
	scaled := int(math.Round(float64(n) * size.Multiplier()))
	out := text[:m[0]] + strconv.Itoa(scaled) + text[m[1]:]
	return strings.NewReplacer("{", "", "}", "").Replace(out)
}

// AdjustAll applies Adjust to every instruction in the list, returning a new
// slice.
func AdjustAll(instructions []string, size models.StepSize) []string {
	out := make([]string, len(instructions))
	for i, s := range instructions {
		out[i] = Adjust(s, size)
	}
	return out
}
