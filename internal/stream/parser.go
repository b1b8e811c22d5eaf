// Package stream parses the generation service's delimited response as it
// arrives. The whole accumulated buffer is re-parsed on every chunk; parsing
// a longer prefix of the same stream never removes entries already produced,
// so the caller can re-render incrementally.
package stream

import (
	"strings"

	"github.com/tactilepath/wayfinder/internal/prompt"
)

// Result holds the instruction lists parsed from the accumulated stream so far.
type Result struct {
	Steps               []string `json:"steps"`
	ConciseInstructions []string `json:"concise_instructions"`
}

// Parse extracts the descriptive and concise instruction lists from the
// accumulated response text. Missing end delimiters mean the stream is still
// in progress; everything after the start delimiter is considered. A trailing
// line without a newline is not yet emitted.
func Parse(accumulated string) Result {
	res := Result{Steps: []string{}, ConciseInstructions: []string{}}

	for _, line := range blockLines(accumulated, prompt.BeginStepsToken, prompt.EndStepsToken) {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), prompt.StepLineMarker); ok {
			if step := strings.TrimSpace(rest); step != "" {
				res.Steps = append(res.Steps, step)
			}
		}
	}

	for _, line := range blockLines(accumulated, prompt.BeginConciseToken, prompt.EndConciseToken) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			res.ConciseInstructions = append(res.ConciseInstructions, trimmed)
		}
	}

	return res
}

// blockLines returns the complete lines between beginToken and endToken.
// If beginToken has not arrived, there is no block. If endToken has not
// arrived, the block runs to the end of the buffer and the final partial
// line is withheld until a newline flushes it.
func blockLines(text, beginToken, endToken string) []string {
	start := strings.Index(text, beginToken)
	if start < 0 {
		return nil
	}
	rest := text[start+len(beginToken):]

	// The block begins on the line after the token.
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return nil
	}
	rest = rest[nl+1:]

	if end := strings.Index(rest, endToken); end >= 0 {
		return strings.Split(rest[:end], "\n")
	}

	lines := strings.Split(rest, "\n")
	// No end token yet: the last element is an unterminated partial line.
	return lines[:len(lines)-1]
}
