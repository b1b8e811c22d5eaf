// Package prompt builds the generation-service prompt and the concise
// instruction lines, and defines the wire-contract tokens shared with the
// stream parser.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tactilepath/wayfinder/internal/models"
)

// Wire-contract tokens. The generation service is instructed to reproduce
// these exactly; the stream parser keys on them. Changing any of them breaks
// compatibility with already-deployed prompts.
const (
	BeginStepsToken   = "===BEGIN STEPS==="
	EndStepsToken     = "===END STEPS==="
	BeginConciseToken = "===BEGIN CONCISE==="
	EndConciseToken   = "===END CONCISE==="
	StepLineMarker    = "STEP:"
)

// ConciseLines formats relativized segments as numbered movement lines,
// one per segment, with the step count wrapped in a {{N}} marker.
func ConciseLines(segments []models.PathSegment) []string {
	lines := make([]string, 0, len(segments))
	for i, seg := range segments {
		lines = append(lines, fmt.Sprintf("%d. %s {{%d}} steps", i+1, seg.RelativeDirection, seg.Steps))
	}
	return lines
}

// Build produces the full prompt for the generation service: preamble,
// origin and destination rooms, the movement-segment block (with nearby-room
// annotations where present), and the output-format contract.
func Build(fromRoom, toRoom string, segments []models.PathSegment) string {
	var b strings.Builder

	b.WriteString("You are writing turn-by-turn walking directions for a visually impaired person navigating inside a building.\n")
	fmt.Fprintf(&b, "The route starts at %q and ends at %q.\n\n", fromRoom, toRoom)

	b.WriteString("MOVEMENT SEGMENTS:\n")
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d. %s {{%d}} steps", i+1, seg.RelativeDirection, seg.Steps)
		if len(seg.NearbyRooms) > 0 {
			fmt.Fprintf(&b, " (near %s)", strings.Join(seg.NearbyRooms, ", "))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nWrite one clear spoken-style sentence per movement segment. Mention nearby rooms as landmarks when they are listed.\n")
	b.WriteString("Output format, exactly:\n")
	fmt.Fprintf(&b, "%s\n", BeginStepsToken)
	fmt.Fprintf(&b, "%s <one sentence per instruction; keep every step count wrapped as {{N}}>\n", StepLineMarker)
	fmt.Fprintf(&b, "%s\n", EndStepsToken)
	fmt.Fprintf(&b, "%s\n", BeginConciseToken)
	b.WriteString("<one short line per movement segment, keeping the {{N}} markers>\n")
	fmt.Fprintf(&b, "%s\n", EndConciseToken)
	b.WriteString("Do not add any text outside the delimited blocks.\n")

	return b.String()
}
