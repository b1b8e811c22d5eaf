package models

import (
	"fmt"
	"strings"
	"time"
)

// Direction is an absolute movement direction on the floorplan canvas.
// The canvas y axis grows downward, so "forward" means decreasing y.
type Direction string

const (
	DirForward  Direction = "forward"
	DirBackward Direction = "backward"
	DirLeft     Direction = "left"
	DirRight    Direction = "right"
)

// Angle returns the direction as degrees clockwise from forward:
// forward=0, right=90, backward=180, left=270.
func (d Direction) Angle() int {
	switch d {
	case DirRight:
		return 90
	case DirBackward:
		return 180
	case DirLeft:
		return 270
	default:
		return 0
	}
}

// PathSegment is the derived description of the stretch between two
// consecutive anchors. Created by the segmenter, enriched by the
// relativizer, and discarded after prompt construction; never persisted.
type PathSegment struct {
	Direction         Direction `json:"direction"`
	Steps             int       `json:"steps"`
	NearbyRooms       []string  `json:"nearby_rooms,omitempty"`
	RelativeDirection string    `json:"relative_direction,omitempty"`
	FacingDirection   Direction `json:"facing_direction,omitempty"`
}

// InstructionSet holds the generated navigation instructions for one path.
// Instruction strings may embed one {{N}} step-count marker; the marker is
// replaced at display time only, never in storage.
type InstructionSet struct {
	PathID                  string    `json:"path_id" db:"path_id"`
	DescriptiveInstructions []string  `json:"descriptive_instructions"`
	ConciseInstructions     []string  `json:"concise_instructions"`
	GeneratedAt             time.Time `json:"generated_at" db:"generated_at"`
}

// StepSize is a user stride preference. It scales displayed step counts and
// is independent of stored path data.
type StepSize string

const (
	StepSmall  StepSize = "small"
	StepMedium StepSize = "medium"
	StepLarge  StepSize = "large"
)

// Multiplier returns the display-time step-count multiplier for the
// preference. Small strides need more steps to cover the same distance.
func (s StepSize) Multiplier() float64 {
	switch s {
	case StepSmall:
		return 1.4
	case StepLarge:
		return 0.7
	default:
		return 1.0
	}
}

// ParseStepSize parses a step size string, case-insensitively.
// An empty string defaults to medium.
func ParseStepSize(s string) (StepSize, error) {
	switch strings.ToLower(s) {
	case "":
		return StepMedium, nil
	case string(StepSmall):
		return StepSmall, nil
	case string(StepMedium):
		return StepMedium, nil
	case string(StepLarge):
		return StepLarge, nil
	}
	return "", fmt.Errorf("unknown step size: %q", s)
}
