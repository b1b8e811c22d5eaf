// Package directions converts absolute-direction segments into turn-relative
// navigation phrases.
package directions

import "github.com/tactilepath/wayfinder/internal/models"

const (
	// MoveForward is the phrase for continuing without a turn.
	MoveForward = "Move forward"
	// TurnRight is the phrase for a clockwise turn.
	TurnRight = "Turn right and move forward"
	// TurnLeft is the phrase for a counter-clockwise turn.
	TurnLeft = "Turn left and move forward"
)

// Relativize enriches each segment with a turn-relative phrase and the
// walker's heading after the segment. The facing angle is carried as fold
// state: the walker starts aligned with the first segment, and every turn is
// fully resolved at the segment where it happens. The input slice is not
// modified.
func Relativize(segments []models.PathSegment) []models.PathSegment {
	if len(segments) == 0 {
		return []models.PathSegment{}
	}
	out := make([]models.PathSegment, len(segments))
	facing := segments[0].Direction.Angle()
	for i, seg := range segments {
		angle := seg.Direction.Angle()
		if i == 0 {
			seg.RelativeDirection = MoveForward
		} else {
			seg.RelativeDirection = turnPhrase((angle - facing + 360) % 360)
		}
		facing = angle
		seg.FacingDirection = seg.Direction
		out[i] = seg
	}
	return out
}

// turnPhrase maps a clockwise angle difference in [0, 360) to a phrase.
// A 180 degree difference resolves to a right turn.
func turnPhrase(angleDiff int) string {
	switch {
	case angleDiff == 0:
		return MoveForward
	case angleDiff <= 180:
		return TurnRight
	default:
		return TurnLeft
	}
}
