// Package geometry converts anchor polylines into discrete movement segments.
package geometry

import (
	"math"

	"github.com/tactilepath/wayfinder/internal/models"
)

const (
	// StepPixels is the canvas distance of one walking step.
	StepPixels = 20.0
	// NearbyPixels is the maximum distance from a segment at which a room
	// counts as nearby (5 steps).
	NearbyPixels = 100.0
)

// Segment converts an ordered anchor polyline and the floor's rooms into a
// sequence of path segments. Anchors must already be sorted by index
// ascending; that ordering is the caller's contract and is not re-checked
// here. Fewer than two anchors yields an empty slice. A pair with a nil
// endpoint contributes no segment.
func Segment(anchors []*models.Anchor, rooms []*models.Room) []models.PathSegment {
	segments := make([]models.PathSegment, 0)
	if len(anchors) < 2 {
		return segments
	}
	for i := 0; i < len(anchors)-1; i++ {
		from, to := anchors[i], anchors[i+1]
		if from == nil || to == nil {
			continue
		}
		dx := to.X - from.X
		dy := to.Y - from.Y
		dist := math.Hypot(dx, dy)
		seg := models.PathSegment{
			Direction:   classifyDirection(dx, dy),
			Steps:       int(math.Round(dist / StepPixels)),
			NearbyRooms: nearbyRooms(from.Point(), to.Point(), rooms),
		}
		segments = append(segments, seg)
	}
	return segments
}

// classifyDirection maps a displacement to a cardinal direction. Ties between
// |dx| and |dy| resolve to the vertical branch. Canvas y grows downward, so
// decreasing y is forward.
func classifyDirection(dx, dy float64) models.Direction {
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return models.DirRight
		}
		return models.DirLeft
	}
	if dy < 0 {
		return models.DirForward
	}
	return models.DirBackward
}

// nearbyRooms returns the names of rooms whose bounding-box center lies
// within NearbyPixels of the segment [from, to], in the order the rooms were
// supplied.
func nearbyRooms(from, to models.Point, rooms []*models.Room) []string {
	var names []string
	for _, room := range rooms {
		if room == nil {
			continue
		}
		center := room.BoundingBox.Center()
		if PointToSegmentDistance(center, from, to) <= NearbyPixels {
			names = append(names, room.Name)
		}
	}
	return names
}

// PointToSegmentDistance returns the distance from p to the closest point on
// the line segment [a, b]. The projection parameter is clamped to [0, 1], so
// a point beyond either endpoint is measured against that endpoint rather
// than the infinite line.
func PointToSegmentDistance(p, a, b models.Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	cx := a.X + t*abx
	cy := a.Y + t*aby
	return math.Hypot(p.X-cx, p.Y-cy)
}
