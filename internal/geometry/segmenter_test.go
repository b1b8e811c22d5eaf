package geometry

import (
	"math"
	"reflect"
	"testing"

	"github.com/tactilepath/wayfinder/internal/models"
)

func anchor(idx int, x, y float64) *models.Anchor {
	return &models.Anchor{Index: idx, X: x, Y: y}
}

func TestSegment_DirectionClassification(t *testing.T) {
	tests := []struct {
		name string
		from *models.Anchor
		to   *models.Anchor
		want models.Direction
	}{
		{"dominant positive dx", anchor(0, 0, 0), anchor(1, 50, 10), models.DirRight},
		{"dominant negative dx", anchor(0, 50, 0), anchor(1, 0, 10), models.DirLeft},
		{"dominant negative dy", anchor(0, 0, 50), anchor(1, 10, 0), models.DirForward},
		{"dominant positive dy", anchor(0, 0, 0), anchor(1, 10, 50), models.DirBackward},
		{"diagonal tie goes vertical, up", anchor(0, 0, 40), anchor(1, 40, 0), models.DirForward},
		{"diagonal tie goes vertical, down", anchor(0, 0, 0), anchor(1, 40, 40), models.DirBackward},
		{"zero displacement goes backward", anchor(0, 5, 5), anchor(1, 5, 5), models.DirBackward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Segment([]*models.Anchor{tt.from, tt.to}, nil)
			if len(segs) != 1 {
				t.Fatalf("expected 1 segment, got %d", len(segs))
			}
			if segs[0].Direction != tt.want {
				t.Errorf("Direction = %s, want %s", segs[0].Direction, tt.want)
			}
		})
	}
}

func TestSegment_StepQuantization(t *testing.T) {
	tests := []struct {
		name string
		from *models.Anchor
		to   *models.Anchor
		want int
	}{
		{"50px rounds to 3", anchor(0, 0, 0), anchor(1, 50, 0), 3},
		{"150px rounds half up to 8", anchor(0, 0, 0), anchor(1, 0, 150), 8},
		{"exact multiple", anchor(0, 0, 0), anchor(1, 100, 0), 5},
		{"short hop rounds to zero", anchor(0, 0, 0), anchor(1, 5, 0), 0},
		{"zero length", anchor(0, 3, 3), anchor(1, 3, 3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Segment([]*models.Anchor{tt.from, tt.to}, nil)
			if len(segs) != 1 {
				t.Fatalf("expected 1 segment, got %d", len(segs))
			}
			if segs[0].Steps != tt.want {
				t.Errorf("Steps = %d, want %d", segs[0].Steps, tt.want)
			}
		})
	}
}

func TestSegment_DegenerateInputs(t *testing.T) {
	if got := Segment(nil, nil); len(got) != 0 {
		t.Errorf("nil anchors: expected empty, got %d segments", len(got))
	}
	if got := Segment([]*models.Anchor{anchor(0, 0, 0)}, nil); len(got) != 0 {
		t.Errorf("single anchor: expected empty, got %d segments", len(got))
	}
	// A nil endpoint drops the two pairs touching it, not the whole path.
	anchors := []*models.Anchor{anchor(0, 0, 0), nil, anchor(2, 100, 0), anchor(3, 100, 100)}
	segs := Segment(anchors, nil)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment across nil anchor, got %d", len(segs))
	}
	if segs[0].Direction != models.DirBackward || segs[0].Steps != 5 {
		t.Errorf("surviving segment = %+v, want backward/5", segs[0])
	}
}

func TestSegment_NearbyRooms(t *testing.T) {
	rooms := []*models.Room{
		{Name: "Lobby", BoundingBox: models.Rect{X: 40, Y: 30, Width: 20, Height: 20}},    // center (50,40), 40px off
		{Name: "Cafeteria", BoundingBox: models.Rect{X: 0, Y: 180, Width: 40, Height: 40}}, // center (20,200), 200px off
		{Name: "Archive", BoundingBox: models.Rect{X: 90, Y: 90, Width: 20, Height: 20}},   // center (100,100), exactly 100px off
	}
	segs := Segment([]*models.Anchor{anchor(0, 0, 0), anchor(1, 200, 0)}, rooms)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	want := []string{"Lobby", "Archive"}
	if !reflect.DeepEqual(segs[0].NearbyRooms, want) {
		t.Errorf("NearbyRooms = %v, want %v (encounter order, boundary inclusive)", segs[0].NearbyRooms, want)
	}
}

func TestPointToSegmentDistance(t *testing.T) {
	a := models.Point{X: 0, Y: 0}
	b := models.Point{X: 10, Y: 0}
	tests := []struct {
		name string
		p    models.Point
		want float64
	}{
		{"perpendicular within span", models.Point{X: 5, Y: 5}, 5},
		{"beyond start measures endpoint", models.Point{X: -5, Y: 5}, math.Sqrt(50)},
		{"beyond end measures endpoint", models.Point{X: 13, Y: 4}, 5},
		{"on the segment", models.Point{X: 7, Y: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointToSegmentDistance(tt.p, a, b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PointToSegmentDistance = %v, want %v", got, tt.want)
			}
		})
	}
	// Degenerate segment falls back to point distance.
	if got := PointToSegmentDistance(models.Point{X: 3, Y: 4}, a, a); math.Abs(got-5) > 1e-9 {
		t.Errorf("degenerate segment distance = %v, want 5", got)
	}
}
