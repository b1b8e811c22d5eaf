package directions

import (
	"testing"

	"github.com/tactilepath/wayfinder/internal/models"
)

func segs(dirs ...models.Direction) []models.PathSegment {
	out := make([]models.PathSegment, len(dirs))
	for i, d := range dirs {
		out[i] = models.PathSegment{Direction: d, Steps: 5}
	}
	return out
}

func phrases(segments []models.PathSegment) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.RelativeDirection
	}
	return out
}

func TestRelativize_Empty(t *testing.T) {
	if got := Relativize(nil); len(got) != 0 {
		t.Errorf("expected empty output, got %d segments", len(got))
	}
}

func TestRelativize_FirstSegmentAlwaysForward(t *testing.T) {
	for _, dir := range []models.Direction{models.DirForward, models.DirBackward, models.DirLeft, models.DirRight} {
		got := Relativize(segs(dir))
		if got[0].RelativeDirection != MoveForward {
			t.Errorf("first segment with absolute %s: got %q, want %q", dir, got[0].RelativeDirection, MoveForward)
		}
	}
}

func TestRelativize_Turns(t *testing.T) {
	tests := []struct {
		name string
		dirs []models.Direction
		want []string
	}{
		{
			"clockwise quarter turn",
			[]models.Direction{models.DirForward, models.DirRight},
			[]string{MoveForward, TurnRight},
		},
		{
			"counter-clockwise quarter turn",
			[]models.Direction{models.DirForward, models.DirLeft},
			[]string{MoveForward, TurnLeft},
		},
		{
			"no turn",
			[]models.Direction{models.DirRight, models.DirRight},
			[]string{MoveForward, MoveForward},
		},
		{
			"reversal resolves to right turn",
			[]models.Direction{models.DirForward, models.DirBackward},
			[]string{MoveForward, TurnRight},
		},
		{
			"turns are relative to updated facing",
			[]models.Direction{models.DirRight, models.DirBackward, models.DirLeft},
			[]string{MoveForward, TurnRight, TurnRight},
		},
		{
			"left turn after reorientation",
			[]models.Direction{models.DirBackward, models.DirRight},
			[]string{MoveForward, TurnLeft},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := phrases(Relativize(segs(tt.dirs...)))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d phrases, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRelativize_FacingDirection(t *testing.T) {
	got := Relativize(segs(models.DirRight, models.DirBackward))
	if got[0].FacingDirection != models.DirRight || got[1].FacingDirection != models.DirBackward {
		t.Errorf("FacingDirection = %s, %s; want right, backward", got[0].FacingDirection, got[1].FacingDirection)
	}
}

func TestRelativize_DoesNotMutateInput(t *testing.T) {
	in := segs(models.DirForward, models.DirRight)
	_ = Relativize(in)
	for i, s := range in {
		if s.RelativeDirection != "" || s.FacingDirection != "" {
			t.Errorf("input segment %d was mutated: %+v", i, s)
		}
	}
}
