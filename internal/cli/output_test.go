package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/tactilepath/wayfinder/internal/generator"
	"github.com/tactilepath/wayfinder/internal/models"
)

func sampleSet() *models.InstructionSet {
	return &models.InstructionSet{
		PathID:                  "p1",
		DescriptiveInstructions: []string{"Walk {{10}} steps down the corridor."},
		ConciseInstructions:     []string{"1. Move forward {{10}} steps"},
		GeneratedAt:             time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestWriteInstructionSet_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInstructionSet(&buf, sampleSet(), OutputText); err != nil {
		t.Fatalf("WriteInstructionSet: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"path p1", "Descriptive", "Walk {{10}} steps", "Concise", "Move forward"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	// A single blank line separates the sections.
	if !strings.Contains(out, "corridor.\n\n--- Concise ---\n1.") {
		t.Errorf("concise header spacing wrong:\n%s", out)
	}
}

func TestWriteInstructionSet_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInstructionSet(&buf, sampleSet(), OutputJSON); err != nil {
		t.Fatalf("WriteInstructionSet: %v", err)
	}
	var got models.InstructionSet
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json output not parseable: %v", err)
	}
	if got.PathID != "p1" || len(got.DescriptiveInstructions) != 1 {
		t.Errorf("round-tripped set = %+v", got)
	}
}

func TestWriteFloorResult_Text(t *testing.T) {
	var buf bytes.Buffer
	result := &generator.FloorResult{
		Total: 3, Succeeded: 2, Failed: 1,
		Errors: []generator.PathError{{PathID: "p9", Err: "stream failed"}},
	}
	if err := WriteFloorResult(&buf, result, OutputText); err != nil {
		t.Fatalf("WriteFloorResult: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2/3") || !strings.Contains(out, "FAILED p9") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
