// Package cli provides output helpers for the wayfinder CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tactilepath/wayfinder/internal/generator"
	"github.com/tactilepath/wayfinder/internal/models"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteInstructionSet writes an instruction set to w in the given format.
func WriteInstructionSet(w io.Writer, set *models.InstructionSet, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}
	fmt.Fprintf(w, "\nInstructions for path %s (generated %s)\n\n", set.PathID, set.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w, "--- Descriptive ---")
	for i, line := range set.DescriptiveInstructions {
		fmt.Fprintf(w, "%d. %s\n", i+1, line)
	}
	fmt.Fprintf(w, "\n--- Concise ---\n")
	for _, line := range set.ConciseInstructions {
		fmt.Fprintf(w, "%s\n", line)
	}
	return nil
}

// WriteFloorResult writes a bulk generation summary to w in the given format.
func WriteFloorResult(w io.Writer, result *generator.FloorResult, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintf(w, "\nGenerated instructions for %d/%d paths (%d failed)\n", result.Succeeded, result.Total, result.Failed)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  FAILED %s: %s\n", e.PathID, e.Err)
	}
	return nil
}
