package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/riverscapes/reportcore/internal/report"
)

// PrintSummary renders a completed run's summary: counts, any
// aggregation exclusions, and the artifact paths.
func PrintSummary(w io.Writer, s *report.Summary, noColor bool) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)
	if noColor {
		green.DisableColor()
		yellow.DisableColor()
	}

	green.Fprintf(w, "Run %s complete\n", s.RunID)
	fmt.Fprintf(w, "  layer:        %s\n", s.LayerID)
	fmt.Fprintf(w, "  unit system:  %s\n", s.System)
	fmt.Fprintf(w, "  input rows:   %d\n", s.InputRows)
	fmt.Fprintf(w, "  output rows:  %d\n", s.OutputRows)
	if s.Defaulted > 0 {
		fmt.Fprintf(w, "  defaults:     %d cells filled\n", s.Defaulted)
	}

	if len(s.Exclusions) > 0 {
		yellow.Fprintf(w, "  %d row(s) excluded from aggregation:\n", len(s.Exclusions))
		for _, ex := range s.Exclusions {
			fmt.Fprintf(w, "    - %s\n", ex)
		}
	}

	for _, path := range s.Artifacts {
		fmt.Fprintf(w, "  wrote %s\n", path)
	}
}
