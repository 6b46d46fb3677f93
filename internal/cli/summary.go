package cli

import (
	"fmt"
	"io"
)

// RunStats carries the numbers the run summary prints.
type RunStats struct {
	OutputPath      string
	OutputURLPath   string
	UnprocessedPath string
	Total           int
	Batches         int
	BatchSize       int
	FailedBatches   int
	Processed       int
	Unprocessed     int
}

// PrintSummary writes the end-of-run processing summary.
func PrintSummary(w io.Writer, stats RunStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(ChartIcon+" Processing Summary"))
	fmt.Fprintf(w, "  Total PRs in input: %s\n", BoldStyle.Render(fmt.Sprintf("%d", stats.Total)))
	fmt.Fprintf(w, "  Batches: %d (up to %d PRs each)\n", stats.Batches, stats.BatchSize)
	if stats.FailedBatches > 0 {
		fmt.Fprintf(w, "  %s\n", WarningStyle.Render(fmt.Sprintf("%s %d batch(es) failed categorization", WarningIcon, stats.FailedBatches)))
	}
	fmt.Fprintf(w, "  PRs processed: %s\n", SuccessStyle.Render(fmt.Sprintf("%d", stats.Processed)))

	if stats.Unprocessed > 0 {
		fmt.Fprintf(w, "  PRs not processed: %s\n", WarningStyle.Render(fmt.Sprintf("%d", stats.Unprocessed)))
		fmt.Fprintf(w, "  Unprocessed PRs written to %s\n", SubtleStyle.Render(stats.UnprocessedPath))
	} else {
		fmt.Fprintf(w, "  %s\n", SuccessStyle.Render(SuccessIcon+" All PRs have been processed"))
	}

	fmt.Fprintf(w, "  Release notes: %s and %s\n",
		SubtleStyle.Render(stats.OutputPath),
		SubtleStyle.Render(stats.OutputURLPath))
}
