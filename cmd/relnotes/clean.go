package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper-ld/relnotes/internal/cli"
	"github.com/harper-ld/relnotes/internal/render"
)

func cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <release.md>",
		Short: "Strip redundant tags from a generated document",
		Long: `Post-process a generated release-notes document, removing redundant tags
from its bullets: empty tags, duplicate tags, and tags that merely repeat
the section heading they appear under.`,
		Args: cobra.ExactArgs(1),
		RunE: runClean,
	}

	cmd.Flags().Bool("dry-run", false, "show the changes without rewriting the file")

	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	path := args[0]
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	cleaned, changes := render.CleanDocument(string(data))
	if len(changes) == 0 {
		fmt.Fprintln(os.Stdout, cli.SuccessStyle.Render(cli.SuccessIcon+" No changes were necessary"))
		return nil
	}

	for _, change := range changes {
		fmt.Fprintf(os.Stdout, "Line %d:\n  %s\n  %s\n",
			change.Line,
			cli.ErrorStyle.Render("- "+change.Before),
			cli.SuccessStyle.Render("+ "+change.After))
	}

	if dryRun {
		slog.Info("Dry run, file not modified", "changes", len(changes))
		return nil
	}

	if err := os.WriteFile(path, []byte(cleaned), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintln(os.Stdout, cli.SuccessStyle.Render(
		fmt.Sprintf("%s Cleaned %d line(s) in %s", cli.SuccessIcon, len(changes), path)))
	return nil
}
