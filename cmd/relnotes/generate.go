package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harper-ld/relnotes/internal/audit"
	"github.com/harper-ld/relnotes/internal/cli"
	"github.com/harper-ld/relnotes/internal/common"
	"github.com/harper-ld/relnotes/internal/config"
	"github.com/harper-ld/relnotes/internal/github"
	"github.com/harper-ld/relnotes/internal/llm"
	"github.com/harper-ld/relnotes/internal/parse"
	"github.com/harper-ld/relnotes/internal/pipeline"
	"github.com/harper-ld/relnotes/internal/storage"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate categorized release notes from a PR list",
		Long: `Generate categorized release notes from a flat list of PR references.

Each input line names a change with optional bracketed tags and a trailing
PR reference, e.g.:

  [inductor][AOTI] Paged Attention (#137164)
  Fix flaky unit test (#137201)

PRs are enriched with their GitHub descriptions and comments, submitted to
the categorization engine in batches, and rendered into plain and
hyperlinked Markdown documents. A reconciliation pass reports which input
PRs never made it into the output.

Examples:
  relnotes generate -i prs.txt
  relnotes generate -i prs.txt --batch-size 10 --provider anthropic`,
		RunE: runGenerate,
	}

	cmd.Flags().StringP("input", "i", "", "input file containing the PR list (required)")
	cmd.Flags().StringP("output-md", "m", "release.md", "output Markdown file")
	cmd.Flags().StringP("output-url-md", "u", "release_url.md", "output Markdown file with PR links")
	cmd.Flags().StringP("output-unprocessed", "o", "unprocessed_prs.txt", "output file for unprocessed PRs")
	cmd.Flags().String("audit-log", "responses.log", "append-only log of raw engine responses")
	cmd.Flags().IntP("batch-size", "b", parse.DefaultBatchSize, "PRs per categorization request")
	cmd.Flags().Duration("batch-delay", time.Second, "pause between batches")
	cmd.Flags().String("provider", "ollama", "categorization provider (ollama, anthropic)")
	cmd.Flags().String("model", "", "model name (provider default if empty)")
	cmd.Flags().String("ollama-url", "", "Ollama base URL (default http://localhost:11434)")
	cmd.Flags().Duration("timeout", llm.DefaultTimeout, "per-request categorization timeout")
	_ = cmd.MarkFlagRequired("input")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("generate.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("generate.output_md", cmd.Flags().Lookup("output-md"))
	_ = viper.BindPFlag("generate.output_url_md", cmd.Flags().Lookup("output-url-md"))
	_ = viper.BindPFlag("generate.output_unprocessed", cmd.Flags().Lookup("output-unprocessed"))
	_ = viper.BindPFlag("generate.audit_log", cmd.Flags().Lookup("audit-log"))
	_ = viper.BindPFlag("generate.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("generate.batch_delay", cmd.Flags().Lookup("batch-delay"))
	_ = viper.BindPFlag("llm.provider", cmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("llm.ollama_url", cmd.Flags().Lookup("ollama-url"))
	_ = viper.BindPFlag("llm.timeout", cmd.Flags().Lookup("timeout"))

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	inputPath := viper.GetString("generate.input")

	token := viper.GetString("github.token")
	if token == "" {
		return common.NewUserError("GITHUB_TOKEN is not set", common.ErrMissingConfig)
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return common.NewUserError("failed to open input file", err)
	}
	entries, err := parse.ReadList(file)
	_ = file.Close()
	if err != nil {
		return err
	}

	slog.Info("Parsed PR list", "accepted", len(entries), "input", inputPath)
	if len(entries) == 0 {
		return common.NewUserError("no PRs found in the input file", common.ErrNoEntries)
	}

	owner, repo := githubRepo()
	fetcher, err := github.NewClient(github.Config{
		Owner:    owner,
		Repo:     repo,
		Token:    token,
		BotUsers: viper.GetStringSlice("github.bot_users"),
	})
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	categorizer, err := llm.NewCategorizer(llm.Config{
		Provider:  viper.GetString("llm.provider"),
		Model:     viper.GetString("llm.model"),
		BaseURL:   viper.GetString("llm.ollama_url"),
		APIKey:    viper.GetString("llm.api_key"),
		Timeout:   viper.GetDuration("llm.timeout"),
		RateLimit: viper.GetInt("llm.rate_limit"),
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create categorizer: %w", err)
	}
	defer categorizer.Close()

	auditLog, err := audit.Open(viper.GetString("generate.audit_log"))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := auditLog.Close(); closeErr != nil {
			slog.Error("Failed to close audit log", "error", closeErr)
		}
	}()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("Failed to close run history", "error", closeErr)
			}
		}()
	}

	opts := pipeline.Options{
		Fetcher:        fetcher,
		Categorizer:    categorizer,
		AuditLog:       auditLog,
		LinkBase:       fmt.Sprintf("https://github.com/%s/%s/pull", owner, repo),
		BatchSize:      viper.GetInt("generate.batch_size"),
		BatchDelay:     viper.GetDuration("generate.batch_delay"),
		ProgressWriter: os.Stderr,
	}
	if store != nil {
		opts.Store = store
	}

	engine, err := pipeline.New(opts)
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx, entries, inputPath)
	if err != nil {
		return err
	}

	// Documents are assembled in memory and written once, completely, at
	// the end, or not at all.
	outputMD := viper.GetString("generate.output_md")
	outputURLMD := viper.GetString("generate.output_url_md")
	outputUnprocessed := viper.GetString("generate.output_unprocessed")

	if err := os.WriteFile(outputMD, []byte(result.Markdown+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write release notes: %w", err)
	}
	if err := os.WriteFile(outputURLMD, []byte(result.MarkdownLinked+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write linked release notes: %w", err)
	}
	if len(result.Reconciliation.Unprocessed) > 0 {
		var lines string
		for _, entry := range result.Reconciliation.Unprocessed {
			lines += entry.SourceLine + "\n"
		}
		if err := os.WriteFile(outputUnprocessed, []byte(lines), 0o644); err != nil {
			return fmt.Errorf("failed to write unprocessed list: %w", err)
		}
	}

	cli.PrintSummary(os.Stdout, cli.RunStats{
		Total:           result.Reconciliation.TotalInput,
		Batches:         result.Batches,
		BatchSize:       viper.GetInt("generate.batch_size"),
		FailedBatches:   result.FailedBatches,
		Processed:       result.Reconciliation.TotalInput - len(result.Reconciliation.Unprocessed),
		Unprocessed:     len(result.Reconciliation.Unprocessed),
		OutputPath:      outputMD,
		OutputURLPath:   outputURLMD,
		UnprocessedPath: outputUnprocessed,
	})

	return nil
}

func githubRepo() (string, string) {
	owner := viper.GetString("github.owner")
	if owner == "" {
		owner = "pytorch"
	}
	repo := viper.GetString("github.repo")
	if repo == "" {
		repo = "pytorch"
	}
	return owner, repo
}

// openStore opens the run-history database unless disabled by setting
// database.path to an empty string.
func openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := "~/.local/share/relnotes/relnotes.db"
	if viper.IsSet("database.path") {
		dbPath = viper.GetString("database.path")
	}
	if dbPath == "" {
		return nil, nil
	}

	store, err := storage.NewSQLiteStore(config.ExpandPath(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate run history: %w", err)
	}
	return store, nil
}
