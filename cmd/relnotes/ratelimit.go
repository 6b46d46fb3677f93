package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harper-ld/relnotes/internal/cli"
	"github.com/harper-ld/relnotes/internal/common"
	"github.com/harper-ld/relnotes/internal/github"
)

func ratelimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Show remaining GitHub API quota",
		Long:  `Probe the GitHub API and report the remaining request quota and when it resets.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := viper.GetString("github.token")
			if token == "" {
				return common.NewUserError("GITHUB_TOKEN is not set", common.ErrMissingConfig)
			}

			owner, repo := githubRepo()
			client, err := github.NewClient(github.Config{
				Owner: owner,
				Repo:  repo,
				Token: token,
			})
			if err != nil {
				return fmt.Errorf("failed to create GitHub client: %w", err)
			}

			status, err := client.RateLimit(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch rate limit: %w", err)
			}

			fmt.Fprintf(os.Stdout, "Remaining requests: %s\n",
				cli.BoldStyle.Render(fmt.Sprintf("%d", status.Remaining)))
			fmt.Fprintf(os.Stdout, "Rate limit resets at: %s\n",
				cli.SubtleStyle.Render(status.Reset.Format(time.RFC1123)))
			return nil
		},
	}
}
