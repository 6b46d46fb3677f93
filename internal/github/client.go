// Package github fetches pull-request detail from the GitHub API and
// handles its rate-limit protocol.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/harper-ld/relnotes/internal/common"
	"github.com/harper-ld/relnotes/internal/model"
)

const defaultBaseURL = "https://api.github.com"

// defaultBotUsers are comment authors excluded from enrichment context.
var defaultBotUsers = []string{
	"github-actions[bot]",
	"pytorch-bot[bot]",
	"pytorchmergebot",
}

// Config holds configuration for the GitHub client.
type Config struct {
	Owner     string
	Repo      string
	Token     string
	BaseURL   string
	BotUsers  []string
	Threshold int
}

// Client talks to the GitHub API for one repository.
type Client struct {
	httpClient *http.Client
	wait       func(ctx context.Context, d time.Duration) error
	bots       map[string]struct{}
	baseURL    string
	owner      string
	repo       string
	threshold  int
}

// NewClient creates a GitHub API client. When a token is configured, the
// underlying HTTP client carries it via oauth2.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github owner and repo are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 10
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = 30 * time.Second
	}

	botUsers := cfg.BotUsers
	if botUsers == nil {
		botUsers = defaultBotUsers
	}
	bots := make(map[string]struct{}, len(botUsers))
	for _, b := range botUsers {
		bots[b] = struct{}{}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		bots:       bots,
		threshold:  threshold,
		wait:       sleepContext,
	}, nil
}

// FetchDetail fetches the title, description, and non-bot discussion
// comments for a pull request. A failed comment lookup degrades to detail
// without comments rather than failing the whole fetch.
func (c *Client) FetchDetail(ctx context.Context, number int) (*model.Detail, error) {
	var pr struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, c.owner, c.repo, number)
	if err := c.getJSON(ctx, url, &pr); err != nil {
		return nil, fmt.Errorf("failed to fetch PR #%d: %w", number, err)
	}

	detail := &model.Detail{
		Title: pr.Title,
		Body:  pr.Body,
	}

	comments, err := c.fetchComments(ctx, number)
	if err != nil {
		slog.Warn("Failed to fetch PR comments, proceeding without them",
			"number", number,
			"error", err)
		return detail, nil
	}
	detail.Comments = comments

	return detail, nil
}

func (c *Client) fetchComments(ctx context.Context, number int) ([]model.Comment, error) {
	var raw []struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		Body string `json:"body"`
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, c.owner, c.repo, number)
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	var comments []model.Comment
	for _, comment := range raw {
		if _, isBot := c.bots[comment.User.Login]; isBot {
			continue
		}
		comments = append(comments, model.Comment{
			User: comment.User.Login,
			Body: comment.Body,
		})
	}

	return comments, nil
}

// getJSON performs a GET request, decodes the JSON body into out, and
// waits out the rate limit afterwards if quota is nearly exhausted. A
// request rejected for exhausted quota is retried once after the wait.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if waitErr := c.handleRateLimit(ctx, resp.Header); waitErr != nil {
			return waitErr
		}

		if attempt == 0 && quotaExhausted(resp.StatusCode, resp.Header) {
			slog.Info("Quota was exhausted, retrying after reset", "url", url)
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w (status %d)", common.ErrTrackerUnavailable, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("github API error (status %d): %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		return nil
	}
}

// quotaExhausted reports whether a response was rejected purely for
// rate-limit exhaustion, as opposed to a permission 403.
func quotaExhausted(status int, h http.Header) bool {
	if status != http.StatusForbidden && status != http.StatusTooManyRequests {
		return false
	}
	return h.Get("X-RateLimit-Remaining") == "0"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
