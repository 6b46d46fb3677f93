package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper-ld/relnotes/internal/common"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		Owner:   "pytorch",
		Repo:    "pytorch",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return client, server
}

func TestFetchDetail(t *testing.T) {
	t.Run("fetches title, body, and non-bot comments", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/pytorch/pytorch/pulls/100", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"title":"Fix X","body":"Detailed description"}`)
		})
		mux.HandleFunc("/repos/pytorch/pytorch/issues/100/comments", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[
				{"user":{"login":"alice"},"body":"Nice fix"},
				{"user":{"login":"pytorchmergebot"},"body":"Merged"},
				{"user":{"login":"github-actions[bot]"},"body":"CI passed"}
			]`)
		})

		client, _ := newTestClient(t, mux)

		detail, err := client.FetchDetail(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, "Fix X", detail.Title)
		assert.Equal(t, "Detailed description", detail.Body)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "alice", detail.Comments[0].User)
	})

	t.Run("comment failure degrades to detail without comments", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/pytorch/pytorch/pulls/100", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"title":"Fix X","body":""}`)
		})
		mux.HandleFunc("/repos/pytorch/pytorch/issues/100/comments", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		client, _ := newTestClient(t, mux)

		detail, err := client.FetchDetail(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, "Fix X", detail.Title)
		assert.Empty(t, detail.Comments)
	})

	t.Run("server errors mark the tracker unavailable", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		}))

		_, err := client.FetchDetail(context.Background(), 42)
		assert.ErrorIs(t, err, common.ErrTrackerUnavailable)
	})

	t.Run("PR lookup failure is an error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))

		_, err := client.FetchDetail(context.Background(), 42)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})
}

func TestHandleRateLimit(t *testing.T) {
	t.Run("waits until reset when quota is nearly exhausted", func(t *testing.T) {
		reset := time.Now().Add(30 * time.Second).Unix()
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "3")
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset))
			fmt.Fprint(w, `{"title":"t","body":""}`)
		}))

		var waited time.Duration
		client.wait = func(_ context.Context, d time.Duration) error {
			waited = d
			return nil
		}

		_, err := client.FetchDetail(context.Background(), 1)
		require.NoError(t, err)
		assert.Greater(t, waited, 25*time.Second)
		assert.LessOrEqual(t, waited, 30*time.Second+resetBuffer)
	})

	t.Run("exhausted quota waits and retries the request once", func(t *testing.T) {
		requests := 0
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests++
			if requests == 1 {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Unix()))
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", "5000")
			fmt.Fprint(w, `{"title":"t","body":""}`)
		}))

		waits := 0
		client.wait = func(_ context.Context, _ time.Duration) error {
			waits++
			return nil
		}

		detail, err := client.FetchDetail(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "t", detail.Title)
		assert.Equal(t, 1, waits)
		assert.GreaterOrEqual(t, requests, 2)
	})

	t.Run("permission 403 is not retried", func(t *testing.T) {
		requests := 0
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests++
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"Resource not accessible"}`)
		}))

		_, err := client.FetchDetail(context.Background(), 1)
		require.Error(t, err)
		// PR lookup only; the comments request never happens
		assert.Equal(t, 1, requests)
	})

	t.Run("no wait when quota is healthy", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "4000")
			fmt.Fprint(w, `{"title":"t","body":""}`)
		}))

		client.wait = func(_ context.Context, _ time.Duration) error {
			t.Fatal("should not wait")
			return nil
		}

		_, err := client.FetchDetail(context.Background(), 1)
		require.NoError(t, err)
	})

	t.Run("missing headers mean no wait", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"title":"t","body":""}`)
		}))

		client.wait = func(_ context.Context, _ time.Duration) error {
			t.Fatal("should not wait")
			return nil
		}

		_, err := client.FetchDetail(context.Background(), 1)
		require.NoError(t, err)
	})
}

func TestRateLimitStatus(t *testing.T) {
	reset := time.Now().Add(time.Hour).Truncate(time.Second)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/pytorch/pytorch/pulls", r.URL.Path)
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
		fmt.Fprint(w, `[]`)
	}))

	status, err := client.RateLimit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4999, status.Remaining)
	assert.True(t, status.Reset.Equal(reset))
}

func TestNewClient(t *testing.T) {
	t.Run("owner and repo are required", func(t *testing.T) {
		_, err := NewClient(Config{})
		require.Error(t, err)
	})

	t.Run("custom bot list replaces the default", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/o/r/pulls/1", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"title":"t","body":""}`)
		})
		mux.HandleFunc("/repos/o/r/issues/1/comments", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"user":{"login":"pytorchmergebot"},"body":"merged"},{"user":{"login":"custom-bot"},"body":"hi"}]`)
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		client, err := NewClient(Config{
			Owner:    "o",
			Repo:     "r",
			BaseURL:  server.URL,
			BotUsers: []string{"custom-bot"},
		})
		require.NoError(t, err)

		detail, err := client.FetchDetail(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "pytorchmergebot", detail.Comments[0].User)
	})
}
