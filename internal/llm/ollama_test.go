package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaComplete(t *testing.T) {
	t.Run("collects streamed response parts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/generate", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req["model"])

			chunks := []string{
				`{"response":"## Improvements:\n"}`,
				`{"response":"- Fix X (#100)."}`,
				`{"response":"","done":true}`,
				`{"response":"ignored after done"}`,
			}
			for _, chunk := range chunks {
				_, _ = w.Write([]byte(chunk + "\n"))
			}
		}))
		defer server.Close()

		client, err := newOllamaClient(Config{BaseURL: server.URL, Model: "test-model"})
		require.NoError(t, err)

		got, err := client.Complete(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "## Improvements:\n- Fix X (#100).", got)
	})

	t.Run("skips undecodable chunks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json\n"))
			_, _ = w.Write([]byte(`{"response":"ok","done":true}` + "\n"))
		}))
		defer server.Close()

		client, err := newOllamaClient(Config{BaseURL: server.URL})
		require.NoError(t, err)

		got, err := client.Complete(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		client, err := newOllamaClient(Config{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), "prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("context cancellation aborts the request", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			close(started)
			<-release
		}))
		defer server.Close()
		defer close(release)

		client, err := newOllamaClient(Config{BaseURL: server.URL})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-started
			cancel()
		}()

		_, err = client.Complete(ctx, "prompt")
		require.Error(t, err)
	})
}
