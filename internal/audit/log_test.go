package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	t.Run("appends responses under timestamp headers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "responses.log")

		log, err := Open(path)
		require.NoError(t, err)
		log.now = func() time.Time {
			return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		}

		require.NoError(t, log.Append("## Improvements:\n- Fix X (#100)."))
		require.NoError(t, log.Append("second response"))
		require.NoError(t, log.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(data)
		assert.Contains(t, content, "### 2025-01-02 03:04:05\n## Improvements:\n- Fix X (#100).\n")
		assert.Contains(t, content, "second response")
	})

	t.Run("reopening preserves earlier entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "responses.log")

		log, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, log.Append("first"))
		require.NoError(t, log.Close())

		log, err = Open(path)
		require.NoError(t, err)
		require.NoError(t, log.Append("second"))
		require.NoError(t, log.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "first")
		assert.Contains(t, string(data), "second")
	})

	t.Run("unwritable path is an error", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing", "responses.log"))
		require.Error(t, err)
	})
}
