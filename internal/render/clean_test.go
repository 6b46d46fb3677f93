package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDocument(t *testing.T) {
	t.Run("drops tags matching the current section", func(t *testing.T) {
		doc := "## Documentation:\n- [documentation][inductor] Updates the docs (#1)."

		cleaned, changes := CleanDocument(doc)
		require.Len(t, changes, 1)
		assert.Contains(t, cleaned, "- [inductor] Updates the docs (#1).")
		assert.NotContains(t, cleaned, "[documentation]")
	})

	t.Run("drops duplicate tags case-insensitively", func(t *testing.T) {
		doc := "## Improvements:\n- [inductor][Inductor][AOTI] Improves things (#2)."

		cleaned, changes := CleanDocument(doc)
		require.Len(t, changes, 1)
		assert.Contains(t, cleaned, "- [inductor] [AOTI] Improves things (#2).")
	})

	t.Run("drops empty tags", func(t *testing.T) {
		doc := "## Improvements:\n- [][inductor] Improves things (#3)."

		cleaned, _ := CleanDocument(doc)
		assert.Contains(t, cleaned, "- [inductor] Improves things (#3).")
	})

	t.Run("non-bullet lines pass through untouched", func(t *testing.T) {
		doc := "## Improvements:\n\nSome prose.\n- [x][x] Bullet (#4)."

		cleaned, changes := CleanDocument(doc)
		require.Len(t, changes, 1)
		assert.Contains(t, cleaned, "\nSome prose.\n")
	})

	t.Run("already-clean documents report no changes", func(t *testing.T) {
		doc := "## Bug Fixes:\n- [inductor] Fixes it (#5)."

		cleaned, changes := CleanDocument(doc)
		assert.Empty(t, changes)
		assert.Equal(t, doc, cleaned)
	})
}
