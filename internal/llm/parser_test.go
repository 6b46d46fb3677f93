package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper-ld/relnotes/internal/model"
)

func TestParseSections(t *testing.T) {
	t.Run("well-formed response", func(t *testing.T) {
		raw := `## Improvements:
- [inductor] Adds broadcast support (#135505).
- [AOTI] Flips the default layout constraint (#135239).

## Bug Fixes:
- Fixes an edge case in remove_split_with_size_one (#135962).`

		sections := ParseSections(raw)
		require.Len(t, sections, 2)

		assert.Equal(t, model.SectionImprovements, sections[0].Heading)
		require.Len(t, sections[0].Bullets, 2)
		assert.Equal(t, "[inductor] Adds broadcast support (#135505).", sections[0].Bullets[0])

		assert.Equal(t, model.SectionBugFixes, sections[1].Heading)
		require.Len(t, sections[1].Bullets, 1)
	})

	t.Run("heading variations are normalized", func(t *testing.T) {
		raw := "## New_features\n- Adds a backend (#1).\n##   bug fixes :\n- Fixes it (#2)."

		sections := ParseSections(raw)
		require.Len(t, sections, 2)
		assert.Equal(t, model.SectionNewFeatures, sections[0].Heading)
		assert.Equal(t, model.SectionBugFixes, sections[1].Heading)
	})

	t.Run("unknown headings and their bullets are dropped", func(t *testing.T) {
		raw := `## Miscellaneous:
- Should be dropped (#9).

## Improvements:
- Should be kept (#10).`

		sections := ParseSections(raw)
		require.Len(t, sections, 1)
		assert.Equal(t, model.SectionImprovements, sections[0].Heading)
		require.Len(t, sections[0].Bullets, 1)
		assert.Contains(t, sections[0].Bullets[0], "#10")
	})

	t.Run("non-list lines inside a section are dropped", func(t *testing.T) {
		raw := `## Improvements:
Some narrative the model added.
- The actual bullet (#11).`

		sections := ParseSections(raw)
		require.Len(t, sections, 1)
		require.Len(t, sections[0].Bullets, 1)
	})

	t.Run("asterisk bullets are accepted", func(t *testing.T) {
		raw := "## Performance:\n* Speeds up the kernel (#12)."

		sections := ParseSections(raw)
		require.Len(t, sections, 1)
		assert.Equal(t, "Speeds up the kernel (#12).", sections[0].Bullets[0])
	})

	t.Run("repeated headings merge into one section", func(t *testing.T) {
		raw := "## Improvements:\n- First (#1).\n## Bug Fixes:\n- Fix (#2).\n## Improvements:\n- Second (#3)."

		sections := ParseSections(raw)
		require.Len(t, sections, 2)
		assert.Len(t, sections[0].Bullets, 2)
	})

	t.Run("empty response yields no sections", func(t *testing.T) {
		assert.Empty(t, ParseSections(""))
		assert.Empty(t, ParseSections("The model refused to answer."))
	})
}
