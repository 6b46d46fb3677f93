package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/harper-ld/relnotes/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	entries := []model.EnrichedEntry{
		{
			Entry: model.Entry{
				Tags:       []string{"inductor", "AOTI"},
				Title:      "Paged Attention",
				Number:     137164,
				SourceLine: "[inductor][AOTI] Paged Attention (#137164)",
			},
			Detail: &model.Detail{
				Title: "Paged Attention for FlexAttention",
				Body:  "Implements paged attention support.",
				Comments: []model.Comment{
					{User: "reviewer", Body: "Looks good overall."},
				},
			},
		},
		{
			Entry: model.Entry{
				Title:      "Fix flaky test",
				Number:     137201,
				SourceLine: "Fix flaky test (#137201)",
			},
		},
	}

	prompt := BuildPrompt(entries)

	t.Run("carries the taxonomy and format instructions", func(t *testing.T) {
		for _, heading := range model.SectionOrder {
			assert.Contains(t, prompt, heading)
		}
		assert.Contains(t, prompt, "- [Tags] one sentence summary of the PR (#PR_Number)")
	})

	t.Run("includes every source line", func(t *testing.T) {
		assert.Contains(t, prompt, "- [inductor][AOTI] Paged Attention (#137164)")
		assert.Contains(t, prompt, "- Fix flaky test (#137201)")
	})

	t.Run("includes enrichment context when present", func(t *testing.T) {
		assert.Contains(t, prompt, "Title: Paged Attention for FlexAttention")
		assert.Contains(t, prompt, "Description: Implements paged attention support.")
		assert.Contains(t, prompt, "Comment (reviewer): Looks good overall.")
	})

	t.Run("degraded entries appear with only their source line", func(t *testing.T) {
		tail := prompt[strings.Index(prompt, "- Fix flaky test"):]
		assert.NotContains(t, tail, "Description:")
	})
}

func TestTruncate(t *testing.T) {
	t.Run("long bodies are truncated", func(t *testing.T) {
		long := strings.Repeat("x", maxBodyLen+100)
		got := truncate(long, maxBodyLen)
		assert.Len(t, got, maxBodyLen+3)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("newlines are flattened", func(t *testing.T) {
		assert.Equal(t, "a b", truncate("a\nb", 100))
	})

	t.Run("multi-byte runes are never split", func(t *testing.T) {
		// é is two bytes; a limit of 5 lands mid-rune
		got := truncate("abcdéfgh", 5)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "abcd...", got)
	})
}
