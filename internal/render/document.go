// Package render assembles categorized sections into the final Markdown
// documents, enforcing the tag-preservation contract along the way.
package render

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/harper-ld/relnotes/internal/model"
)

var (
	// idPattern finds every identifier mentioned anywhere in a bullet,
	// covering "(#N)", "[#N](...)", and bare "#N" forms.
	idPattern = regexp.MustCompile(`#(\d+)\b`)
	// trailingRefPattern matches the reference a well-formed bullet ends
	// with, tolerating a trailing period.
	trailingRefPattern = regexp.MustCompile(`\s*\(#(\d+)\)\s*\.?\s*$`)
	// tagPattern extracts bracketed tags from a bullet.
	tagPattern = regexp.MustCompile(`\[([^\]]*)\]`)
)

// bullet is one rendered list item. number is zero when no identifier
// could be recovered, in which case raw is emitted verbatim and the
// bullet plays no part in reconciliation.
type bullet struct {
	summary string
	raw     string
	number  int
}

// Document accumulates categorized bullets across batches and renders
// them in the fixed canonical section order. It has a single owner (the
// run) and is written to by one goroutine.
type Document struct {
	sections map[string][]bullet
	linkBase string
}

// NewDocument creates an empty document. linkBase is the issue-tracker
// item URL prefix used by the hyperlinked rendering, e.g.
// "https://github.com/pytorch/pytorch/pull".
func NewDocument(linkBase string) *Document {
	return &Document{
		sections: make(map[string][]bullet),
		linkBase: strings.TrimSuffix(linkBase, "/"),
	}
}

// Append merges one batch's parsed sections into the document, applying
// the tag-preservation contract against the batch's source entries. Tags
// are caller-owned: whatever the engine did to them, the original entry's
// tags end up prefixing the bullet verbatim.
func (d *Document) Append(sections []model.CategorizedSection, entries []model.Entry) {
	byNumber := make(map[int]model.Entry, len(entries))
	for _, entry := range entries {
		byNumber[entry.Number] = entry
	}

	for _, section := range sections {
		for _, text := range section.Bullets {
			d.sections[section.Heading] = append(d.sections[section.Heading], makeBullet(text, byNumber))
		}
	}
}

func makeBullet(text string, byNumber map[int]model.Entry) bullet {
	ids := extractIDs(text)
	if len(ids) == 0 {
		slog.Warn("Bullet has no recoverable identifier, keeping as-is", "bullet", text)
		return bullet{raw: text}
	}

	summary := text
	number := ids[0]
	if m := trailingRefPattern.FindStringSubmatchIndex(text); m != nil {
		summary = text[:m[0]]
		number = mustAtoi(text[m[2]:m[3]])
	}

	entry, found := byNumber[number]
	if !found {
		// The engine referenced a number outside this batch; keep the
		// bullet but there are no source tags to restore.
		slog.Warn("No source entry for referenced identifier", "number", number)
		return bullet{summary: summary, number: number}
	}

	return bullet{summary: reinsertTags(summary, entry.Tags), number: number}
}

// reinsertTags rebuilds the bullet so the entry's original tags prefix it
// verbatim, in their original order, no matter how the engine rendered
// them. Bracketed tokens matching an entry tag (case-insensitively) are
// stripped from the engine's text first; tags the engine invented stay
// where they are.
func reinsertTags(summary string, tags []string) string {
	if len(tags) == 0 {
		return summary
	}

	owned := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		owned[strings.ToLower(tag)] = struct{}{}
	}

	stripped := tagPattern.ReplaceAllStringFunc(summary, func(m string) string {
		if _, ok := owned[strings.ToLower(m[1:len(m)-1])]; ok {
			return ""
		}
		return m
	})
	stripped = strings.Join(strings.Fields(stripped), " ")

	prefix := make([]string, len(tags))
	for i, tag := range tags {
		prefix[i] = "[" + tag + "]"
	}
	if stripped == "" {
		return strings.Join(prefix, "")
	}

	return strings.Join(prefix, "") + " " + stripped
}

// Markdown renders the plain document: canonical section order, each
// bullet suffixed with its "(#N)" reference.
func (d *Document) Markdown() string {
	return d.render(func(b bullet) string {
		return fmt.Sprintf("- %s (#%d).", b.summary, b.number)
	})
}

// MarkdownLinked renders the hyperlinked variant, identical except the
// reference becomes a Markdown link to the issue tracker's item page.
func (d *Document) MarkdownLinked() string {
	return d.render(func(b bullet) string {
		return fmt.Sprintf("- %s [#%d](%s/%d).", b.summary, b.number, d.linkBase, b.number)
	})
}

func (d *Document) render(format func(bullet) string) string {
	var b strings.Builder

	for _, heading := range model.SectionOrder {
		bullets := d.sections[heading]
		if len(bullets) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s:\n", heading)
		for _, item := range bullets {
			if item.number == 0 {
				fmt.Fprintf(&b, "- %s\n", item.raw)
				continue
			}
			b.WriteString(format(item))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	return strings.TrimSpace(b.String())
}

func extractIDs(text string) []int {
	var ids []int
	for _, m := range idPattern.FindAllStringSubmatch(text, -1) {
		ids = append(ids, mustAtoi(m[1]))
	}
	return ids
}

func mustAtoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
