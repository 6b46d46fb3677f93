package llm

import (
	"log/slog"
	"strings"

	"github.com/harper-ld/relnotes/internal/model"
)

// ParseSections parses the engine's raw response into categorized
// sections. The response is free-form natural language and is not
// guaranteed to match the requested structure, so parsing is best-effort:
// heading case, underscores, and missing colons are tolerated, unknown
// headings are dropped with a warning, and lines under a recognized
// heading that are not list items are dropped with a warning.
func ParseSections(raw string) []model.CategorizedSection {
	var sections []model.CategorizedSection
	index := make(map[string]int)
	current := ""
	known := true

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "## ") {
			heading, ok := model.NormalizeSection(line[3:])
			if !ok {
				slog.Warn("Dropping unknown category heading", "heading", strings.TrimSpace(line[3:]))
				current, known = "", false
				continue
			}
			current, known = heading, true
			if _, exists := index[heading]; !exists {
				index[heading] = len(sections)
				sections = append(sections, model.CategorizedSection{Heading: heading})
			}
			continue
		}

		bullet, isBullet := cutBullet(line)
		if current == "" {
			if known && isBullet {
				slog.Warn("Dropping bullet outside any recognized section", "line", line)
			}
			continue
		}
		if !isBullet {
			slog.Warn("Dropping line that does not parse as a list item", "line", line)
			continue
		}

		i := index[current]
		sections[i].Bullets = append(sections[i].Bullets, bullet)
	}

	return sections
}

// cutBullet strips a leading list marker. Both "-" and "*" are accepted.
func cutBullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}
