package render

import (
	"strings"
)

// CleanChange records one line rewritten by CleanDocument.
type CleanChange struct {
	Before string
	After  string
	Line   int
}

// CleanDocument post-processes a generated document, dropping redundant
// tags from its bullets: empty tags, duplicate tags (case-insensitive),
// and tags that merely repeat the current section heading. Non-bullet
// lines pass through untouched.
func CleanDocument(text string) (string, []CleanChange) {
	var out []string
	var changes []CleanChange
	currentSection := ""

	for i, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "##") {
			currentSection = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(strings.TrimLeft(line, "#")), ":"))
			out = append(out, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			out = append(out, line)
			continue
		}

		cleaned := cleanBulletTags(trimmed, currentSection)
		if cleaned != line {
			changes = append(changes, CleanChange{Line: i + 1, Before: line, After: cleaned})
		}
		out = append(out, cleaned)
	}

	return strings.Join(out, "\n"), changes
}

func cleanBulletTags(line, currentSection string) string {
	tags := tagPattern.FindAllStringSubmatch(line, -1)
	content := strings.TrimSpace(tagPattern.ReplaceAllString(line, ""))
	content = strings.TrimSpace(strings.TrimLeft(content, "- "))

	seen := make(map[string]struct{})
	var kept []string
	for _, m := range tags {
		tag := strings.TrimSpace(m[1])
		key := strings.ToLower(tag)
		if key == "" || key == currentSection {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, "["+tag+"]")
	}

	rebuilt := "- " + strings.Join(kept, " ")
	if len(kept) > 0 {
		rebuilt += " "
	}
	return rebuilt + content
}
