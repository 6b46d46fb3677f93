package model

import "strings"

// Canonical section headings recognized in categorization output.
const (
	SectionImprovements  = "Improvements"
	SectionBugFixes      = "Bug Fixes"
	SectionNewFeatures   = "New Features"
	SectionDeprecations  = "Deprecations"
	SectionBCBreaking    = "BC Breaking"
	SectionPerformance   = "Performance"
	SectionDocumentation = "Documentation"
	SectionDevelopers    = "Developers"
)

// SectionOrder is the fixed order sections appear in rendered documents,
// regardless of the order the engine emitted them.
var SectionOrder = []string{
	SectionImprovements,
	SectionBugFixes,
	SectionNewFeatures,
	SectionDeprecations,
	SectionBCBreaking,
	SectionPerformance,
	SectionDocumentation,
	SectionDevelopers,
}

// sectionAliases maps normalized heading spellings to canonical names.
// Keys are lowercased with underscores replaced by spaces, so variants
// like "New_features" and "BC breaking" resolve without extra entries.
var sectionAliases = map[string]string{
	"improvements":     SectionImprovements,
	"bug fixes":        SectionBugFixes,
	"bugfixes":         SectionBugFixes,
	"new features":     SectionNewFeatures,
	"deprecations":     SectionDeprecations,
	"bc breaking":      SectionBCBreaking,
	"breaking changes": SectionBCBreaking,
	"performance":      SectionPerformance,
	"documentation":    SectionDocumentation,
	"developers":       SectionDevelopers,
}

// NormalizeSection resolves a raw heading from engine output to one of
// the eight canonical section names. It tolerates surrounding whitespace,
// a missing or present trailing colon, underscores, and case variations.
// Returns false for headings outside the recognized taxonomy.
func NormalizeSection(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	key = strings.TrimSuffix(key, ":")
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "_", " ")
	key = strings.Join(strings.Fields(key), " ")

	canonical, ok := sectionAliases[key]
	return canonical, ok
}

// CategorizedSection is one parsed section of the engine's response: a
// canonical heading and the bullet texts collected under it.
type CategorizedSection struct {
	Heading string
	Bullets []string
}

// ReconciliationResult is the outcome of diffing the final rendered
// document against the accepted input entries.
type ReconciliationResult struct {
	Processed   map[int]struct{}
	Unprocessed []Entry
	TotalInput  int
}
