package render

import (
	"regexp"
	"strconv"

	"github.com/harper-ld/relnotes/internal/model"
)

// plainRefPattern matches the "(#N)" references the plain document emits.
var plainRefPattern = regexp.MustCompile(`\(#(\d+)\)`)

// Reconcile diffs the final rendered plain document against the accepted
// input entries. It is computed from the rendered text rather than from
// in-memory bookkeeping because the engine may silently merge, omit, or
// refuse entries; what made it into the text is the only source of truth.
// Every identifier a bullet mentions is credited, and reconciliation is
// identifier-level: duplicate input entries sharing a mentioned number
// are all marked processed.
func Reconcile(document string, entries []model.Entry) model.ReconciliationResult {
	processed := make(map[int]struct{})
	for _, m := range plainRefPattern.FindAllStringSubmatch(document, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			processed[n] = struct{}{}
		}
	}

	var unprocessed []model.Entry
	for _, entry := range entries {
		if _, ok := processed[entry.Number]; !ok {
			unprocessed = append(unprocessed, entry)
		}
	}

	return model.ReconciliationResult{
		TotalInput:  len(entries),
		Processed:   processed,
		Unprocessed: unprocessed,
	}
}
