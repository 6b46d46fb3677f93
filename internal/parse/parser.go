// Package parse turns the raw pull-request list into entries and batches.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/harper-ld/relnotes/internal/common"
	"github.com/harper-ld/relnotes/internal/model"
)

var (
	// refPattern matches the mandatory trailing reference, e.g. "(#137164)".
	refPattern = regexp.MustCompile(`\(#(\d+)\)$`)
	// tagRunPattern matches the optional run of leading tags. The first
	// "]" closes a tag; nested brackets are not supported.
	tagRunPattern = regexp.MustCompile(`^(?:\[[^\]]*\])+`)
	// tagPattern extracts individual tag names from a tag run.
	tagPattern = regexp.MustCompile(`\[([^\]]*)\]`)
)

// ParseLine parses a single input line into an Entry. The accepted
// grammar is an optional run of bracketed tags, a title, and a trailing
// "(#<digits>)" reference at end of line.
func ParseLine(line string) (model.Entry, error) {
	trimmed := strings.TrimSpace(line)

	ref := refPattern.FindStringSubmatchIndex(trimmed)
	if ref == nil {
		return model.Entry{}, fmt.Errorf("%w: %q", common.ErrLineRejected, trimmed)
	}

	number, err := strconv.Atoi(trimmed[ref[2]:ref[3]])
	if err != nil || number <= 0 {
		return model.Entry{}, fmt.Errorf("%w: bad reference in %q", common.ErrLineRejected, trimmed)
	}

	var tags []string
	tagEnd := 0
	if run := tagRunPattern.FindString(trimmed); run != "" {
		for _, m := range tagPattern.FindAllStringSubmatch(run, -1) {
			tags = append(tags, m[1])
		}
		tagEnd = len(run)
	}

	title := strings.TrimSpace(trimmed[tagEnd:ref[0]])

	return model.Entry{
		Tags:       tags,
		Title:      title,
		Number:     number,
		SourceLine: trimmed,
	}, nil
}

// ReadList reads the input file line by line. Blank lines are silently
// skipped; lines that fail the grammar are warned about and excluded from
// all downstream processing, including reconciliation totals.
func ReadList(r io.Reader) ([]model.Entry, error) {
	var entries []model.Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := ParseLine(line)
		if err != nil {
			slog.Warn("Skipping line that does not match expected format",
				"line_number", lineNo,
				"line", line)
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return entries, nil
}
