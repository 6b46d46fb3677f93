package parse

import "github.com/harper-ld/relnotes/internal/model"

// DefaultBatchSize is the number of entries submitted per categorization
// request when no size is configured.
const DefaultBatchSize = 5

// MakeBatches partitions entries into contiguous windows of the given
// size, preserving original order. The final window holds the remainder.
func MakeBatches(entries []model.Entry, size int) []model.Batch {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var batches []model.Batch
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, model.Batch{
			Index:   len(batches),
			Entries: entries[start:end],
		})
	}

	return batches
}
