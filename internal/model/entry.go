// Package model defines the core domain types shared across the application.
package model

import "fmt"

// Entry is one parsed change reference from the input list: its bracketed
// tags, the title between the tags and the trailing reference, and the
// pull-request number from that reference.
type Entry struct {
	Title      string
	SourceLine string
	Tags       []string
	Number     int
}

// Ref renders the entry's plain reference suffix, e.g. "(#137164)".
func (e Entry) Ref() string {
	return fmt.Sprintf("(#%d)", e.Number)
}

// Comment is a single non-bot discussion comment on a pull request.
type Comment struct {
	User string
	Body string
}

// Detail holds the supplementary context fetched from the issue tracker
// for one pull request.
type Detail struct {
	Title    string
	Body     string
	Comments []Comment
}

// EnrichedEntry pairs an entry with whatever detail could be fetched for
// it. Detail is nil when the lookup failed and the entry proceeds with
// only its title and tags.
type EnrichedEntry struct {
	Detail *Detail
	Entry
}

// Batch is a contiguous, order-preserving window of entries submitted to
// the categorization engine in a single request.
type Batch struct {
	Entries []Entry
	Index   int
}
