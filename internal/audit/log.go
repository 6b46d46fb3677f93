// Package audit appends raw categorization-engine responses to a
// persistent log so every run can be replayed and inspected afterwards.
package audit

import (
	"fmt"
	"os"
	"time"
)

// timestampLayout matches the header format of existing response logs.
const timestampLayout = "2006-01-02 15:04:05"

// Log is an append-only, timestamped record of raw engine responses.
// It is written by the single pipeline goroutine.
type Log struct {
	file *os.File
	now  func() time.Time
}

// Open opens (or creates) the audit log at path for appending.
func Open(path string) (*Log, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &Log{
		file: file,
		now:  time.Now,
	}, nil
}

// Append writes one raw response verbatim under a timestamp header.
func (l *Log) Append(raw string) error {
	entry := fmt.Sprintf("\n### %s\n%s\n", l.now().Format(timestampLayout), raw)
	if _, err := l.file.WriteString(entry); err != nil {
		return fmt.Errorf("failed to append to audit log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	return l.file.Close()
}
