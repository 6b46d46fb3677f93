package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harper-ld/relnotes/internal/model"
	"github.com/harper-ld/relnotes/internal/service"
)

// BeginRun records the start of a pipeline run and returns its id.
func (s *SQLiteStore) BeginRun(ctx context.Context, inputPath string, total, batchSize int) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (input_path, total, batch_size) VALUES (?, ?, ?)`,
		inputPath, total, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to record run start: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// RecordResponse stores one batch's raw engine response.
func (s *SQLiteStore) RecordResponse(ctx context.Context, runID int64, batchIndex int, raw string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (run_id, batch_index, raw) VALUES (?, ?, ?)`,
		runID, batchIndex, raw)
	if err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}
	return nil
}

// RecordUnprocessed stores the entries that never made it into the final
// document for this run.
func (s *SQLiteStore) RecordUnprocessed(ctx context.Context, runID int64, entries []model.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, entry := range entries {
		if _, execErr := tx.ExecContext(ctx,
			`INSERT INTO unprocessed (run_id, number, source_line) VALUES (?, ?, ?)`,
			runID, entry.Number, entry.SourceLine); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record unprocessed entry: %w", execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unprocessed entries: %w", err)
	}
	return nil
}

// FinishRun records the final counts for a run.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID int64, processed, unprocessed int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET processed = ?, unprocessed = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`,
		processed, unprocessed, runID)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// ListRuns returns all recorded runs, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]service.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, total, batch_size,
		        COALESCE(processed, 0), COALESCE(unprocessed, 0),
		        started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []service.RunRecord
	for rows.Next() {
		var record service.RunRecord
		var finishedAt sql.NullTime
		if scanErr := rows.Scan(&record.ID, &record.InputPath, &record.Total,
			&record.BatchSize, &record.Processed, &record.Unprocessed,
			&record.StartedAt, &finishedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan run: %w", scanErr)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			record.FinishedAt = &t
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return records, nil
}
