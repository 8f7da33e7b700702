package store

import (
	"context"
	"fmt"

	"github.com/roach88/polyconst/internal/ir"
)

// BeginRun records a new run with the next logical sequence number.
// The run's counters start at zero; FinishRun stores the final counts.
func (s *Store) BeginRun(ctx context.Context, id string) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("begin run: next seq: %w", err)
	}

	run := Run{ID: id, Seq: seq, GeneratorVersion: ir.GeneratorVersion}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, generator_version)
		VALUES (?, ?, ?)
	`, run.ID, run.Seq, run.GeneratorVersion)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET inputs = ?, generated = ?, skipped = ?, failed = ?
		WHERE id = ?
	`, run.Inputs, run.Generated, run.Skipped, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", run.ID)
	}
	return nil
}

// RecordOutput stores the hashes of a generated file, replacing any
// earlier record for the same path.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) RecordOutput(ctx context.Context, rec Output) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outputs (path, input_hash, output_hash, generator_version, run_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			input_hash = excluded.input_hash,
			output_hash = excluded.output_hash,
			generator_version = excluded.generator_version,
			run_id = excluded.run_id
	`, rec.Path, rec.InputHash, rec.OutputHash, rec.GeneratorVersion, rec.RunID)
	if err != nil {
		return fmt.Errorf("record output %s: %w", rec.Path, err)
	}
	return nil
}
