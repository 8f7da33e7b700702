package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/polyconst/internal/ir"
)

// Run is one `polyconst gen` invocation.
type Run struct {
	ID               string `json:"id"`
	Seq              int64  `json:"seq"`
	GeneratorVersion string `json:"generator_version"`
	Inputs           int    `json:"inputs"`
	Generated        int    `json:"generated"`
	Skipped          int    `json:"skipped"`
	Failed           int    `json:"failed"`
}

// Output is the cache record of one generated file.
type Output struct {
	Path             string `json:"path"`
	InputHash        string `json:"input_hash"`
	OutputHash       string `json:"output_hash"`
	GeneratorVersion string `json:"generator_version"`
	RunID            string `json:"run_id"`
}

// Runs returns every run in logical order.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, generator_version, inputs, generated, skipped, failed
		FROM runs
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.GeneratorVersion, &r.Inputs, &r.Generated, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("read runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	return runs, nil
}

// LookupOutput returns the record for path. The bool is false when the
// path has never been generated.
func (s *Store) LookupOutput(ctx context.Context, path string) (Output, bool, error) {
	var rec Output
	err := s.db.QueryRowContext(ctx, `
		SELECT path, input_hash, output_hash, generator_version, run_id
		FROM outputs
		WHERE path = ?
	`, path).Scan(&rec.Path, &rec.InputHash, &rec.OutputHash, &rec.GeneratorVersion, &rec.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return Output{}, false, nil
	}
	if err != nil {
		return Output{}, false, fmt.Errorf("lookup output %s: %w", path, err)
	}
	return rec, true, nil
}

// OutputsForRun returns the files written by a run, ordered by path.
func (s *Store) OutputsForRun(ctx context.Context, runID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, input_hash, output_hash, generator_version, run_id
		FROM outputs
		WHERE run_id = ?
		ORDER BY path ASC COLLATE BINARY
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read outputs: %w", err)
	}
	defer rows.Close()

	var outs []Output
	for rows.Next() {
		var rec Output
		if err := rows.Scan(&rec.Path, &rec.InputHash, &rec.OutputHash, &rec.GeneratorVersion, &rec.RunID); err != nil {
			return nil, fmt.Errorf("read outputs: %w", err)
		}
		outs = append(outs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read outputs: %w", err)
	}
	return outs, nil
}

// UpToDate reports whether the file at path was generated from inputHash
// by this generator version and has not changed since.
func (s *Store) UpToDate(ctx context.Context, path, inputHash string) (bool, error) {
	rec, ok, err := s.LookupOutput(ctx, path)
	if err != nil || !ok {
		return false, err
	}
	if rec.InputHash != inputHash || rec.GeneratorVersion != ir.GeneratorVersion {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return ir.OutputHash(data) == rec.OutputHash, nil
}
