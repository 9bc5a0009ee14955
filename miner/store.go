package miner

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/teranos/graphminer/db"
	"github.com/teranos/graphminer/errors"
)

// Store persists mining runs in the mining_runs table
type Store struct {
	db *sql.DB
}

// NewStore creates a run store over a migrated database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `id, batch_id, repository, dataset, stored_name, status, error,
	urls, parameters, summary, citations, started_at, completed_at, created_at, updated_at`

// encoded JSON columns of a run
type encoded struct {
	urls, parameters, summary, citations sql.NullString
}

func encodeJSON(v interface{}, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func encode(run *Run) (encoded, error) {
	var e encoded
	var err error
	if e.urls, err = encodeJSON(run.URLs, len(run.URLs) > 0); err != nil {
		return e, errors.Wrap(err, "failed to marshal urls")
	}
	if e.parameters, err = encodeJSON(run.Parameters, run.Parameters != nil); err != nil {
		return e, errors.Wrap(err, "failed to marshal parameters")
	}
	if e.summary, err = encodeJSON(run.Summary, run.Summary != nil); err != nil {
		return e, errors.Wrap(err, "failed to marshal summary")
	}
	if e.citations, err = encodeJSON(run.Citations, len(run.Citations) > 0); err != nil {
		return e, errors.Wrap(err, "failed to marshal citations")
	}
	return e, nil
}

// Create inserts a new run
func (s *Store) Create(ctx context.Context, run *Run) error {
	e, err := encode(run)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO mining_runs (
			id, batch_id, repository, dataset, stored_name, status, error,
			urls, parameters, summary, citations,
			started_at, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.BatchID,
		run.Repository,
		run.Dataset,
		run.StoredName,
		run.Status,
		run.Error,
		e.urls,
		e.parameters,
		e.summary,
		e.citations,
		run.StartedAt,
		run.CompletedAt,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return storeError(err, "failed to create run")
	}
	return nil
}

// Update rewrites the mutable fields of a run
func (s *Store) Update(ctx context.Context, run *Run) error {
	e, err := encode(run)
	if err != nil {
		return err
	}

	query := `
		UPDATE mining_runs
		SET stored_name = ?,
		    status = ?,
		    error = ?,
		    urls = ?,
		    parameters = ?,
		    summary = ?,
		    citations = ?,
		    started_at = ?,
		    completed_at = ?,
		    updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		run.StoredName,
		run.Status,
		run.Error,
		e.urls,
		e.parameters,
		e.summary,
		e.citations,
		run.StartedAt,
		run.CompletedAt,
		run.UpdatedAt,
		run.ID,
	)
	if err != nil {
		return storeError(err, "failed to update run")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("run not found: %s", run.ID)
	}
	return nil
}

// Get retrieves a run by ID
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	query := `SELECT ` + selectColumns + ` FROM mining_runs WHERE id = ?`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("run not found: %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get run")
	}
	return run, nil
}

// ListOptions filters List. Zero values match everything.
type ListOptions struct {
	Status     Status
	Repository string
	BatchID    string
	Limit      int
}

// List returns runs, newest first
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Run, error) {
	var where []string
	var args []interface{}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Repository != "" {
		where = append(where, "repository = ?")
		args = append(args, opts.Repository)
	}
	if opts.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, opts.BatchID)
	}

	query := `SELECT ` + selectColumns + ` FROM mining_runs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating runs")
	}
	return runs, nil
}

// Counts returns the number of runs per status in a batch
func (s *Store) Counts(ctx context.Context, batchID string) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM mining_runs WHERE batch_id = ? GROUP BY status`, batchID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count runs")
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan count")
		}
		counts[status] = n
	}
	return counts, errors.Wrap(rows.Err(), "error iterating counts")
}

// storeError wraps a write failure, marking a closed database so the miner
// can tell an interrupted command apart from a bad row
func storeError(err error, msg string) error {
	if db.IsDatabaseClosed(err) {
		err = errors.Mark(err, db.ErrDatabaseClosed)
	}
	return errors.Wrap(err, msg)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var e encoded
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.BatchID,
		&run.Repository,
		&run.Dataset,
		&run.StoredName,
		&run.Status,
		&run.Error,
		&e.urls,
		&e.parameters,
		&e.summary,
		&e.citations,
		&startedAt,
		&completedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	for _, col := range []struct {
		name string
		src  sql.NullString
		dst  interface{}
	}{
		{"urls", e.urls, &run.URLs},
		{"parameters", e.parameters, &run.Parameters},
		{"summary", e.summary, &run.Summary},
		{"citations", e.citations, &run.Citations},
	} {
		if !col.src.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(col.src.String), col.dst); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal %s of run %s", col.name, run.ID)
		}
	}
	return &run, nil
}
