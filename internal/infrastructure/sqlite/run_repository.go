package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/govkit/internal/domain/audit"
)

const runColumns = `id, command, repo_root, passed, messages, trace_id, started_at, finished_at`

// runRepository implements audit.Repository using SQLite.
type runRepository struct {
	db *sql.DB
}

func newRunRepository(db *sql.DB) *runRepository {
	return &runRepository{db: db}
}

var _ audit.Repository = (*runRepository)(nil)

func scanRun(scanner interface{ Scan(...any) error }) (*audit.Run, error) {
	var m RunModel
	if err := scanner.Scan(&m.ID, &m.Command, &m.RepoRoot, &m.Passed, &m.Messages, &m.TraceID, &m.StartedAt, &m.FinishedAt); err != nil {
		return nil, err
	}
	run, err := m.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", m.ID, err)
	}
	return run, nil
}

// Save inserts the run, replacing any row with the same id.
func (r *runRepository) Save(ctx context.Context, run *audit.Run) error {
	m, err := toRunModel(run)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Command, m.RepoRoot, m.Passed, m.Messages, m.TraceID, m.StartedAt, m.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// FindByID returns the run with id, or audit.ErrRunNotFound.
func (r *runRepository) FindByID(ctx context.Context, id string) (*audit.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", audit.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (r *runRepository) Recent(ctx context.Context, limit int) ([]*audit.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []*audit.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
