package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/omicron/internal/segments"
	"github.com/me/omicron/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every :memory: connection is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// CreateRun inserts run and its segments in one transaction.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	state := run.State
	if state == "" {
		state = model.RunStateSubmitted
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, dag_path, cluster_id, rescue_path, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.DAGPath, run.ClusterID, run.RescuePath, string(state),
		run.CreatedAt.Format(time.RFC3339Nano), run.UpdatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return err
	}

	for i, seg := range run.Segments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_segments (run_id, seq, seg_start, seg_end) VALUES (?, ?, ?, ?)`,
			run.ID, i, seg.Start, seg.End,
		); err != nil {
			return fmt.Errorf("insert segment %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetRun returns the run with its segments, or nil if id is unknown.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, dag_path, cluster_id, rescue_path, state, created_at, updated_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.Segments, err = s.RunSegments(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the page of runs f selects, newest first and without
// their segments, together with the number of runs f matches overall.
func (s *SQLiteStore) ListRuns(ctx context.Context, f model.RunFilter) ([]*model.Run, int, error) {
	f = f.Normalized()
	s.logger.Debug("sql", "op", "list", "table", "runs", "state", f.State, "dag", f.DAGPath,
		"limit", f.Limit, "offset", f.Offset)

	where, args := runWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dag_path, cluster_id, rescue_path, state, created_at, updated_at
		 FROM runs`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

// runWhere renders the selectors of f as a WHERE clause (with a leading
// space) and its arguments.
func runWhere(f model.RunFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.State != "" {
		clauses = append(clauses, "state = ?")
		args = append(args, string(f.State))
	}
	if f.DAGPath != "" {
		clauses = append(clauses, "dag_path = ?")
		args = append(args, f.DAGPath)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// UpdateRunState sets the state of run id.
func (s *SQLiteStore) UpdateRunState(ctx context.Context, id string, state model.RunState) error {
	s.logger.Debug("sql", "op", "update", "table", "runs", "id", id, "state", state)

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET state = ?, updated_at = ? WHERE id = ?`,
		string(state), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// RunSegments returns the output segments recorded for run id, in order.
func (s *SQLiteStore) RunSegments(ctx context.Context, id string) (segments.List[int64], error) {
	s.logger.Debug("sql", "op", "select", "table", "run_segments", "run_id", id)

	rows, err := s.db.QueryContext(ctx,
		`SELECT seg_start, seg_end FROM run_segments WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := segments.List[int64]{}
	for rows.Next() {
		var seg segments.Segment[int64]
		if err := rows.Scan(&seg.Start, &seg.End); err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var state, createdAt, updatedAt string
	if err := row.Scan(&run.ID, &run.DAGPath, &run.ClusterID, &run.RescuePath,
		&state, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	run.State = model.RunState(state)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	run.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &run, nil
}
