package sheet

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/roster/internal/domain/model"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteSheet stores one named sheet in a SQLite database.
// The database is configured with WAL mode and a single connection.
type SQLiteSheet struct {
	db     *sql.DB
	name   string
	closed atomic.Bool
}

var _ Sheet = (*SQLiteSheet)(nil)

// OpenSQLite opens (creating if needed) the database at path. The sheet
// itself is created by Init.
func OpenSQLite(path, name string) (*SQLiteSheet, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return &SQLiteSheet{db: db, name: name}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteSheet) Init(ctx context.Context) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return false, fmt.Errorf("init sheet: schema: %w", err)
	}

	header, err := json.Marshal(model.Header)
	if err != nil {
		return false, fmt.Errorf("init sheet: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sheets (name, header, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, s.name, string(header), model.FormatTimestamp(time.Now()))
	if err != nil {
		return false, fmt.Errorf("init sheet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("init sheet: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteSheet) Header(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT header FROM sheets WHERE name = ?`, s.name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || isMissingTable(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var header []string
	if err := json.Unmarshal([]byte(raw), &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return header, nil
}

func (s *SQLiteSheet) Contains(ctx context.Context, id string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM sheet_rows WHERE sheet = ? AND matricule = ?`, s.name, id).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case isMissingTable(err):
		return false, ErrNotInitialized
	case err != nil:
		return false, fmt.Errorf("contains: %w", err)
	}
	return true, nil
}

// Append uses ON CONFLICT DO NOTHING; zero affected rows means the
// matricule was already present.
func (s *SQLiteSheet) Append(ctx context.Context, row model.Row) error {
	if s.closed.Load() {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sheet_rows (sheet, matricule, name, work_area, technologies, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sheet, matricule) DO NOTHING
	`, s.name, row.ID, row.Name, row.WorkArea, row.Technologies, row.SubmittedAt)
	if isMissingTable(err) {
		return ErrNotInitialized
	}
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLiteSheet) Rows(ctx context.Context) ([]model.Row, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT matricule, name, work_area, technologies, submitted_at
		FROM sheet_rows WHERE sheet = ? ORDER BY seq
	`, s.name)
	if isMissingTable(err) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	defer rows.Close()

	out := []model.Row{}
	for rows.Next() {
		var r model.Row
		if err := rows.Scan(&r.ID, &r.Name, &r.WorkArea, &r.Technologies, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteSheet) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_rows WHERE sheet = ?`, s.name).Scan(&n)
	if isMissingTable(err) {
		return 0, ErrNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

func (s *SQLiteSheet) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
