package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-chi-calculator/internal/engine"

	_ "modernc.org/sqlite"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
    id              TEXT PRIMARY KEY,
    version         INTEGER NOT NULL,
    accumulator     TEXT,
    pending         TEXT,
    operator        TEXT NOT NULL,
    entering        INTEGER NOT NULL,
    just_evaluated  INTEGER NOT NULL,
    operand_entered INTEGER NOT NULL,
    display         TEXT NOT NULL,
    history         TEXT NOT NULL,
    created_at      DATETIME NOT NULL,
    updated_at      DATETIME NOT NULL
)`

const selectSession = `
SELECT id, version, accumulator, pending, operator, entering, just_evaluated,
    operand_entered, display, history, created_at, updated_at
FROM sessions WHERE id = ?`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite. Operands are stored as text so
// that Inf and NaN results survive a round trip.
type SQLiteStore struct {
	db *sql.DB
}

// sqlitePragmas are applied by the driver to every pooled connection.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// writers queue on the pool instead of failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createSessionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + sqlitePragmas
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts a new session at version 1.
func (s *SQLiteStore) Create(ctx context.Context, sess Session) error {
	st := sess.State
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (
			id, version, accumulator, pending, operator, entering, just_evaluated,
			operand_entered, display, history, created_at, updated_at
		) VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, encodeNumber(st.Accumulator), encodeNumber(st.Pending), string(st.Operator),
		st.EnteringSecondOperand, st.JustEvaluated, st.OperandEntered, st.Display, st.History,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %q", ErrExists, sess.ID)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx, selectSession, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Update writes sess if the stored version still matches sess.Version.
func (s *SQLiteStore) Update(ctx context.Context, sess Session) (Session, error) {
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = time.Now().UTC()
	}
	st := sess.State

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET
			version = version + 1, accumulator = ?, pending = ?, operator = ?,
			entering = ?, just_evaluated = ?, operand_entered = ?, display = ?,
			history = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		encodeNumber(st.Accumulator), encodeNumber(st.Pending), string(st.Operator),
		st.EnteringSecondOperand, st.JustEvaluated, st.OperandEntered, st.Display,
		st.History, sess.UpdatedAt, sess.ID, sess.Version,
	)
	if err != nil {
		return Session{}, fmt.Errorf("update session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Session{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		current, err := s.Get(ctx, sess.ID)
		if err != nil {
			return Session{}, err
		}
		return Session{}, fmt.Errorf(
			"%w: session %q expected version %d, got %d",
			ErrVersionConflict,
			sess.ID,
			current.Version,
			sess.Version,
		)
	}

	return s.Get(ctx, sess.ID)
}

// Delete removes a session.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored sessions.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func scanSession(row *sql.Row) (Session, error) {
	var (
		sess         Session
		acc, pending sql.NullString
		op           string
	)
	err := row.Scan(
		&sess.ID, &sess.Version, &acc, &pending, &op,
		&sess.State.EnteringSecondOperand, &sess.State.JustEvaluated, &sess.State.OperandEntered,
		&sess.State.Display, &sess.State.History, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return Session{}, err
	}

	sess.State.Operator = engine.Operator(op)
	if sess.State.Accumulator, err = decodeNumber(acc); err != nil {
		return Session{}, fmt.Errorf("decode accumulator: %w", err)
	}
	if sess.State.Pending, err = decodeNumber(pending); err != nil {
		return Session{}, fmt.Errorf("decode pending: %w", err)
	}
	return sess, nil
}

func encodeNumber(p *float64) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strconv.FormatFloat(*p, 'g', -1, 64), Valid: true}
}

func decodeNumber(ns sql.NullString) (*float64, error) {
	if !ns.Valid {
		return nil, nil
	}
	v, err := strconv.ParseFloat(ns.String, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
