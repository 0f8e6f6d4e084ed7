// Package history persists finished sessions in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/teslashibe/go-posecoach/pkg/session"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("session not found")

const columns = `id, profile_id, started_at_ms, ended_at_ms, elapsed_seconds,
	correct_held_seconds, accuracy, mean_score, score_std_dev, best_score, frames`

// DB is the session history database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (h *DB) Close() error {
	return h.db.Close()
}

// Record stores a finished session. A missing session ID is generated.
// Recording the same ID twice replaces the earlier row.
func (h *DB) Record(ctx context.Context, s session.Summary) (string, error) {
	if s.SessionID == "" {
		s.SessionID = uuid.New().String()
	}

	_, err := h.db.ExecContext(ctx, `INSERT OR REPLACE INTO sessions (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.ProfileID,
		s.StartedAt.UnixMilli(), s.EndedAt.UnixMilli(),
		s.ElapsedSeconds, s.CorrectHeldSeconds, s.Accuracy,
		s.MeanScore, s.ScoreStdDev, s.BestScore, s.Frames,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record session %s: %w", s.SessionID, err)
	}
	return s.SessionID, nil
}

// Get returns one recorded session.
func (h *DB) Get(ctx context.Context, id string) (session.Summary, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+columns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return session.Summary{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return s, nil
}

// Recent returns up to limit sessions, most recently ended first.
// An empty profileID matches every profile.
func (h *DB) Recent(ctx context.Context, profileID string, limit int) ([]session.Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + columns + ` FROM sessions`
	args := []any{}
	if profileID != "" {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY ended_at_ms DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	out := []session.Summary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Stats aggregates recorded sessions.
type Stats struct {
	Sessions            int     `json:"sessions"`
	TotalSeconds        int     `json:"total_seconds"`
	CorrectHeldSeconds  int     `json:"correct_held_seconds"`
	Accuracy            int     `json:"accuracy"`
	BestSessionAccuracy int     `json:"best_session_accuracy"`
	MeanScore           float64 `json:"mean_score"`
}

// Stats totals every session, or one profile's when profileID is set.
func (h *DB) Stats(ctx context.Context, profileID string) (Stats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(elapsed_seconds), 0), COALESCE(SUM(correct_held_seconds), 0),
		COALESCE(MAX(accuracy), 0), COALESCE(AVG(mean_score), 0) FROM sessions`
	args := []any{}
	if profileID != "" {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}

	var st Stats
	err := h.db.QueryRowContext(ctx, query, args...).Scan(
		&st.Sessions, &st.TotalSeconds, &st.CorrectHeldSeconds,
		&st.BestSessionAccuracy, &st.MeanScore,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate sessions: %w", err)
	}
	st.Accuracy = session.Accuracy(st.CorrectHeldSeconds, st.TotalSeconds)
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(r scanner) (session.Summary, error) {
	var (
		s              session.Summary
		started, ended int64
	)
	err := r.Scan(
		&s.SessionID, &s.ProfileID, &started, &ended,
		&s.ElapsedSeconds, &s.CorrectHeldSeconds, &s.Accuracy,
		&s.MeanScore, &s.ScoreStdDev, &s.BestScore, &s.Frames,
	)
	if err != nil {
		return session.Summary{}, err
	}
	s.StartedAt = time.UnixMilli(started).UTC()
	s.EndedAt = time.UnixMilli(ended).UTC()
	return s, nil
}
