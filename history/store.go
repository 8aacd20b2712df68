package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session    TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE (session, seq)
);
CREATE INDEX IF NOT EXISTS idx_messages_session_seq ON messages (session, seq);
`

// Store is the SQLite-backed message store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores msgs in one transaction. Messages are keyed by session and
// sequence; storing the same position again replaces its content. Zero IDs
// and timestamps are filled in.
func (s *Store) Append(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, session, seq, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session, seq) DO UPDATE SET
			role = excluded.role,
			content = excluded.content,
			created_at = excluded.created_at`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, m := range msgs {
		if m.ID == uuid.Nil {
			m.ID = StableID(m.Session, m.Seq)
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, m.ID.String(), m.Session, m.Seq, string(m.Role), m.Content, m.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("insert %s#%d: %w", m.Session, m.Seq, err)
		}
	}
	return tx.Commit()
}

// Latest returns the newest limit messages of session.
func (s *Store) Latest(ctx context.Context, session string, limit int) ([]Message, error) {
	msgs, err := s.query(ctx, `
		SELECT id, session, seq, role, content, created_at FROM messages
		WHERE session = ? ORDER BY seq DESC LIMIT ?`, session, limit)
	slices.Reverse(msgs)
	return msgs, err
}

// Before returns up to limit messages older than seq.
func (s *Store) Before(ctx context.Context, session string, seq int64, limit int) ([]Message, error) {
	msgs, err := s.query(ctx, `
		SELECT id, session, seq, role, content, created_at FROM messages
		WHERE session = ? AND seq < ? ORDER BY seq DESC LIMIT ?`, session, seq, limit)
	slices.Reverse(msgs)
	return msgs, err
}

// After returns up to limit messages newer than seq.
func (s *Store) After(ctx context.Context, session string, seq int64, limit int) ([]Message, error) {
	return s.query(ctx, `
		SELECT id, session, seq, role, content, created_at FROM messages
		WHERE session = ? AND seq > ? ORDER BY seq ASC LIMIT ?`, session, seq, limit)
}

// Count returns how many messages session holds.
func (s *Store) Count(ctx context.Context, session string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE session = ?`, session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", session, err)
	}
	return n, nil
}

// NextSeq returns the sequence number the next appended message should use.
func (s *Store) NextSeq(ctx context.Context, session string) (int64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM messages WHERE session = ?`, session).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("next seq %s: %w", session, err)
	}
	return last.Int64 + 1, nil
}

// SessionSummary describes one stored session.
type SessionSummary struct {
	Session  string
	Messages int
	Updated  time.Time
}

// Sessions lists stored sessions, most recently updated first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, COUNT(*), MAX(created_at) FROM messages
		GROUP BY session ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			sum     SessionSummary
			updated int64
		)
		if err := rows.Scan(&sum.Session, &sum.Messages, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.Updated = time.Unix(0, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m       Message
			id      string
			role    string
			created int64
		)
		if err := rows.Scan(&id, &m.Session, &m.Seq, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("message %s#%d: bad id: %w", m.Session, m.Seq, err)
		}
		m.Role = Role(role)
		m.CreatedAt = time.Unix(0, created)
		out = append(out, m)
	}
	return out, rows.Err()
}
