// Package journal keeps an optional local sqlite record of events consumed
// from the daemon queue.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/ggonzalez94/rgbldk-cli/internal/model"
)

type Store struct {
	db   *sql.DB
	lock *flock.Flock
	now  func() time.Time
}

// Entry is one recorded event. Data holds the {type,data} wire form.
type Entry struct {
	ID         int64           `json:"id"`
	Kind       string          `json:"kind"`
	Target     string          `json:"target"`
	ReceivedAt time.Time       `json:"received_at"`
	Data       json.RawMessage `json:"event"`
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"CREATE TABLE IF NOT EXISTS events (id INTEGER PRIMARY KEY AUTOINCREMENT, kind TEXT NOT NULL, target TEXT NOT NULL, received_at INTEGER NOT NULL, data BLOB NOT NULL);",
		"CREATE INDEX IF NOT EXISTS events_received_at ON events (received_at);",
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init journal schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath), now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends ev as received from target.
func (s *Store) Record(ctx context.Context, target string, ev model.Event) error {
	data, err := json.Marshal(model.EventEnvelope{Event: ev})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	locked, err := s.lock.TryLockContext(lockCtx, 25*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock journal: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock journal: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO events (kind, target, received_at, data) VALUES (?, ?, ?, ?)",
		ev.Kind(), target, s.now().UTC().UnixMilli(), data)
	if err != nil {
		return fmt.Errorf("journal write: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT id, kind, target, received_at, data FROM events ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal read: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			received int64
			data     []byte
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Target, &received, &data); err != nil {
			return nil, fmt.Errorf("journal read: %w", err)
		}
		e.ReceivedAt = time.UnixMilli(received).UTC()
		e.Data = json.RawMessage(data)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal read: %w", err)
	}
	return entries, nil
}

// Event decodes the stored wire form back into the event union.
func (e Entry) Event() (model.Event, error) {
	return model.DecodeEvent(e.Data)
}
