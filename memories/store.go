package memories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Store is the short-term tier, a per-user bounded window of recent
// turns in a local sqlite database. Once the window grows past the
// persist threshold the oldest turns move to the Archive.
type Store struct {
	db               *sql.DB
	archive          *Archive
	windowSize       int
	persistThreshold int
	maxContextBytes  int
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id);
`

func OpenStore(
	dbPath string,
	archive *Archive,
	windowSize int,
	persistThreshold int,
	maxContextBytes int,
) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:               db,
		archive:          archive,
		windowSize:       windowSize,
		persistThreshold: persistThreshold,
		maxContextBytes:  maxContextBytes,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one turn and evicts the overflow, both under one
// transaction. Eviction writes to the archive before deleting from the
// window, a crash can duplicate a turn in the archive but never lose it.
func (s *Store) Append(ctx context.Context, userID string, role string, content string) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (turn_id, user_id, timestamp, role, content) VALUES (?, ?, ?, ?, ?)`,
		ulid.Make().String(),
		userID,
		now.Format(time.RFC3339),
		role,
		compactContent(content),
	); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE user_id = ?`,
		userID,
	).Scan(&count); err != nil {
		return err
	}

	if count > s.persistThreshold {
		if err := s.evict(ctx, tx, userID, count-s.windowSize); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) evict(ctx context.Context, tx *sql.Tx, userID string, n int) error {
	if n <= 0 {
		return nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, turn_id, timestamp, role, content FROM messages
		 WHERE user_id = ? ORDER BY id ASC LIMIT ?`,
		userID, n,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	var ids []int64
	var evicted []Message
	for rows.Next() {
		var id int64
		var msg Message
		var ts string
		if err := rows.Scan(&id, &msg.TurnID, &ts, &msg.Role, &msg.Content); err != nil {
			return err
		}
		if msg.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			msg.Timestamp = time.Now().UTC()
		}
		ids = append(ids, id)
		evicted = append(evicted, msg)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// persist first, delete after
	if err := s.archive.Save(evicted); err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM messages WHERE id = ?`, id,
		); err != nil {
			return err
		}
	}

	return nil
}

// Snapshot returns the most recent turns in chronological order, bounded
// by the window size and trimmed oldest-first to the context byte limit.
func (s *Store) Snapshot(ctx context.Context, userID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, timestamp, role, content FROM messages
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, s.windowSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		var ts string
		if err := rows.Scan(&msg.TurnID, &ts, &msg.Role, &msg.Content); err != nil {
			return nil, err
		}
		if msg.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			msg.Timestamp = time.Now().UTC()
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest-first from the query, flip to chronological
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	total := 0
	for _, msg := range messages {
		total += len(msg.Content)
	}
	for total > s.maxContextBytes && len(messages) > 0 {
		total -= len(messages[0].Content)
		messages = messages[1:]
	}

	return messages, nil
}

// Clear drops the whole window of one user. The archive keeps what was
// already evicted.
func (s *Store) Clear(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE user_id = ?`,
		userID,
	)
	return err
}
