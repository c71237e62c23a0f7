package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/roomrelay/roomrelay-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	room         TEXT NOT NULL,
	sender       TEXT NOT NULL,
	sender_id    TEXT NOT NULL DEFAULT '',
	recipient_id TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL,
	is_private   BOOLEAN NOT NULL DEFAULT 0,
	read_by      TEXT NOT NULL DEFAULT '[]',
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created
	ON messages (room, created_at);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and applies the
// schema. Use ":memory:" for an ephemeral store in tests.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertMessage persists a new message.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *store.Message) error {
	readBy, err := marshalReadBy(msg.ReadBy)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO messages (id, room, sender, sender_id, recipient_id, body, is_private, read_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		msg.ID,
		msg.Room,
		msg.Sender,
		msg.SenderID,
		msg.RecipientID,
		msg.Body,
		msg.IsPrivate,
		readBy,
		msg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// ListRoomMessages returns every non-private message for a room ordered
// by creation time ascending. The id tiebreak keeps replay order stable
// for messages created within the same instant.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, room string) ([]*store.Message, error) {
	query := `
		SELECT id, room, sender, sender_id, recipient_id, body, is_private, read_by, created_at
		FROM messages
		WHERE room = ? AND is_private = 0
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, room)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

const selectMessageQuery = `
	SELECT id, room, sender, sender_id, recipient_id, body, is_private, read_by, created_at
	FROM messages
	WHERE id = ? AND room = ?
`

// GetMessage retrieves a message by id scoped to a room.
func (s *SQLiteStore) GetMessage(ctx context.Context, id, room string) (*store.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx, selectMessageQuery, id, room))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return msg, nil
}

// AppendReadBy adds readerID to the message's read set. Returns the
// updated message, or (nil, nil) when the reader was already present.
// The membership check and the write run in one transaction so
// concurrent readers of the same message cannot lose each other's
// receipts.
func (s *SQLiteStore) AppendReadBy(ctx context.Context, id, room, readerID string) (*store.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin read_by update: %w", err)
	}
	defer tx.Rollback()

	msg, err := scanMessage(tx.QueryRowContext(ctx, selectMessageQuery, id, room))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	for _, r := range msg.ReadBy {
		if r == readerID {
			return nil, nil
		}
	}

	msg.ReadBy = append(msg.ReadBy, readerID)
	readBy, err := marshalReadBy(msg.ReadBy)
	if err != nil {
		return nil, err
	}

	query := `UPDATE messages SET read_by = ? WHERE id = ? AND room = ?`
	if _, err := tx.ExecContext(ctx, query, readBy, id, room); err != nil {
		return nil, fmt.Errorf("update read_by: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit read_by update: %w", err)
	}

	return msg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*store.Message, error) {
	var (
		msg     store.Message
		readBy  string
		created time.Time
	)
	err := row.Scan(
		&msg.ID,
		&msg.Room,
		&msg.Sender,
		&msg.SenderID,
		&msg.RecipientID,
		&msg.Body,
		&msg.IsPrivate,
		&readBy,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}

	msg.CreatedAt = created
	if err := json.Unmarshal([]byte(readBy), &msg.ReadBy); err != nil {
		return nil, fmt.Errorf("decode read_by: %w", err)
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []string{}
	}

	return &msg, nil
}

func marshalReadBy(readBy []string) (string, error) {
	if readBy == nil {
		readBy = []string{}
	}
	data, err := json.Marshal(readBy)
	if err != nil {
		return "", fmt.Errorf("encode read_by: %w", err)
	}
	return string(data), nil
}
