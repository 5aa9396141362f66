package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadqual/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contact_states (
	phone_id      TEXT PRIMARY KEY,
	stage         TEXT NOT NULL DEFAULT 'greeting',
	state         TEXT NOT NULL,
	score         INTEGER NOT NULL DEFAULT 0,
	message_count INTEGER NOT NULL DEFAULT 0,
	last_activity DATETIME,
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS conversations (
	id        TEXT PRIMARY KEY,
	phone_id  TEXT NOT NULL,
	role      TEXT NOT NULL,
	content   TEXT NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contact_states_score ON contact_states(score);
CREATE INDEX IF NOT EXISTS idx_contact_states_stage ON contact_states(stage);
CREATE INDEX IF NOT EXISTS idx_conversations_phone_id ON conversations(phone_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetContactState(ctx context.Context, phoneID string) (*model.ContactState, error) {
	var stateJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM contact_states WHERE phone_id = ?`,
		phoneID,
	).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contact state %s", phoneID)
	}

	var state model.ContactState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal contact state")
	}
	return &state, nil
}

func (s *SQLiteStore) PutContactState(ctx context.Context, state *model.ContactState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contact state")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contact_states (phone_id, stage, state, score, message_count, last_activity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(phone_id) DO UPDATE SET
			stage = excluded.stage,
			state = excluded.state,
			score = excluded.score,
			message_count = excluded.message_count,
			last_activity = excluded.last_activity,
			updated_at = excluded.updated_at`,
		state.PhoneID, string(state.Stage), string(stateJSON),
		state.Score, state.MessageCount, state.LastActivity, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put contact state %s", state.PhoneID)
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, msg model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, phone_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.PhoneID, string(msg.Role), msg.Content, msg.Timestamp,
	)
	return eris.Wrapf(err, "sqlite: append message for %s", msg.PhoneID)
}

func (s *SQLiteStore) RecentMessages(ctx context.Context, phoneID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone_id, role, content, timestamp FROM conversations
		 WHERE phone_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		phoneID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: recent messages for %s", phoneID)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		var role string
		if err := rows.Scan(&m.ID, &m.PhoneID, &role, &m.Content, &m.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan message")
		}
		m.Role = model.MessageRole(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate messages")
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.ContactState, error) {
	query := `SELECT state FROM contact_states WHERE score >= ?`
	args := []any{filter.MinScore}

	if filter.Stage != "" {
		query += ` AND stage = ?`
		args = append(args, string(filter.Stage))
	}
	query += ` ORDER BY score DESC, last_activity DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.ContactState
	for rows.Next() {
		var stateJSON string
		if err := rows.Scan(&stateJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var state model.ContactState
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, state)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}
