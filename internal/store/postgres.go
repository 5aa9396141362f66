package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadqual/internal/db"
	"github.com/sells-group/leadqual/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// the hot per-turn operations.
var preparedStatements = map[string]string{
	"get_state": `SELECT state FROM contact_states WHERE phone_id = $1`,
	"put_state": `INSERT INTO contact_states (phone_id, stage, state, score, message_count, last_activity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (phone_id) DO UPDATE SET
			stage = EXCLUDED.stage,
			state = EXCLUDED.state,
			score = EXCLUDED.score,
			message_count = EXCLUDED.message_count,
			last_activity = EXCLUDED.last_activity,
			updated_at = EXCLUDED.updated_at`,
	"append_message":  `INSERT INTO conversations (id, phone_id, role, content, timestamp) VALUES ($1, $2, $3, $4, $5)`,
	"recent_messages": `SELECT id, phone_id, role, content, timestamp FROM conversations WHERE phone_id = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS contact_states (
	phone_id      TEXT PRIMARY KEY,
	stage         TEXT NOT NULL DEFAULT 'greeting',
	state         JSONB NOT NULL,
	score         INTEGER NOT NULL DEFAULT 0,
	message_count INTEGER NOT NULL DEFAULT 0,
	last_activity TIMESTAMPTZ,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS conversations (
	id        TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	phone_id  TEXT NOT NULL,
	role      TEXT NOT NULL,
	content   TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contact_states_score ON contact_states(score);
CREATE INDEX IF NOT EXISTS idx_contact_states_stage ON contact_states(stage);
CREATE INDEX IF NOT EXISTS idx_conversations_phone_id ON conversations(phone_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetContactState(ctx context.Context, phoneID string) (*model.ContactState, error) {
	var stateJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM contact_states WHERE phone_id = $1`,
		phoneID,
	).Scan(&stateJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get contact state %s", phoneID)
	}

	var state model.ContactState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal contact state")
	}
	return &state, nil
}

func (s *PostgresStore) PutContactState(ctx context.Context, state *model.ContactState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contact state")
	}

	_, err = s.pool.Exec(ctx, preparedStatements["put_state"],
		state.PhoneID, string(state.Stage), stateJSON,
		state.Score, state.MessageCount, state.LastActivity, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put contact state %s", state.PhoneID)
}

func (s *PostgresStore) AppendMessage(ctx context.Context, msg model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, preparedStatements["append_message"],
		msg.ID, msg.PhoneID, string(msg.Role), msg.Content, msg.Timestamp,
	)
	return eris.Wrapf(err, "postgres: append message for %s", msg.PhoneID)
}

func (s *PostgresStore) RecentMessages(ctx context.Context, phoneID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, preparedStatements["recent_messages"], phoneID, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: recent messages for %s", phoneID)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		var role string
		if err := rows.Scan(&m.ID, &m.PhoneID, &role, &m.Content, &m.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan message")
		}
		m.Role = model.MessageRole(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate messages")
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.ContactState, error) {
	query := `SELECT state FROM contact_states WHERE score >= $1`
	args := []any{filter.MinScore}

	if filter.Stage != "" {
		args = append(args, string(filter.Stage))
		query += fmt.Sprintf(` AND stage = $%d`, len(args))
	}
	query += ` ORDER BY score DESC, last_activity DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.ContactState
	for rows.Next() {
		var stateJSON []byte
		if err := rows.Scan(&stateJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var state model.ContactState
		if err := json.Unmarshal(stateJSON, &state); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		leads = append(leads, state)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}
