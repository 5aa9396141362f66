package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadqual/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresGetContactStateAbsent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT state FROM contact_states`).
		WithArgs("whatsapp:+971501234567").
		WillReturnRows(pgxmock.NewRows([]string{"state"}))

	got, err := s.GetContactState(context.Background(), "whatsapp:+971501234567")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetContactState(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	state := model.NewContactState("whatsapp:+971501234567")
	state.Stage = model.StageQualifying
	state.Score = 55
	stateJSON, err := json.Marshal(state)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT state FROM contact_states`).
		WithArgs(state.PhoneID).
		WillReturnRows(pgxmock.NewRows([]string{"state"}).AddRow(stateJSON))

	got, err := s.GetContactState(context.Background(), state.PhoneID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StageQualifying, got.Stage)
	assert.Equal(t, 55, got.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutContactState(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	state := model.NewContactState("c1")
	state.Stage = model.StageScheduling
	state.Score = 85
	state.MessageCount = 7
	state.LastActivity = time.Now().UTC()

	mock.ExpectExec(`put_state|INSERT INTO contact_states`).
		WithArgs(state.PhoneID, "scheduling", pgxmock.AnyArg(),
			85, 7, state.LastActivity, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.PutContactState(context.Background(), state))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendMessage(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`append_message|INSERT INTO conversations`).
		WithArgs(pgxmock.AnyArg(), "c1", "user", "hello", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.AppendMessage(context.Background(), model.Message{
		PhoneID: "c1",
		Role:    model.RoleUser,
		Content: "hello",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecentMessagesChronological(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	// Store returns newest-first; RecentMessages reverses.
	mock.ExpectQuery(`recent_messages|SELECT id, phone_id, role, content, timestamp FROM conversations`).
		WithArgs("c1", 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "phone_id", "role", "content", "timestamp"}).
			AddRow("m2", "c1", "assistant", "second", now).
			AddRow("m1", "c1", "user", "first", now.Add(-time.Minute)))

	msgs, err := s.RecentMessages(context.Background(), "c1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "second", msgs[1].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	a := model.NewContactState("a")
	a.Score = 85
	b := model.NewContactState("b")
	b.Score = 70
	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)

	mock.ExpectQuery(`SELECT state FROM contact_states WHERE score >=`).
		WithArgs(70).
		WillReturnRows(pgxmock.NewRows([]string{"state"}).AddRow(aJSON).AddRow(bJSON))

	leads, err := s.ListLeads(context.Background(), LeadFilter{MinScore: 70})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "a", leads[0].PhoneID)
	assert.Equal(t, 85, leads[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListLeadsStageAndLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	a := model.NewContactState("a")
	a.Stage = model.StageScheduling
	a.Score = 85
	aJSON, _ := json.Marshal(a)

	mock.ExpectQuery(`SELECT state FROM contact_states WHERE score >= .+ AND stage = .+ LIMIT`).
		WithArgs(70, "scheduling", 5).
		WillReturnRows(pgxmock.NewRows([]string{"state"}).AddRow(aJSON))

	leads, err := s.ListLeads(context.Background(), LeadFilter{
		MinScore: 70,
		Stage:    model.StageScheduling,
		Limit:    5,
	})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "a", leads[0].PhoneID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS contact_states`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
