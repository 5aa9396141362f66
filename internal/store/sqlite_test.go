package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadqual/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteContactStateRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	// Absent state returns nil without error.
	got, err := s.GetContactState(ctx, "whatsapp:+971501234567")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := model.NewContactState("whatsapp:+971501234567")
	state.Stage = model.StageQualifying
	state.Score = 55
	state.MessageCount = 3
	state.LastActivity = time.Now().UTC().Truncate(time.Second)
	state.Lead.Phone = &model.Field{Value: "+971501234567", Validated: true}
	state.Lead.Budget = model.RangeBudget(1_500_000, 2_000_000)
	state.RetryCounts[model.FieldEmail] = 1
	state.Skipped[model.FieldName] = true

	require.NoError(t, s.PutContactState(ctx, state))

	got, err = s.GetContactState(ctx, state.PhoneID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StageQualifying, got.Stage)
	assert.Equal(t, 55, got.Score)
	assert.Equal(t, 3, got.MessageCount)
	require.NotNil(t, got.Lead.Phone)
	assert.True(t, got.Lead.Phone.Validated)
	require.NotNil(t, got.Lead.Budget)
	assert.Equal(t, int64(1_500_000), got.Lead.Budget.Low)
	assert.Equal(t, 1, got.RetryCounts[model.FieldEmail])
	assert.True(t, got.Skipped[model.FieldName])

	// Upsert replaces the snapshot.
	state.Score = 80
	state.Stage = model.StageScheduling
	require.NoError(t, s.PutContactState(ctx, state))

	got, err = s.GetContactState(ctx, state.PhoneID)
	require.NoError(t, err)
	assert.Equal(t, 80, got.Score)
	assert.Equal(t, model.StageScheduling, got.Stage)
}

func TestSQLiteMessages(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendMessage(ctx, model.Message{
			PhoneID:   "c1",
			Role:      model.RoleUser,
			Content:   string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.AppendMessage(ctx, model.Message{
		PhoneID: "c2", Role: model.RoleAssistant, Content: "other contact",
	}))

	msgs, err := s.RecentMessages(ctx, "c1", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	// Chronological order, most recent three.
	assert.Equal(t, "c", msgs[0].Content)
	assert.Equal(t, "d", msgs[1].Content)
	assert.Equal(t, "e", msgs[2].Content)
	for _, m := range msgs {
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, "c1", m.PhoneID)
	}
}

func TestSQLiteListLeads(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	put := func(id string, score int, stage model.Stage) {
		st := model.NewContactState(id)
		st.Score = score
		st.Stage = stage
		st.LastActivity = time.Now().UTC()
		require.NoError(t, s.PutContactState(ctx, st))
	}
	put("a", 0, model.StageGreeting)
	put("b", 55, model.StageQualifying)
	put("c", 85, model.StageScheduling)
	put("d", 70, model.StageScheduling)

	leads, err := s.ListLeads(ctx, LeadFilter{MinScore: 1})
	require.NoError(t, err)
	require.Len(t, leads, 3)
	// Ordered by score descending.
	assert.Equal(t, "c", leads[0].PhoneID)
	assert.Equal(t, "d", leads[1].PhoneID)
	assert.Equal(t, "b", leads[2].PhoneID)

	leads, err = s.ListLeads(ctx, LeadFilter{MinScore: 70, Stage: model.StageScheduling, Limit: 1})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "c", leads[0].PhoneID)
}
