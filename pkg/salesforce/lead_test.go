package salesforce

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records calls and returns canned results.
type fakeClient struct {
	queryLeads  []Lead
	queryErr    error
	lastSOQL    string
	insertedObj string
	inserted    map[string]any
	insertID    string
	insertErr   error
	updatedID   string
	updated     map[string]any
	updateErr   error
}

func (f *fakeClient) Query(_ context.Context, soql string, out any) error {
	f.lastSOQL = soql
	if f.queryErr != nil {
		return f.queryErr
	}
	*(out.(*[]Lead)) = f.queryLeads
	return nil
}

func (f *fakeClient) InsertOne(_ context.Context, obj string, record map[string]any) (string, error) {
	f.insertedObj = obj
	f.inserted = record
	return f.insertID, f.insertErr
}

func (f *fakeClient) UpdateOne(_ context.Context, obj string, id string, fields map[string]any) error {
	f.updatedID = id
	f.updated = fields
	return f.updateErr
}

func TestFindLeadByPhone(t *testing.T) {
	fc := &fakeClient{queryLeads: []Lead{{ID: "00Q1", Phone: "+971501234567"}}}

	lead, err := FindLeadByPhone(context.Background(), fc, "+971501234567")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "00Q1", lead.ID)
	assert.Contains(t, fc.lastSOQL, "FROM Lead WHERE Phone = '+971501234567'")
}

func TestFindLeadByPhoneAbsent(t *testing.T) {
	fc := &fakeClient{}
	lead, err := FindLeadByPhone(context.Background(), fc, "+971501234567")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestFindLeadByPhoneEscapesQuotes(t *testing.T) {
	fc := &fakeClient{}
	_, err := FindLeadByPhone(context.Background(), fc, "x' OR '1'='1")
	require.NoError(t, err)
	assert.Contains(t, fc.lastSOQL, `x\' OR \'1\'=\'1`)
}

func TestUpsertLeadByPhoneCreates(t *testing.T) {
	fc := &fakeClient{insertID: "00Qnew"}

	id, err := UpsertLeadByPhone(context.Background(), fc, Lead{
		FirstName:  "Ahmed",
		LastName:   "Khan",
		Phone:      "+971501234567",
		LeadSource: "WhatsApp",
		Rating:     "Hot",
	})
	require.NoError(t, err)
	assert.Equal(t, "00Qnew", id)
	assert.Equal(t, "Lead", fc.insertedObj)
	assert.Equal(t, "Ahmed", fc.inserted["FirstName"])
	assert.Equal(t, "Individual", fc.inserted["Company"])
	// Empty fields omitted from the payload.
	_, hasEmail := fc.inserted["Email"]
	assert.False(t, hasEmail)
}

func TestUpsertLeadByPhoneUpdates(t *testing.T) {
	fc := &fakeClient{queryLeads: []Lead{{ID: "00Qold", Phone: "+971501234567"}}}

	id, err := UpsertLeadByPhone(context.Background(), fc, Lead{
		LastName: "Khan",
		Phone:    "+971501234567",
		Rating:   "Warm",
	})
	require.NoError(t, err)
	assert.Equal(t, "00Qold", id)
	assert.Equal(t, "00Qold", fc.updatedID)
	assert.Equal(t, "Warm", fc.updated["Rating"])
	assert.Empty(t, fc.insertedObj)
}

func TestUpsertLeadByPhoneDefaults(t *testing.T) {
	fc := &fakeClient{insertID: "00Qnew"}

	_, err := UpsertLeadByPhone(context.Background(), fc, Lead{Phone: "+971501234567"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", fc.inserted["LastName"])
	assert.Equal(t, "Individual", fc.inserted["Company"])
}

func TestUpsertLeadByPhoneRequiresPhone(t *testing.T) {
	fc := &fakeClient{}
	_, err := UpsertLeadByPhone(context.Background(), fc, Lead{LastName: "Khan"})
	assert.Error(t, err)
}

func TestUpsertLeadByPhoneQueryError(t *testing.T) {
	fc := &fakeClient{queryErr: eris.New("boom")}
	_, err := UpsertLeadByPhone(context.Background(), fc, Lead{Phone: "+971501234567"})
	assert.Error(t, err)
	assert.Empty(t, fc.insertedObj)
}
