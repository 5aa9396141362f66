// Package store persists contact states and conversation history. The
// qualification core is agnostic to the backend; both SQLite and Postgres
// implementations snapshot state as JSON without interpreting it.
package store

import (
	"context"

	"github.com/sells-group/leadqual/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Stage    model.Stage `json:"stage,omitempty"`
	MinScore int         `json:"min_score,omitempty"`
	Limit    int         `json:"limit,omitempty"`
}

// Store defines the persistence interface for the qualification pipeline.
type Store interface {
	// Contact state
	GetContactState(ctx context.Context, phoneID string) (*model.ContactState, error)
	PutContactState(ctx context.Context, state *model.ContactState) error

	// Conversation history
	AppendMessage(ctx context.Context, msg model.Message) error
	RecentMessages(ctx context.Context, phoneID string, limit int) ([]model.Message, error)

	// Reporting
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.ContactState, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
