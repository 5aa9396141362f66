package model

import (
	"strconv"
	"time"
)

// Stage represents the current phase of a qualification conversation.
type Stage string

const (
	StageGreeting   Stage = "greeting"
	StageQualifying Stage = "qualifying"
	StageScheduling Stage = "scheduling"
	StageClosed     Stage = "closed"
)

// stageOrder defines the forward-only progression of stages.
var stageOrder = map[Stage]int{
	StageGreeting:   0,
	StageQualifying: 1,
	StageScheduling: 2,
	StageClosed:     3,
}

// Before reports whether s precedes other in the conversation flow.
func (s Stage) Before(other Stage) bool {
	return stageOrder[s] < stageOrder[other]
}

// FieldKind identifies one of the qualification fields collected from a lead.
type FieldKind string

const (
	FieldName         FieldKind = "name"
	FieldPhone        FieldKind = "phone"
	FieldEmail        FieldKind = "email"
	FieldBudget       FieldKind = "budget"
	FieldLocation     FieldKind = "location"
	FieldPropertyType FieldKind = "property_type"
)

// AllFieldKinds lists every field kind in scoring-table order.
var AllFieldKinds = []FieldKind{
	FieldName, FieldPhone, FieldEmail, FieldBudget, FieldLocation, FieldPropertyType,
}

// BudgetKind distinguishes a single budget figure from a range.
type BudgetKind string

const (
	BudgetSingle BudgetKind = "single"
	BudgetRange  BudgetKind = "range"
)

// Budget holds a validated budget in base currency units. For a single
// value Low == High.
type Budget struct {
	Kind BudgetKind `json:"kind"`
	Low  int64      `json:"low"`
	High int64      `json:"high"`
}

// SingleBudget returns a single-value Budget.
func SingleBudget(v int64) *Budget {
	return &Budget{Kind: BudgetSingle, Low: v, High: v}
}

// RangeBudget returns a range Budget.
func RangeBudget(low, high int64) *Budget {
	return &Budget{Kind: BudgetRange, Low: low, High: high}
}

// String renders the budget in the normalized wire form: "1500000" for a
// single value, "1500000-2000000" for a range.
func (b *Budget) String() string {
	if b == nil {
		return ""
	}
	if b.Kind == BudgetRange && b.Low != b.High {
		return strconv.FormatInt(b.Low, 10) + "-" + strconv.FormatInt(b.High, 10)
	}
	return strconv.FormatInt(b.Low, 10)
}

// Field holds one collected lead field value. Validated marks whether the
// value passed its validator; only validated values count toward the score.
type Field struct {
	Value     string `json:"value"`
	Validated bool   `json:"validated"`
}

// LeadRecord accumulates qualification data for one contact.
type LeadRecord struct {
	Name         *Field  `json:"name,omitempty"`
	Phone        *Field  `json:"phone,omitempty"`
	Email        *Field  `json:"email,omitempty"`
	Budget       *Budget `json:"budget,omitempty"`
	Location     *Field  `json:"location,omitempty"`
	PropertyType *Field  `json:"property_type,omitempty"`
}

// Validated reports whether the given field kind holds a validated value.
func (l *LeadRecord) Validated(kind FieldKind) bool {
	switch kind {
	case FieldName:
		return l.Name != nil && l.Name.Validated
	case FieldPhone:
		return l.Phone != nil && l.Phone.Validated
	case FieldEmail:
		return l.Email != nil && l.Email.Validated
	case FieldBudget:
		return l.Budget != nil
	case FieldLocation:
		return l.Location != nil && l.Location.Validated
	case FieldPropertyType:
		return l.PropertyType != nil && l.PropertyType.Validated
	}
	return false
}

// Present reports whether the given field kind holds any value, validated
// or not.
func (l *LeadRecord) Present(kind FieldKind) bool {
	switch kind {
	case FieldName:
		return l.Name != nil
	case FieldPhone:
		return l.Phone != nil
	case FieldEmail:
		return l.Email != nil
	case FieldBudget:
		return l.Budget != nil
	case FieldLocation:
		return l.Location != nil
	case FieldPropertyType:
		return l.PropertyType != nil
	}
	return false
}

// ContactState is the per-contact conversation state, keyed by phone
// identity. It is exclusively owned by the state machine for the duration
// of a turn; the store only snapshots it.
type ContactState struct {
	PhoneID      string            `json:"phone_id"`
	Stage        Stage             `json:"stage"`
	Lead         LeadRecord        `json:"lead"`
	RetryCounts  map[FieldKind]int `json:"retry_counts"`
	Skipped      map[FieldKind]bool `json:"skipped,omitempty"`
	Score        int               `json:"score"`
	MessageCount int               `json:"message_count"`
	LastActivity time.Time         `json:"last_activity"`
}

// NewContactState returns a fresh state for the given phone identity.
func NewContactState(phoneID string) *ContactState {
	return &ContactState{
		PhoneID:     phoneID,
		Stage:       StageGreeting,
		RetryCounts: make(map[FieldKind]int),
		Skipped:     make(map[FieldKind]bool),
	}
}

// MessageRole distinguishes who authored a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of conversation history for a contact.
type Message struct {
	ID        string      `json:"id"`
	PhoneID   string      `json:"phone_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}
