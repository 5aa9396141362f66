// Package export renders qualified-lead snapshots as CSV, JSON, or XLSX
// for reporting and CRM handoff.
package export

import (
	"strconv"
	"time"

	"github.com/sells-group/leadqual/internal/model"
)

// Format identifies an export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatXLSX:
		return Format(s), true
	}
	return "", false
}

// Header is the column set shared by all tabular export formats.
var Header = []string{
	"Phone ID", "Name", "Phone", "Email", "Budget", "Location",
	"Property Type", "Lead Score", "Stage", "Message Count", "Last Activity",
}

func fieldValue(f *model.Field) string {
	if f == nil {
		return ""
	}
	return f.Value
}

// Row flattens one contact state into the export column order.
func Row(state model.ContactState) []string {
	lastActivity := ""
	if !state.LastActivity.IsZero() {
		lastActivity = state.LastActivity.UTC().Format(time.RFC3339)
	}
	return []string{
		state.PhoneID,
		fieldValue(state.Lead.Name),
		fieldValue(state.Lead.Phone),
		fieldValue(state.Lead.Email),
		state.Lead.Budget.String(),
		fieldValue(state.Lead.Location),
		fieldValue(state.Lead.PropertyType),
		strconv.Itoa(state.Score),
		string(state.Stage),
		strconv.Itoa(state.MessageCount),
		lastActivity,
	}
}
