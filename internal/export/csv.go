package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadqual/internal/model"
)

// WriteCSV writes the header row followed by one row per lead.
func WriteCSV(w io.Writer, leads []model.ContactState) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, lead := range leads {
		if err := cw.Write(Row(lead)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", lead.PhoneID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// jsonLead is the JSON export shape: one flat object per lead rather than
// the internal state snapshot.
type jsonLead struct {
	PhoneID      string `json:"phone_id"`
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Budget       string `json:"budget,omitempty"`
	Location     string `json:"location,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	Score        int    `json:"lead_score"`
	Stage        string `json:"stage"`
	MessageCount int    `json:"message_count"`
	LastActivity string `json:"last_activity,omitempty"`
}

// WriteJSON writes the leads as a JSON array of flat objects.
func WriteJSON(w io.Writer, leads []model.ContactState) error {
	out := make([]jsonLead, 0, len(leads))
	for _, lead := range leads {
		jl := jsonLead{
			PhoneID:      lead.PhoneID,
			Name:         fieldValue(lead.Lead.Name),
			Phone:        fieldValue(lead.Lead.Phone),
			Email:        fieldValue(lead.Lead.Email),
			Budget:       lead.Lead.Budget.String(),
			Location:     fieldValue(lead.Lead.Location),
			PropertyType: fieldValue(lead.Lead.PropertyType),
			Score:        lead.Score,
			Stage:        string(lead.Stage),
			MessageCount: lead.MessageCount,
		}
		if !lead.LastActivity.IsZero() {
			jl.LastActivity = lead.LastActivity.UTC().Format(time.RFC3339)
		}
		out = append(out, jl)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(out), "export: encode json")
}
