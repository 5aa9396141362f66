package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents a Salesforce Lead record, restricted to the fields the
// qualification pipeline populates.
type Lead struct {
	ID          string `json:"Id" salesforce:"Id"`
	FirstName   string `json:"FirstName" salesforce:"FirstName"`
	LastName    string `json:"LastName" salesforce:"LastName"`
	Company     string `json:"Company" salesforce:"Company"`
	Phone       string `json:"Phone" salesforce:"Phone"`
	Email       string `json:"Email" salesforce:"Email"`
	City        string `json:"City" salesforce:"City"`
	Description string `json:"Description" salesforce:"Description"`
	LeadSource  string `json:"LeadSource" salesforce:"LeadSource"`
	Rating      string `json:"Rating" salesforce:"Rating"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "FirstName", "LastName", "Company", "Phone", "Email",
	"City", "Description", "LeadSource", "Rating",
}

// FindLeadByPhone queries Salesforce for a Lead matching the given phone
// number. Returns nil if no lead is found.
func FindLeadByPhone(ctx context.Context, c Client, phone string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Phone = '%s' LIMIT 1",
		strings.Join(leadFields, ", "),
		escapeSoql(phone),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find lead by phone %s", phone))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// UpsertLeadByPhone creates the lead if no record with its phone number
// exists, otherwise updates the existing record. Returns the Salesforce ID.
func UpsertLeadByPhone(ctx context.Context, c Client, lead Lead) (string, error) {
	if lead.Phone == "" {
		return "", eris.New("sf: lead phone is required")
	}
	if lead.LastName == "" {
		// Salesforce requires LastName on Lead.
		lead.LastName = "Unknown"
	}
	if lead.Company == "" {
		// Salesforce requires Company on Lead; consumer leads have none.
		lead.Company = "Individual"
	}

	fields := map[string]any{
		"FirstName":   lead.FirstName,
		"LastName":    lead.LastName,
		"Company":     lead.Company,
		"Phone":       lead.Phone,
		"Email":       lead.Email,
		"City":        lead.City,
		"Description": lead.Description,
		"LeadSource":  lead.LeadSource,
		"Rating":      lead.Rating,
	}
	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}

	existing, err := FindLeadByPhone(ctx, c, lead.Phone)
	if err != nil {
		return "", err
	}

	if existing != nil {
		if err := c.UpdateOne(ctx, "Lead", existing.ID, fields); err != nil {
			return "", eris.Wrap(err, fmt.Sprintf("sf: update lead %s", existing.ID))
		}
		return existing.ID, nil
	}

	id, err := c.InsertOne(ctx, "Lead", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create lead")
	}
	return id, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
