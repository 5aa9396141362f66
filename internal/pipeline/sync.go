package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/scorer"
	"github.com/sells-group/leadqual/pkg/salesforce"
)

// LeadFromState maps a contact state onto a Salesforce Lead record.
func LeadFromState(state model.ContactState, scoreCfg scorer.Config) salesforce.Lead {
	lead := salesforce.Lead{
		LeadSource: "WhatsApp",
	}
	if state.Lead.Phone != nil {
		lead.Phone = state.Lead.Phone.Value
	}
	if state.Lead.Email != nil {
		lead.Email = state.Lead.Email.Value
	}
	if state.Lead.Name != nil {
		first, last := splitName(state.Lead.Name.Value)
		lead.FirstName = first
		lead.LastName = last
	}
	if state.Lead.Location != nil {
		lead.City = state.Lead.Location.Value
	}

	var desc []string
	if state.Lead.PropertyType != nil {
		desc = append(desc, "Property type: "+state.Lead.PropertyType.Value)
	}
	if state.Lead.Budget != nil {
		desc = append(desc, "Budget: "+state.Lead.Budget.String())
	}
	desc = append(desc, fmt.Sprintf("Lead score: %d", state.Score))
	lead.Description = strings.Join(desc, "\n")

	switch {
	case scoreCfg.HighQuality(state.Score):
		lead.Rating = "Hot"
	case state.Score >= scoreCfg.HighQualityThreshold/2:
		lead.Rating = "Warm"
	default:
		lead.Rating = "Cold"
	}
	return lead
}

// SyncLeads upserts each contact state into Salesforce. Failures are
// logged per lead; the first error is returned after all leads are tried.
func SyncLeads(ctx context.Context, client salesforce.Client, states []model.ContactState, scoreCfg scorer.Config) (int, error) {
	var firstErr error
	synced := 0
	for _, state := range states {
		if state.Lead.Phone == nil || state.Lead.Phone.Value == "" {
			zap.L().Debug("sync: skipping lead without phone",
				zap.String("phone_id", state.PhoneID))
			continue
		}
		id, err := salesforce.UpsertLeadByPhone(ctx, client, LeadFromState(state, scoreCfg))
		if err != nil {
			zap.L().Error("sync: lead upsert failed",
				zap.String("phone_id", state.PhoneID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		synced++
		zap.L().Info("sync: lead upserted",
			zap.String("phone_id", state.PhoneID),
			zap.String("salesforce_id", id),
			zap.Int("score", state.Score),
		)
	}
	return synced, firstErr
}

// splitName breaks a full name into Salesforce FirstName/LastName.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
