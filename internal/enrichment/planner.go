package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"rolodex/internal/contacts"
	"rolodex/internal/identity"
	"rolodex/internal/logging"
	"rolodex/internal/resolver"
)

// DefaultFields are the facts the planner tries to collect when the caller
// does not name specific ones. "email" is satisfied by an identifier; the
// rest by current attributes.
var DefaultFields = []string{"name", "email", "organization"}

// AttemptTypeForField names the collection attempt recorded for a field.
func AttemptTypeForField(field string) string {
	return field + "_collection"
}

// MissingFields reports which of the requested fields a contact still lacks.
func MissingFields(view *contacts.ContactView, fields []string) []string {
	if len(fields) == 0 {
		fields = DefaultFields
	}

	current := make(map[string]bool, len(view.Attributes))
	for _, attr := range view.Attributes {
		if attr.Value != "" {
			current[attr.Type] = true
		}
	}
	hasEmail := false
	for _, ident := range view.Identifiers {
		if ident.Type == identity.TypeEmail {
			hasEmail = true
			break
		}
	}

	var missing []string
	for _, field := range fields {
		if field == "email" {
			if !hasEmail {
				missing = append(missing, field)
			}
			continue
		}
		if !current[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// Request describes one enrichment effort: a chat and its participants'
// phone numbers, each with the fields still unknown for them.
type Request struct {
	ChatGUID     string
	Participants map[string][]string
}

// PlannedAttempt is one opened collection attempt.
type PlannedAttempt struct {
	AttemptID int64
	ContactID string
	Phone     string
	Field     string
}

// Planner resolves enrichment participants and opens their attempts.
type Planner struct {
	resolver *resolver.Resolver
	store    *contacts.Store
	tracker  *Tracker
	logger   *slog.Logger
}

// NewPlanner builds a planner.
func NewPlanner(res *resolver.Resolver, store *contacts.Store, tracker *Tracker, logger *slog.Logger) *Planner {
	return &Planner{
		resolver: res,
		store:    store,
		tracker:  tracker,
		logger:   logging.NewComponentLogger(logger, "enrichment"),
	}
}

type attemptDetails struct {
	Field  string `json:"field"`
	Method string `json:"method"`
}

// PlanRequest resolves every participant phone to a contact, creating one on
// first sight, and opens a pending collection attempt per missing field. A
// participant phone observed in a chat counts as verified at full
// confidence. Returns the attempts it opened.
func (p *Planner) PlanRequest(ctx context.Context, req Request) ([]PlannedAttempt, error) {
	if req.ChatGUID == "" {
		return nil, fmt.Errorf("enrichment request requires a chat guid")
	}

	var planned []PlannedAttempt
	for phone, fields := range req.Participants {
		res, err := p.resolver.ResolveOrCreate(ctx, identity.TypePhone, phone, contacts.SourceUserProvided, 1.0)
		if err != nil {
			return nil, fmt.Errorf("resolve participant %s: %w", phone, err)
		}

		for _, field := range fields {
			details, err := json.Marshal(attemptDetails{Field: field, Method: "direct_request"})
			if err != nil {
				return nil, fmt.Errorf("encode attempt details: %w", err)
			}
			attemptID, err := p.tracker.StartAttempt(ctx, res.ContactID, req.ChatGUID, AttemptTypeForField(field), string(details))
			if err != nil {
				return nil, fmt.Errorf("open attempt for %s/%s: %w", res.ContactID, field, err)
			}
			planned = append(planned, PlannedAttempt{
				AttemptID: attemptID,
				ContactID: res.ContactID,
				Phone:     res.Normalized,
				Field:     field,
			})
		}
	}

	p.logger.Info("enrichment request planned",
		logging.String(logging.FieldChatGUID, req.ChatGUID),
		logging.Int("participants", len(req.Participants)),
		logging.Int("attempts", len(planned)))
	return planned, nil
}
