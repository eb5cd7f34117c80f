package enrichment_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rolodex/internal/contacts"
	"rolodex/internal/enrichment"
	"rolodex/internal/identcache"
	"rolodex/internal/identity"
	"rolodex/internal/logging"
	"rolodex/internal/resolver"
	"rolodex/internal/testsupport"
)

func newPlanner(t *testing.T) (*enrichment.Planner, *enrichment.Tracker, *contacts.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cache := identcache.New(cfg.Cache.Capacity, cfg.CacheTTL(), logging.NewNop())
	res := resolver.New(store, cache, cfg, logging.NewNop())
	tracker := enrichment.NewTracker(store, logging.NewNop())
	return enrichment.NewPlanner(res, store, tracker, logging.NewNop()), tracker, store
}

func TestTrackerLifecycle(t *testing.T) {
	_, tracker, store := newPlanner(t)
	ctx := context.Background()

	contact := testsupport.NewContact(t, store, identity.TypePhone, "+15551234567")

	attemptID, err := tracker.StartAttempt(ctx, contact.ID, "chat-1", "name_collection", "")
	if err != nil {
		t.Fatalf("StartAttempt failed: %v", err)
	}

	latest, err := tracker.LatestAttempt(ctx, contact.ID, "name_collection")
	if err != nil {
		t.Fatalf("LatestAttempt failed: %v", err)
	}
	if latest.ID != attemptID || latest.Status != contacts.AttemptPending {
		t.Fatalf("unexpected latest attempt: %#v", latest)
	}

	if err := tracker.CompleteAttempt(ctx, attemptID, contacts.AttemptSuccessful, "learned it"); err != nil {
		t.Fatalf("CompleteAttempt failed: %v", err)
	}
	if err := tracker.CompleteAttempt(ctx, attemptID, contacts.AttemptFailed, ""); !errors.Is(err, contacts.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := tracker.CompleteAttempt(ctx, 424242, contacts.AttemptFailed, ""); !errors.Is(err, contacts.ErrUnknownAttempt) {
		t.Fatalf("expected ErrUnknownAttempt, got %v", err)
	}
}

func TestMissingFields(t *testing.T) {
	_, _, store := newPlanner(t)
	ctx := context.Background()

	contact := testsupport.NewContact(t, store, identity.TypePhone, "+15551234567")

	view, err := store.GetContactView(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetContactView failed: %v", err)
	}
	missing := enrichment.MissingFields(view, nil)
	if len(missing) != len(enrichment.DefaultFields) {
		t.Fatalf("expected all default fields missing, got %v", missing)
	}

	if _, err := store.UpsertAttribute(ctx, contact.ID, contacts.AttributeTypeName, "Jane Doe", contacts.SourceUserProvided, 1.0); err != nil {
		t.Fatalf("UpsertAttribute failed: %v", err)
	}
	if _, err := store.ObserveIdentifier(ctx, identity.TypePhone, "+15551234567", 1.0, true); err != nil {
		t.Fatalf("ObserveIdentifier failed: %v", err)
	}

	view, err = store.GetContactView(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetContactView failed: %v", err)
	}
	missing = enrichment.MissingFields(view, nil)
	if len(missing) != 2 {
		t.Fatalf("expected email and organization missing, got %v", missing)
	}
	for _, field := range missing {
		if field == "name" {
			t.Fatal("name should no longer be missing")
		}
	}
}

func TestPlanRequestOpensAttemptsPerMissingField(t *testing.T) {
	planner, tracker, store := newPlanner(t)
	ctx := context.Background()

	planned, err := planner.PlanRequest(ctx, enrichment.Request{
		ChatGUID: "chat-1",
		Participants: map[string][]string{
			"+15551234567": {"name", "email"},
			"+15557654321": {"name"},
		},
	})
	if err != nil {
		t.Fatalf("PlanRequest failed: %v", err)
	}
	if len(planned) != 3 {
		t.Fatalf("expected 3 planned attempts, got %d", len(planned))
	}

	count, err := store.CountContacts(ctx)
	if err != nil {
		t.Fatalf("CountContacts failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 contacts created, got %d", count)
	}

	for _, attempt := range planned {
		stored, err := tracker.LatestAttempt(ctx, attempt.ContactID, enrichment.AttemptTypeForField(attempt.Field))
		if err != nil {
			t.Fatalf("LatestAttempt failed: %v", err)
		}
		if stored.Status != contacts.AttemptPending {
			t.Fatalf("expected pending attempt, got %s", stored.Status)
		}
		if stored.ChatGUID != "chat-1" {
			t.Fatalf("unexpected chat guid: %q", stored.ChatGUID)
		}
		if !strings.Contains(stored.Details, attempt.Field) {
			t.Fatalf("expected details to mention field, got %q", stored.Details)
		}
	}

	// Participant phones arrive verified at full confidence.
	owner, err := store.FindContactIDByIdentifier(ctx, identity.TypePhone, "+15551234567")
	if err != nil {
		t.Fatalf("FindContactIDByIdentifier failed: %v", err)
	}
	idents, err := store.IdentifiersForContact(ctx, owner)
	if err != nil {
		t.Fatalf("IdentifiersForContact failed: %v", err)
	}
	if !idents[0].Verified || idents[0].Confidence != 1.0 {
		t.Fatalf("expected verified identifier at 1.0, got %#v", idents[0])
	}
}

func TestPlanRequestRequiresChat(t *testing.T) {
	planner, _, _ := newPlanner(t)

	if _, err := planner.PlanRequest(context.Background(), enrichment.Request{}); err == nil {
		t.Fatal("expected error for missing chat guid")
	}
}
