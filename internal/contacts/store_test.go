package contacts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rolodex/internal/contacts"
	"rolodex/internal/identity"
	"rolodex/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.Reachable {
		t.Fatal("expected database to be reachable")
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("expected no missing tables, got %v", health.MissingTables)
	}
	if health.IntegrityCheck != "ok" {
		t.Fatalf("unexpected integrity check result: %q", health.IntegrityCheck)
	}
}

func TestCreateContactWithIdentifier(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	contact, err := store.CreateContactWithIdentifier(ctx, identity.TypePhone, "+15551234567", 0.9, false)
	if err != nil {
		t.Fatalf("CreateContactWithIdentifier failed: %v", err)
	}
	if contact.ID == "" {
		t.Fatal("expected contact ID to be assigned")
	}

	found, err := store.FindContactIDByIdentifier(ctx, identity.TypePhone, "+15551234567")
	if err != nil {
		t.Fatalf("FindContactIDByIdentifier failed: %v", err)
	}
	if found != contact.ID {
		t.Fatalf("expected contact %s, got %s", contact.ID, found)
	}

	idents, err := store.IdentifiersForContact(ctx, contact.ID)
	if err != nil {
		t.Fatalf("IdentifiersForContact failed: %v", err)
	}
	if len(idents) != 1 {
		t.Fatalf("expected 1 identifier, got %d", len(idents))
	}
	if idents[0].Confidence != 0.9 || idents[0].Verified {
		t.Fatalf("unexpected identifier: %#v", idents[0])
	}
}

func TestCreateContactRejectsDuplicateIdentifier(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.CreateContactWithIdentifier(ctx, identity.TypeEmail, "jane@example.com", 1.0, true); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := store.CreateContactWithIdentifier(ctx, identity.TypeEmail, "jane@example.com", 0.5, false)
	if !errors.Is(err, contacts.ErrDuplicateIdentifier) {
		t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
	}

	count, err := store.CountContacts(ctx)
	if err != nil {
		t.Fatalf("CountContacts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 contact after failed duplicate, got %d", count)
	}
}

func TestCreateContactRejectsInvalidConfidence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for _, confidence := range []float64{-0.1, 1.5} {
		_, err := store.CreateContactWithIdentifier(ctx, identity.TypePhone, "+15550000000", confidence, false)
		if !errors.Is(err, contacts.ErrInvalidConfidence) {
			t.Fatalf("confidence %v: expected ErrInvalidConfidence, got %v", confidence, err)
		}
	}
}

func TestObserveIdentifierRaisesConfidenceMonotonically(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	contact, err := store.CreateContactWithIdentifier(ctx, identity.TypePhone, "+15551234567", 0.8, false)
	if err != nil {
		t.Fatalf("CreateContactWithIdentifier failed: %v", err)
	}

	// A weaker observation must not lower confidence or clear verified.
	if _, err := store.ObserveIdentifier(ctx, identity.TypePhone, "+15551234567", 0.3, false); err != nil {
		t.Fatalf("ObserveIdentifier failed: %v", err)
	}
	idents, err := store.IdentifiersForContact(ctx, contact.ID)
	if err != nil {
		t.Fatalf("IdentifiersForContact failed: %v", err)
	}
	if idents[0].Confidence != 0.8 {
		t.Fatalf("expected confidence to stay 0.8, got %v", idents[0].Confidence)
	}

	owner, err := store.ObserveIdentifier(ctx, identity.TypePhone, "+15551234567", 0.95, true)
	if err != nil {
		t.Fatalf("ObserveIdentifier failed: %v", err)
	}
	if owner != contact.ID {
		t.Fatalf("expected owner %s, got %s", contact.ID, owner)
	}
	idents, err = store.IdentifiersForContact(ctx, contact.ID)
	if err != nil {
		t.Fatalf("IdentifiersForContact failed: %v", err)
	}
	if idents[0].Confidence != 0.95 || !idents[0].Verified {
		t.Fatalf("expected raised verified identifier, got %#v", idents[0])
	}
}

func TestObserveIdentifierUnknownValue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.ObserveIdentifier(context.Background(), identity.TypePhone, "+15559999999", 0.5, false)
	if !errors.Is(err, contacts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordMessageUpdatesCounters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	contact := testsupport.NewContact(t, store, identity.TypePhone, "+15551234567")

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.RecordMessage(ctx, contact.ID, 3, 2, &first); err != nil {
		t.Fatalf("RecordMessage failed: %v", err)
	}
	if err := store.RecordMessage(ctx, contact.ID, 1, -1, nil); err != nil {
		t.Fatalf("RecordMessage failed: %v", err)
	}

	fetched, err := store.GetContact(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if fetched.TotalMessages != 4 || fetched.UnreadMessages != 1 {
		t.Fatalf("unexpected counters: total=%d unread=%d", fetched.TotalMessages, fetched.UnreadMessages)
	}
	if fetched.LastMessageAt == nil || !fetched.LastMessageAt.Equal(first) {
		t.Fatalf("expected last_message_at %v, got %v", first, fetched.LastMessageAt)
	}

	// Counters never go negative.
	if err := store.RecordMessage(ctx, contact.ID, 0, -10, nil); err != nil {
		t.Fatalf("RecordMessage failed: %v", err)
	}
	fetched, err = store.GetContact(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if fetched.UnreadMessages != 0 {
		t.Fatalf("expected unread clamped to 0, got %d", fetched.UnreadMessages)
	}
}

func TestRecordMessageUnknownContact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.RecordMessage(context.Background(), "contact_missing", 1, 0, nil)
	if !errors.Is(err, contacts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchContacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	jane := testsupport.NewContact(t, store, identity.TypeEmail, "jane.doe@example.com")
	if _, err := store.UpsertAttribute(ctx, jane.ID, contacts.AttributeTypeName, "Jane Doe", contacts.SourceUserProvided, 1.0); err != nil {
		t.Fatalf("UpsertAttribute failed: %v", err)
	}
	bob := testsupport.NewContact(t, store, identity.TypePhone, "+15557654321")
	if err := store.RecordMessage(ctx, bob.ID, 5, 5, nil); err != nil {
		t.Fatalf("RecordMessage failed: %v", err)
	}

	byName, err := store.SearchContacts(ctx, contacts.SearchFilter{Query: "jane"})
	if err != nil {
		t.Fatalf("SearchContacts failed: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != jane.ID {
		t.Fatalf("expected only jane, got %d results", len(byName))
	}

	unread := true
	byUnread, err := store.SearchContacts(ctx, contacts.SearchFilter{HasUnread: &unread})
	if err != nil {
		t.Fatalf("SearchContacts failed: %v", err)
	}
	if len(byUnread) != 1 || byUnread[0].ID != bob.ID {
		t.Fatalf("expected only bob, got %d results", len(byUnread))
	}
}

func TestGetContactViewDisplayName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	contact := testsupport.NewContact(t, store, identity.TypeEmail, "jane.doe@example.com")

	view, err := store.GetContactView(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetContactView failed: %v", err)
	}
	if got := view.DisplayName(); got != "Jane Doe" {
		t.Fatalf("expected derived name %q, got %q", "Jane Doe", got)
	}

	if _, err := store.UpsertAttribute(ctx, contact.ID, contacts.AttributeTypeName, "Janet Doe", contacts.SourceUserProvided, 1.0); err != nil {
		t.Fatalf("UpsertAttribute failed: %v", err)
	}
	view, err = store.GetContactView(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetContactView failed: %v", err)
	}
	if got := view.DisplayName(); got != "Janet Doe" {
		t.Fatalf("expected attribute name %q, got %q", "Janet Doe", got)
	}
}
