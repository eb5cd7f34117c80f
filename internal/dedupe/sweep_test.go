package dedupe

import (
	"context"
	"testing"

	"rolodex/internal/identity"
	"rolodex/internal/testsupport"
)

func TestSweepFindsPairOnce(t *testing.T) {
	engine, store, _, cfg := newTestEngine(t)
	ctx := context.Background()

	primary, secondary := seedDuplicatePair(t, store)
	testsupport.NewContact(t, store, identity.TypeEmail, "bob@example.com")

	sweeper := NewSweeper(engine, store, cfg, nil)
	report, err := sweeper.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.SweepID == "" {
		t.Fatal("expected sweep id")
	}
	if report.ContactsScanned != 3 {
		t.Fatalf("expected 3 contacts scanned, got %d", report.ContactsScanned)
	}
	if len(report.Pairs) != 1 {
		t.Fatalf("expected exactly 1 pair, got %d", len(report.Pairs))
	}

	pair := report.Pairs[0]
	if pair.ContactID >= pair.CandidateID {
		t.Fatalf("expected canonical pair ordering, got %s >= %s", pair.ContactID, pair.CandidateID)
	}
	ids := map[string]bool{primary.ID: true, secondary.ID: true}
	if !ids[pair.ContactID] || !ids[pair.CandidateID] {
		t.Fatalf("unexpected pair members: %#v", pair)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	engine, store, _, cfg := newTestEngine(t)

	sweeper := NewSweeper(engine, store, cfg, nil)
	report, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.ContactsScanned != 0 || len(report.Pairs) != 0 {
		t.Fatalf("expected empty report, got %#v", report)
	}
}
