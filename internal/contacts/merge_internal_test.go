package contacts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"rolodex/internal/config"
	"rolodex/internal/identity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// A failure at any point of the merge must leave both contacts exactly as
// they were. The abort hook fires between merge steps to simulate that.
func TestMergeContactsRollsBackOnFailure(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	primary, err := store.CreateContactWithIdentifier(ctx, identity.TypePhone, "+15551234567", 1.0, true)
	if err != nil {
		t.Fatalf("CreateContactWithIdentifier: %v", err)
	}
	secondary, err := store.CreateContactWithIdentifier(ctx, identity.TypeEmail, "jane@example.com", 1.0, true)
	if err != nil {
		t.Fatalf("CreateContactWithIdentifier: %v", err)
	}
	if _, err := store.UpsertAttribute(ctx, secondary.ID, AttributeTypeName, "Jane Doe", SourceUserProvided, 1.0); err != nil {
		t.Fatalf("UpsertAttribute: %v", err)
	}
	if _, err := store.InsertAttempt(ctx, secondary.ID, "chat-1", "birthday", ""); err != nil {
		t.Fatalf("InsertAttempt: %v", err)
	}

	boom := errors.New("merge interrupted")
	for step := 1; step <= 5; step++ {
		failAt := step
		store.mergeAbortHook = func(s int) error {
			if s == failAt {
				return boom
			}
			return nil
		}

		_, err := store.MergeContacts(ctx, primary.ID, secondary.ID)
		if !errors.Is(err, boom) {
			t.Fatalf("step %d: expected injected failure, got %v", failAt, err)
		}

		// Nothing moved and nothing was deleted.
		if _, err := store.GetContact(ctx, secondary.ID); err != nil {
			t.Fatalf("step %d: secondary missing after rollback: %v", failAt, err)
		}
		owner, err := store.FindContactIDByIdentifier(ctx, identity.TypeEmail, "jane@example.com")
		if err != nil {
			t.Fatalf("step %d: FindContactIDByIdentifier: %v", failAt, err)
		}
		if owner != secondary.ID {
			t.Fatalf("step %d: identifier re-parented despite rollback", failAt)
		}
		name, err := store.CurrentAttribute(ctx, secondary.ID, AttributeTypeName)
		if err != nil {
			t.Fatalf("step %d: CurrentAttribute: %v", failAt, err)
		}
		if name.Value != "Jane Doe" || !name.IsCurrent {
			t.Fatalf("step %d: attribute state changed despite rollback: %#v", failAt, name)
		}
		attempts, err := store.AttemptsForContact(ctx, secondary.ID)
		if err != nil {
			t.Fatalf("step %d: AttemptsForContact: %v", failAt, err)
		}
		if len(attempts) != 1 {
			t.Fatalf("step %d: expected 1 attempt on secondary, got %d", failAt, len(attempts))
		}
	}

	// With the hook cleared the same merge succeeds.
	store.mergeAbortHook = nil
	if _, err := store.MergeContacts(ctx, primary.ID, secondary.ID); err != nil {
		t.Fatalf("final merge failed: %v", err)
	}
	if _, err := store.GetContact(ctx, secondary.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected secondary deleted, got %v", err)
	}
}
