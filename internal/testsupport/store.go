package testsupport

import (
	"context"
	"testing"

	"rolodex/internal/config"
	"rolodex/internal/contacts"
	"rolodex/internal/identity"
)

// MustOpenStore opens a contacts.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *contacts.Store {
	t.Helper()

	store, err := contacts.Open(cfg)
	if err != nil {
		t.Fatalf("contacts.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewContact creates a contact bound to the given identifier for tests.
func NewContact(t testing.TB, store *contacts.Store, typ identity.Type, value string) *contacts.Contact {
	t.Helper()

	contact, err := store.CreateContactWithIdentifier(context.Background(), typ, value, 1.0, true)
	if err != nil {
		t.Fatalf("store.CreateContactWithIdentifier: %v", err)
	}
	return contact
}
