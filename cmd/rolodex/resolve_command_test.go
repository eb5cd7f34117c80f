package main

import (
	"strings"
	"testing"
)

func resolveContactID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "Contact:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	t.Fatalf("no contact id in output %q", out)
	return ""
}

func TestResolveIsIdempotentAcrossFormats(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "resolve", "+1 (555) 123-4567")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Normalized: +15551234567")
	requireContains(t, out, "Created:    yes")
	contactID := resolveContactID(t, out)

	// A differently formatted rendering of the same number maps to the
	// same contact without creating a new one.
	out, _, err = runCLI(t, env, "resolve", "5551234567")
	if err != nil {
		t.Fatalf("resolve second form: %v", err)
	}
	requireContains(t, out, "Created:    no")
	if got := resolveContactID(t, out); got != contactID {
		t.Fatalf("expected same contact %s, got %s", contactID, got)
	}
}

func TestResolveLookupDoesNotCreate(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "resolve", "--lookup", "nobody@example.com"); err == nil {
		t.Fatal("expected lookup of unknown identifier to fail")
	}

	if _, _, err := runCLI(t, env, "resolve", "nobody@example.com"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, _, err := runCLI(t, env, "resolve", "--lookup", "nobody@example.com")
	if err != nil {
		t.Fatalf("lookup after create: %v", err)
	}
	requireContains(t, out, "nobody@example.com")
}

func TestResolveRejectsUnknownSource(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "resolve", "--source", "guesswork", "5551234567"); err == nil {
		t.Fatal("expected unknown source to be rejected")
	}
}
