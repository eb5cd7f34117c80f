package identity_test

import (
	"errors"
	"testing"

	"rolodex/internal/identity"
)

func TestNormalizePhoneFormats(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		region string
		want   string
	}{
		{"e164 passthrough", "+15551234567", "1", "+15551234567"},
		{"formatted with country code", "+1 (555) 123-4567", "1", "+15551234567"},
		{"bare ten digits", "5551234567", "1", "+15551234567"},
		{"eleven digits with region", "15551234567", "1", "+15551234567"},
		{"dots and dashes", "555.123-4567", "1", "+15551234567"},
		{"default region fallback", "5551234567", "", "+15551234567"},
		{"uk region", "2079460958", "44", "+442079460958"},
		{"short but plausible", "1234567", "1", "+11234567"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := identity.NormalizePhone(tc.raw, tc.region)
			if err != nil {
				t.Fatalf("NormalizePhone(%q) failed: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizePhoneSharedCanonicalForm(t *testing.T) {
	a, err := identity.NormalizePhone("+1 (555) 123-4567", "1")
	if err != nil {
		t.Fatalf("NormalizePhone failed: %v", err)
	}
	b, err := identity.NormalizePhone("5551234567", "1")
	if err != nil {
		t.Fatalf("NormalizePhone failed: %v", err)
	}
	if a != b {
		t.Fatalf("expected same canonical value, got %q and %q", a, b)
	}
}

func TestNormalizePhoneRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"no digits", "call me"},
		{"too short", "+12345"},
		{"too long", "+1234567890123456"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := identity.NormalizePhone(tc.raw, "1"); !errors.Is(err, identity.ErrInvalidIdentifier) {
				t.Fatalf("expected ErrInvalidIdentifier for %q, got %v", tc.raw, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases domain", "Jess@Example.COM", "Jess@example.com"},
		{"trims whitespace", "  jess@example.com  ", "jess@example.com"},
		{"local case preserved", "Jess.Smith@example.com", "Jess.Smith@example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := identity.NormalizeEmail(tc.raw)
			if err != nil {
				t.Fatalf("NormalizeEmail(%q) failed: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeEmailRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "no-at-sign", "@example.com", "jess@", "jess@a@b"} {
		if _, err := identity.NormalizeEmail(raw); !errors.Is(err, identity.ErrInvalidIdentifier) {
			t.Fatalf("expected ErrInvalidIdentifier for %q, got %v", raw, err)
		}
	}
}

func TestNormalizeUnknownType(t *testing.T) {
	if _, err := identity.Normalize("fax", "5551234567", "1"); !errors.Is(err, identity.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestParseType(t *testing.T) {
	if typ, ok := identity.ParseType(" Phone "); !ok || typ != identity.TypePhone {
		t.Fatalf("ParseType phone: got %q, %v", typ, ok)
	}
	if typ, ok := identity.ParseType("EMAIL"); !ok || typ != identity.TypeEmail {
		t.Fatalf("ParseType email: got %q, %v", typ, ok)
	}
	if _, ok := identity.ParseType("fax"); ok {
		t.Fatal("expected fax to be rejected")
	}
}
