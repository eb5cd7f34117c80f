package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Type distinguishes the two identifier kinds the system resolves.
type Type string

const (
	TypePhone Type = "phone"
	TypeEmail Type = "email"
)

// DefaultRegion is the country calling code assumed for phone numbers that
// arrive without one. Overridable via config.
const DefaultRegion = "1"

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// ErrInvalidIdentifier indicates input that cannot be canonicalized.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ParseType converts a string into a known identifier Type.
func ParseType(value string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(value))) {
	case TypePhone:
		return TypePhone, true
	case TypeEmail:
		return TypeEmail, true
	default:
		return "", false
	}
}

// Normalize canonicalizes a raw identifier of the given type. The region is
// the default country calling code applied to unprefixed phone numbers; an
// empty region falls back to DefaultRegion.
func Normalize(typ Type, raw, region string) (string, error) {
	switch typ {
	case TypePhone:
		return NormalizePhone(raw, region)
	case TypeEmail:
		return NormalizeEmail(raw)
	default:
		return "", fmt.Errorf("%w: unknown identifier type %q", ErrInvalidIdentifier, string(typ))
	}
}

// NormalizePhone reduces a phone number to +<digits> form. Formatting
// punctuation and whitespace are stripped; numbers without a leading + are
// prefixed with the default region unless they already start with it and
// leave a plausible national number behind.
func NormalizePhone(raw, region string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty phone number", ErrInvalidIdentifier)
	}
	if region = strings.TrimSpace(region); region == "" {
		region = DefaultRegion
	}

	hasPrefix := strings.HasPrefix(trimmed, "+")
	digits := digitsOnly(trimmed)
	if digits == "" {
		return "", fmt.Errorf("%w: phone number %q has no digits", ErrInvalidIdentifier, raw)
	}

	if !hasPrefix {
		if !strings.HasPrefix(digits, region) || len(digits)-len(region) < minPhoneDigits {
			digits = region + digits
		}
	}

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", fmt.Errorf("%w: phone number %q has %d digits, want %d-%d",
			ErrInvalidIdentifier, raw, len(digits), minPhoneDigits, maxPhoneDigits)
	}
	return "+" + digits, nil
}

// NormalizeEmail trims whitespace and lowercases the domain portion. The
// address must contain exactly one @ with non-empty local and domain parts.
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty email address", ErrInvalidIdentifier)
	}
	local, domain, found := strings.Cut(trimmed, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", fmt.Errorf("%w: malformed email address %q", ErrInvalidIdentifier, raw)
	}
	return local + "@" + strings.ToLower(domain), nil
}

// CacheKey returns the resolution-cache key for a normalized identifier.
func CacheKey(typ Type, normalized string) string {
	return string(typ) + ":" + normalized
}

func digitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
