package contacts

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"rolodex/internal/identity"
)

// Source records the provenance of an attribute observation. Precedence
// descends from user-provided facts through conversation extraction down to
// AI-generated guesses; a lower-precedence source never displaces the current
// value of a higher-precedence one.
type Source string

const (
	SourceUserProvided Source = "user_provided"
	SourceExtracted    Source = "extracted"
	SourceAIGenerated  Source = "ai_generated"
)

var sourcePrecedence = map[Source]int{
	SourceUserProvided: 2,
	SourceExtracted:    1,
	SourceAIGenerated:  0,
}

// ParseSource converts a string into a known Source.
func ParseSource(value string) (Source, bool) {
	normalized := Source(strings.ToLower(strings.TrimSpace(value)))
	_, ok := sourcePrecedence[normalized]
	return normalized, ok
}

// Precedence returns the source's rank for the attribute merge policy.
// Unknown sources rank below every known one.
func (s Source) Precedence() int {
	if p, ok := sourcePrecedence[s]; ok {
		return p
	}
	return -1
}

// AttemptStatus represents the lifecycle of a collection attempt.
type AttemptStatus string

const (
	AttemptPending    AttemptStatus = "pending"
	AttemptSuccessful AttemptStatus = "successful"
	AttemptFailed     AttemptStatus = "failed"
)

// ParseAttemptStatus converts a string into a known AttemptStatus.
func ParseAttemptStatus(value string) (AttemptStatus, bool) {
	switch AttemptStatus(strings.ToLower(strings.TrimSpace(value))) {
	case AttemptPending:
		return AttemptPending, true
	case AttemptSuccessful:
		return AttemptSuccessful, true
	case AttemptFailed:
		return AttemptFailed, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further transition is permitted.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptSuccessful || s == AttemptFailed
}

// AttributeTypeName is the attribute type consumers treat as the display name.
const AttributeTypeName = "name"

// Contact is a canonical identity record.
type Contact struct {
	ID             string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastMessageAt  *time.Time
	TotalMessages  int64
	UnreadMessages int64
}

// Identifier is a phone number or email bound to a contact. The pair
// (Type, Value) is globally unique: at most one contact claims it.
type Identifier struct {
	ID         int64
	ContactID  string
	Type       identity.Type
	Value      string
	Confidence float64
	Verified   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CacheKey returns the resolution-cache key for this identifier.
func (i Identifier) CacheKey() string {
	return identity.CacheKey(i.Type, i.Value)
}

// Attribute is one observation of a typed fact about a contact. Rows are
// never deleted, only superseded; IsCurrent marks the one authoritative row
// per (contact, type).
type Attribute struct {
	ID         int64
	ContactID  string
	Type       string
	Value      string
	Confidence float64
	Source     Source
	IsCurrent  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Category is a weighted label on a contact.
type Category struct {
	ID         int64
	ContactID  string
	Name       string
	Confidence float64
	CreatedAt  time.Time
}

// CollectionAttempt records one effort to obtain a fact from a specific
// conversation context. Attempts are never deleted; they form the audit
// trail of enrichment activity.
type CollectionAttempt struct {
	ID          int64
	ContactID   string
	ChatGUID    string
	Type        string
	Status      AttemptStatus
	RequestedAt time.Time
	CompletedAt *time.Time
	Details     string
}

// NewContactID generates an opaque stable contact id.
func NewContactID() string {
	return "contact_" + uuid.NewString()
}
