package contacts

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrNotFound indicates the requested contact, identifier, or row does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateIdentifier indicates a storage-level uniqueness conflict
	// on (identifier_type, identifier_value). Resolution recovers from it by
	// re-reading; it is not surfaced to external callers.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrInvalidConfidence indicates a confidence score outside [0,1].
	ErrInvalidConfidence = errors.New("invalid confidence")

	// ErrInvalidSource indicates an unknown attribute source.
	ErrInvalidSource = errors.New("invalid source")

	// ErrUnknownAttempt indicates a completion report for a collection
	// attempt id that was never started.
	ErrUnknownAttempt = errors.New("unknown collection attempt")

	// ErrInvalidTransition indicates a collection attempt transition that
	// the state machine forbids, such as completing an already-terminal
	// attempt.
	ErrInvalidTransition = errors.New("invalid attempt transition")
)

// ValidateConfidence rejects scores outside [0,1]. Exactly 0 and 1 are valid.
func ValidateConfidence(value float64) error {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return fmt.Errorf("%w: %v is outside [0,1]", ErrInvalidConfidence, value)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. modernc.org/sqlite errors expose the extended result code through
// a Code method; the message check covers wrapped drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		const sqliteConstraintUnique = 2067
		const sqliteConstraintPrimaryKey = 1555
		switch coder.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}
