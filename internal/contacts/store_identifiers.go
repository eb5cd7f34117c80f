package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rolodex/internal/identity"
)

const identifierColumns = "identifier_id, contact_id, identifier_type, identifier_value, confidence_score, verified, created_at, updated_at"

// FindContactIDByIdentifier looks up the contact currently claiming the
// normalized (type, value) pair. Returns ErrNotFound when unclaimed.
func (s *Store) FindContactIDByIdentifier(ctx context.Context, typ identity.Type, value string) (string, error) {
	ctx = ensureContext(ctx)
	var contactID string
	err := s.db.QueryRowContext(ctx,
		`SELECT contact_id FROM contact_identifiers WHERE identifier_type = ? AND identifier_value = ?`,
		string(typ), value,
	).Scan(&contactID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("identifier %s:%s: %w", typ, value, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("find by identifier: %w", err)
	}
	return contactID, nil
}

// CreateContactWithIdentifier creates a new contact and binds the normalized
// identifier to it inside one transaction. A concurrent claim of the same
// identifier surfaces as ErrDuplicateIdentifier; the storage uniqueness
// constraint is the arbiter, so callers re-read and adopt the winner.
func (s *Store) CreateContactWithIdentifier(ctx context.Context, typ identity.Type, value string, confidence float64, verified bool) (*Contact, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return nil, err
	}

	ctx = ensureContext(ctx)
	contactID := NewContactID()
	now := time.Now()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertContactTx(ctx, tx, contactID, now); err != nil {
			return err
		}
		ts := timestamp(now)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_identifiers (
                contact_id, identifier_type, identifier_value,
                confidence_score, verified, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			contactID, string(typ), value, confidence, boolToInt(verified), ts, ts,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("identifier %s:%s: %w", typ, value, ErrDuplicateIdentifier)
			}
			return fmt.Errorf("insert identifier: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetContact(ctx, contactID)
}

// ObserveIdentifier records a re-observation of an existing identifier.
// Confidence only ever increases (monotonic-increase policy) and the verified
// flag can only be raised. Returns the owning contact id, or ErrNotFound.
func (s *Store) ObserveIdentifier(ctx context.Context, typ identity.Type, value string, confidence float64, verified bool) (string, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return "", err
	}

	ctx = ensureContext(ctx)
	var contactID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			stored     float64
			isVerified int
		)
		err := tx.QueryRowContext(ctx,
			`SELECT contact_id, confidence_score, verified FROM contact_identifiers
             WHERE identifier_type = ? AND identifier_value = ?`,
			string(typ), value,
		).Scan(&contactID, &stored, &isVerified)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("identifier %s:%s: %w", typ, value, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read identifier: %w", err)
		}

		raiseConfidence := confidence > stored
		raiseVerified := verified && isVerified == 0
		if !raiseConfidence && !raiseVerified {
			return nil
		}

		now := time.Now()
		newConfidence := stored
		if raiseConfidence {
			newConfidence = confidence
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE contact_identifiers
             SET confidence_score = ?, verified = ?, updated_at = ?
             WHERE identifier_type = ? AND identifier_value = ?`,
			newConfidence, boolToInt(verified || isVerified != 0), timestamp(now),
			string(typ), value,
		); err != nil {
			return fmt.Errorf("update identifier: %w", err)
		}
		return touchContactTx(ctx, tx, contactID, now)
	})
	if err != nil {
		return "", err
	}
	return contactID, nil
}

// IdentifiersForContact returns all identifiers bound to a contact, ordered
// by descending confidence with verified rows first.
func (s *Store) IdentifiersForContact(ctx context.Context, contactID string) ([]*Identifier, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+identifierColumns+` FROM contact_identifiers
         WHERE contact_id = ?
         ORDER BY verified DESC, confidence_score DESC, identifier_id`,
		contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("identifiers for contact: %w", err)
	}
	defer rows.Close()

	var identifiers []*Identifier
	for rows.Next() {
		ident, err := scanIdentifier(rows)
		if err != nil {
			return nil, err
		}
		identifiers = append(identifiers, ident)
	}
	return identifiers, rows.Err()
}

func scanIdentifier(scanner interface{ Scan(dest ...any) error }) (*Identifier, error) {
	var (
		id         int64
		contactID  string
		typeStr    string
		value      string
		confidence float64
		verified   int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &contactID, &typeStr, &value, &confidence, &verified, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	ident := &Identifier{
		ID:         id,
		ContactID:  contactID,
		Type:       identity.Type(typeStr),
		Value:      value,
		Confidence: confidence,
		Verified:   verified != 0,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		ident.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		ident.UpdatedAt = updated
	}
	return ident, nil
}
