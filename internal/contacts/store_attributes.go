package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const attributeColumns = "attribute_id, contact_id, attribute_type, attribute_value, confidence_score, source, is_current, created_at, updated_at"

// sourceRankSQL mirrors Source.Precedence for in-query ordering.
const sourceRankSQL = `CASE source WHEN 'user_provided' THEN 2 WHEN 'extracted' THEN 1 ELSE 0 END`

// UpsertAttribute records one observation of a typed fact and recomputes
// which row is current for that (contact, type) pair, all in one transaction.
//
// The merge policy: higher source precedence always wins; within equal
// precedence higher confidence wins; remaining ties keep the most recently
// written row. Every observation is retained as history regardless of
// whether it becomes current.
func (s *Store) UpsertAttribute(ctx context.Context, contactID, attrType, value string, source Source, confidence float64) (*Attribute, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return nil, err
	}
	if _, ok := ParseSource(string(source)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, string(source))
	}
	attrType = strings.TrimSpace(attrType)
	if attrType == "" {
		return nil, errors.New("attribute type is required")
	}

	ctx = ensureContext(ctx)
	var attributeID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := contactExistsTx(ctx, tx, contactID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}

		now := time.Now()
		ts := timestamp(now)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO contact_attributes (
                contact_id, attribute_type, attribute_value,
                confidence_score, source, is_current, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
			contactID, attrType, value, confidence, string(source), ts, ts,
		)
		if err != nil {
			return fmt.Errorf("insert attribute: %w", err)
		}
		attributeID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		if err := recomputeCurrentTx(ctx, tx, contactID, attrType); err != nil {
			return err
		}
		return touchContactTx(ctx, tx, contactID, now)
	})
	if err != nil {
		return nil, err
	}

	return s.getAttribute(ctx, attributeID)
}

// CurrentAttribute returns the authoritative value for a (contact, type)
// pair, or ErrNotFound when no observation of that type exists.
func (s *Store) CurrentAttribute(ctx context.Context, contactID, attrType string) (*Attribute, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM contact_attributes
         WHERE contact_id = ? AND attribute_type = ? AND is_current = 1`,
		contactID, attrType,
	)
	attr, err := scanAttribute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attribute %s/%s: %w", contactID, attrType, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("current attribute: %w", err)
	}
	return attr, nil
}

// CurrentAttributes returns the current row for every attribute type a
// contact has, ordered by type.
func (s *Store) CurrentAttributes(ctx context.Context, contactID string) ([]*Attribute, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attributeColumns+` FROM contact_attributes
         WHERE contact_id = ? AND is_current = 1
         ORDER BY attribute_type`,
		contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("current attributes: %w", err)
	}
	defer rows.Close()
	return collectAttributes(rows)
}

// AttributeHistory returns every observation of a type for a contact, newest
// first. History is append-only; superseded rows remain.
func (s *Store) AttributeHistory(ctx context.Context, contactID, attrType string) ([]*Attribute, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attributeColumns+` FROM contact_attributes
         WHERE contact_id = ? AND attribute_type = ?
         ORDER BY attribute_id DESC`,
		contactID, attrType,
	)
	if err != nil {
		return nil, fmt.Errorf("attribute history: %w", err)
	}
	defer rows.Close()
	return collectAttributes(rows)
}

func (s *Store) getAttribute(ctx context.Context, attributeID int64) (*Attribute, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM contact_attributes WHERE attribute_id = ?`,
		attributeID,
	)
	attr, err := scanAttribute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attribute %d: %w", attributeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get attribute: %w", err)
	}
	return attr, nil
}

// recomputeCurrentTx re-derives the current mark for one (contact, type)
// pair. The current row is computed over the full history, so it is always
// the winner under the precedence/confidence/recency ordering no matter what
// order observations arrived in.
func recomputeCurrentTx(ctx context.Context, tx *sql.Tx, contactID, attrType string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE contact_attributes SET is_current = 0
         WHERE contact_id = ? AND attribute_type = ? AND is_current = 1`,
		contactID, attrType,
	); err != nil {
		return fmt.Errorf("clear current attribute: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE contact_attributes SET is_current = 1
         WHERE attribute_id = (
             SELECT attribute_id FROM contact_attributes
             WHERE contact_id = ? AND attribute_type = ?
             ORDER BY `+sourceRankSQL+` DESC, confidence_score DESC, attribute_id DESC
             LIMIT 1
         )`,
		contactID, attrType,
	); err != nil {
		return fmt.Errorf("mark current attribute: %w", err)
	}
	return nil
}

func collectAttributes(rows *sql.Rows) ([]*Attribute, error) {
	var attrs []*Attribute
	for rows.Next() {
		attr, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, rows.Err()
}

func scanAttribute(scanner interface{ Scan(dest ...any) error }) (*Attribute, error) {
	var (
		id         int64
		contactID  string
		attrType   string
		value      string
		confidence float64
		source     string
		isCurrent  int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &contactID, &attrType, &value, &confidence, &source, &isCurrent, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	attr := &Attribute{
		ID:         id,
		ContactID:  contactID,
		Type:       attrType,
		Value:      value,
		Confidence: confidence,
		Source:     Source(source),
		IsCurrent:  isCurrent != 0,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		attr.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		attr.UpdatedAt = updated
	}
	return attr, nil
}
