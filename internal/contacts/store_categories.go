package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertCategory adds a weighted label to a contact. Re-labeling with the
// same category keeps the higher confidence.
func (s *Store) UpsertCategory(ctx context.Context, contactID, category string, confidence float64) error {
	if err := ValidateConfidence(confidence); err != nil {
		return err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return errors.New("category is required")
	}

	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := contactExistsTx(ctx, tx, contactID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_categories (contact_id, category, confidence_score, created_at)
             VALUES (?, ?, ?, ?)
             ON CONFLICT (contact_id, category)
             DO UPDATE SET confidence_score = MAX(confidence_score, excluded.confidence_score)`,
			contactID, category, confidence, timestamp(now),
		); err != nil {
			return fmt.Errorf("upsert category: %w", err)
		}
		return touchContactTx(ctx, tx, contactID, now)
	})
}

// CategoriesForContact returns a contact's labels ordered by descending
// confidence.
func (s *Store) CategoriesForContact(ctx context.Context, contactID string) ([]*Category, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id, contact_id, category, confidence_score, created_at
         FROM contact_categories
         WHERE contact_id = ?
         ORDER BY confidence_score DESC, category`,
		contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("categories for contact: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		var (
			cat        Category
			createdRaw string
		)
		if err := rows.Scan(&cat.ID, &cat.ContactID, &cat.Name, &cat.Confidence, &createdRaw); err != nil {
			return nil, err
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			cat.CreatedAt = created
		}
		categories = append(categories, &cat)
	}
	return categories, rows.Err()
}
