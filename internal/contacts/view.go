package contacts

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rolodex/internal/identity"
)

// ContactView bundles a contact with its identifiers, current attributes,
// and categories for presentation.
type ContactView struct {
	Contact     *Contact
	Identifiers []*Identifier
	Attributes  []*Attribute
	Categories  []*Category
}

// GetContactView loads a contact and its related rows. Attributes contains
// only the current row per attribute type.
func (s *Store) GetContactView(ctx context.Context, contactID string) (*ContactView, error) {
	ctx = ensureContext(ctx)

	contact, err := s.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	identifiers, err := s.IdentifiersForContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	attributes, err := s.CurrentAttributes(ctx, contactID)
	if err != nil {
		return nil, err
	}
	categories, err := s.CategoriesForContact(ctx, contactID)
	if err != nil {
		return nil, err
	}

	return &ContactView{
		Contact:     contact,
		Identifiers: identifiers,
		Attributes:  attributes,
		Categories:  categories,
	}, nil
}

var displayCaser = cases.Title(language.English)

// DisplayName picks a human-readable label: the current name attribute when
// one exists, otherwise a name derived from the best identifier. Email local
// parts are split on dots and underscores and title-cased; phone numbers are
// shown as stored.
func (v *ContactView) DisplayName() string {
	for _, attr := range v.Attributes {
		if attr.Type == AttributeTypeName && attr.Value != "" {
			return attr.Value
		}
	}
	// IdentifiersForContact orders verified then confidence, so the first
	// entry is the best candidate.
	for _, ident := range v.Identifiers {
		if ident.Type == identity.TypeEmail {
			if name := nameFromEmail(ident.Value); name != "" {
				return name
			}
		}
		return ident.Value
	}
	return v.Contact.ID
}

func nameFromEmail(address string) string {
	local, _, found := strings.Cut(address, "@")
	if !found || local == "" {
		return ""
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(parts) == 0 {
		return ""
	}
	for i, part := range parts {
		parts[i] = displayCaser.String(part)
	}
	return strings.Join(parts, " ")
}
