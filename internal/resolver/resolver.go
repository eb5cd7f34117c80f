package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rolodex/internal/config"
	"rolodex/internal/contacts"
	"rolodex/internal/identcache"
	"rolodex/internal/identity"
	"rolodex/internal/logging"
)

// Resolver turns raw identifier observations into canonical contact ids.
type Resolver struct {
	store  *contacts.Store
	cache  *identcache.Cache
	region string
	logger *slog.Logger
}

// Resolution reports the outcome of a resolve call.
type Resolution struct {
	ContactID  string
	Type       identity.Type
	Normalized string
	Created    bool
}

// New builds a resolver over the given store and cache. The default phone
// region comes from configuration.
func New(store *contacts.Store, cache *identcache.Cache, cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cache:  cache,
		region: cfg.Identity.DefaultRegion,
		logger: logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve looks up the contact currently bound to an identifier without
// creating one. Returns contacts.ErrNotFound when no contact claims it.
func (r *Resolver) Resolve(ctx context.Context, typ identity.Type, raw string) (*Resolution, error) {
	normalized, err := identity.Normalize(typ, raw, r.region)
	if err != nil {
		return nil, err
	}
	key := identity.CacheKey(typ, normalized)

	if contactID, ok := r.cache.Lookup(key); ok {
		return &Resolution{ContactID: contactID, Type: typ, Normalized: normalized}, nil
	}

	contactID, err := r.store.FindContactIDByIdentifier(ctx, typ, normalized)
	if err != nil {
		return nil, err
	}
	r.cache.Store(key, contactID)
	return &Resolution{ContactID: contactID, Type: typ, Normalized: normalized}, nil
}

// ResolveOrCreate returns the contact bound to an identifier, creating one on
// first observation. Re-observation raises identifier confidence, never
// lowers it; a user-provided source marks the identifier verified. When two
// callers race to create the same identifier, the storage uniqueness
// constraint picks one winner and the loser adopts the winner's contact.
// The cache is refreshed only after the write commits.
func (r *Resolver) ResolveOrCreate(ctx context.Context, typ identity.Type, raw string, source contacts.Source, confidence float64) (*Resolution, error) {
	normalized, err := identity.Normalize(typ, raw, r.region)
	if err != nil {
		return nil, err
	}
	if err := contacts.ValidateConfidence(confidence); err != nil {
		return nil, err
	}
	if _, ok := contacts.ParseSource(string(source)); !ok {
		return nil, fmt.Errorf("source %q: %w", source, contacts.ErrInvalidSource)
	}

	key := identity.CacheKey(typ, normalized)
	verified := source == contacts.SourceUserProvided

	if contactID, ok := r.cache.Lookup(key); ok {
		// Fast path. Still record the observation so confidence and the
		// verified flag can only move up.
		if _, err := r.store.ObserveIdentifier(ctx, typ, normalized, confidence, verified); err != nil {
			if errors.Is(err, contacts.ErrNotFound) {
				// The entry outlived its row, fall through to creation.
				r.cache.Invalidate(key)
			} else {
				return nil, err
			}
		} else {
			return &Resolution{ContactID: contactID, Type: typ, Normalized: normalized}, nil
		}
	}

	contactID, err := r.store.ObserveIdentifier(ctx, typ, normalized, confidence, verified)
	if err == nil {
		r.cache.Store(key, contactID)
		return &Resolution{ContactID: contactID, Type: typ, Normalized: normalized}, nil
	}
	if !errors.Is(err, contacts.ErrNotFound) {
		return nil, err
	}

	contact, err := r.store.CreateContactWithIdentifier(ctx, typ, normalized, confidence, verified)
	if err == nil {
		r.logger.Info("created contact",
			logging.String(logging.FieldContactID, contact.ID),
			logging.String(logging.FieldIdentifierType, string(typ)))
		r.cache.Store(key, contact.ID)
		return &Resolution{ContactID: contact.ID, Type: typ, Normalized: normalized, Created: true}, nil
	}
	if !errors.Is(err, contacts.ErrDuplicateIdentifier) {
		return nil, err
	}

	// Another caller created the contact between our read and write. Adopt
	// theirs.
	contactID, err = r.store.FindContactIDByIdentifier(ctx, typ, normalized)
	if err != nil {
		return nil, fmt.Errorf("re-read after uniqueness conflict: %w", err)
	}
	if _, err := r.store.ObserveIdentifier(ctx, typ, normalized, confidence, verified); err != nil && !errors.Is(err, contacts.ErrNotFound) {
		return nil, err
	}
	r.cache.Store(key, contactID)
	return &Resolution{ContactID: contactID, Type: typ, Normalized: normalized}, nil
}
