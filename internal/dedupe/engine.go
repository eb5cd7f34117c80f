package dedupe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"rolodex/internal/config"
	"rolodex/internal/contacts"
	"rolodex/internal/identcache"
	"rolodex/internal/logging"
	"rolodex/internal/textutil"
)

// ErrMergeConflict indicates the merge could not run because one of the
// contacts is locked by a concurrent merge. The caller may retry.
var ErrMergeConflict = errors.New("contact locked by a concurrent merge")

// Candidate is a potential duplicate of the subject contact.
type Candidate struct {
	ContactID string
	Score     float64
	CreatedAt time.Time
}

// Engine scores contacts for duplication and executes merges.
type Engine struct {
	store     *contacts.Store
	cache     *identcache.Cache
	locks     *lockRegistry
	weights   Weights
	threshold float64
	logger    *slog.Logger
}

// NewEngine builds an engine with weights and threshold from configuration.
func NewEngine(store *contacts.Store, cache *identcache.Cache, cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		cache:     cache,
		locks:     newLockRegistry(),
		weights:   WeightsFromConfig(cfg),
		threshold: cfg.Dedupe.Threshold,
		logger:    logging.NewComponentLogger(logger, "dedupe"),
	}
}

// FindCandidates scores every other contact against the subject and returns
// those at or above the threshold, strongest first. Ties order by older
// creation time so repeated runs list candidates stably.
func (e *Engine) FindCandidates(ctx context.Context, contactID string) ([]Candidate, error) {
	subjectContact, err := e.store.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	subject, err := e.loadProfile(ctx, subjectContact)
	if err != nil {
		return nil, err
	}

	others, err := e.store.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, other := range others {
		if other.ID == contactID {
			continue
		}
		profile, err := e.loadProfile(ctx, other)
		if err != nil {
			return nil, err
		}
		score := Score(extractFeatures(subject, profile), e.weights)
		if score >= e.threshold {
			candidates = append(candidates, Candidate{
				ContactID: other.ID,
				Score:     score,
				CreatedAt: other.CreatedAt,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates, nil
}

// Merge consolidates secondary into primary. Both contacts are locked for
// the duration; the resolution cache entries for every identifier either
// contact held are invalidated before the locks release, so no reader can
// resolve a re-parented identifier to the deleted contact.
func (e *Engine) Merge(ctx context.Context, primaryID, secondaryID string) (*contacts.MergeSummary, error) {
	if primaryID == secondaryID {
		return nil, fmt.Errorf("cannot merge contact %s into itself", primaryID)
	}

	release, ok := e.locks.acquire(primaryID, secondaryID)
	if !ok {
		return nil, fmt.Errorf("merge %s into %s: %w", secondaryID, primaryID, ErrMergeConflict)
	}
	defer release()

	summary, err := e.store.MergeContacts(ctx, primaryID, secondaryID)
	if err != nil {
		return nil, err
	}
	e.cache.Invalidate(summary.TouchedIdentifierKeys...)

	e.logger.Info("merged contacts",
		logging.String(logging.FieldContactID, primaryID),
		logging.String("merged_from", secondaryID),
		logging.Int("identifiers_moved", summary.IdentifiersMoved),
		logging.Int("attributes_moved", summary.AttributesMoved))
	return summary, nil
}

// profile holds the denormalized signals for one contact.
type profile struct {
	identifiers []identifierFeature
	name        string
	chats       map[string]struct{}
}

func (e *Engine) loadProfile(ctx context.Context, contact *contacts.Contact) (*profile, error) {
	p := &profile{chats: make(map[string]struct{})}

	identifiers, err := e.store.IdentifiersForContact(ctx, contact.ID)
	if err != nil {
		return nil, err
	}
	for _, ident := range identifiers {
		p.identifiers = append(p.identifiers, identifierFeature{typ: ident.Type, value: ident.Value})
	}

	name, err := e.store.CurrentAttribute(ctx, contact.ID, contacts.AttributeTypeName)
	switch {
	case err == nil:
		p.name = name.Value
	case errors.Is(err, contacts.ErrNotFound):
		// Unnamed contacts score on identifiers and chats alone.
	default:
		return nil, err
	}

	attempts, err := e.store.AttemptsForContact(ctx, contact.ID)
	if err != nil {
		return nil, err
	}
	for _, attempt := range attempts {
		if attempt.ChatGUID != "" {
			p.chats[attempt.ChatGUID] = struct{}{}
		}
	}
	return p, nil
}

func extractFeatures(a, b *profile) Features {
	exact, variant := identifierOverlap(a.identifiers, b.identifiers)

	var nameSim float64
	if a.name != "" && b.name != "" {
		nameSim = textutil.NameSimilarity(a.name, b.name)
	}

	shared := 0
	for chat := range a.chats {
		if _, ok := b.chats[chat]; ok {
			shared++
		}
	}

	return Features{
		ExactIdentifierMatch: exact,
		VariantPhoneMatch:    variant,
		NameSimilarity:       nameSim,
		SharedChats:          shared,
	}
}
