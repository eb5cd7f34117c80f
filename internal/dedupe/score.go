package dedupe

import (
	"strings"

	"rolodex/internal/config"
	"rolodex/internal/identity"
)

// Identifier match strengths. An exact normalized match is near-certain
// evidence; two phones that differ only by an assumed country code are
// suggestive but weaker.
const (
	exactIdentifierSignal   = 1.0
	variantIdentifierSignal = 0.6

	// minVariantDigits is the shortest national number considered for a
	// country-code variant comparison.
	minVariantDigits = 7
)

// Weights configures the scoring function. The three weights are expected to
// sum to 1 so scores stay in [0,1]; config validation enforces that.
type Weights struct {
	Identifier        float64
	Name              float64
	Chat              float64
	MinNameSimilarity float64
}

// WeightsFromConfig copies the dedupe tuning out of the configuration.
func WeightsFromConfig(cfg *config.Config) Weights {
	return Weights{
		Identifier:        cfg.Dedupe.IdentifierWeight,
		Name:              cfg.Dedupe.NameWeight,
		Chat:              cfg.Dedupe.ChatWeight,
		MinNameSimilarity: cfg.Dedupe.MinNameSimilarity,
	}
}

// Features are the denormalized signals extracted for one contact pair.
type Features struct {
	ExactIdentifierMatch bool
	VariantPhoneMatch    bool
	NameSimilarity       float64
	SharedChats          int
}

// Score combines features into a weighted sum in [0,1]. Name similarity
// below the configured floor contributes nothing, so weak string matches
// cannot accumulate into a merge candidate on their own.
func Score(f Features, w Weights) float64 {
	var identifierSignal float64
	switch {
	case f.ExactIdentifierMatch:
		identifierSignal = exactIdentifierSignal
	case f.VariantPhoneMatch:
		identifierSignal = variantIdentifierSignal
	}

	nameSignal := f.NameSimilarity
	if nameSignal < w.MinNameSimilarity {
		nameSignal = 0
	}

	var chatSignal float64
	if f.SharedChats > 0 {
		chatSignal = 0.5 * float64(f.SharedChats)
		if chatSignal > 1 {
			chatSignal = 1
		}
	}

	score := w.Identifier*identifierSignal + w.Name*nameSignal + w.Chat*chatSignal
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// phoneVariant reports whether two normalized phone numbers plausibly denote
// the same line under different country-code assumptions: one's digits are a
// strict suffix of the other's and the shared national part is long enough
// to be meaningful.
func phoneVariant(a, b string) bool {
	da := strings.TrimPrefix(a, "+")
	db := strings.TrimPrefix(b, "+")
	if da == db {
		return false
	}
	shorter, longer := da, db
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) < minVariantDigits {
		return false
	}
	return strings.HasSuffix(longer, shorter)
}

// identifierOverlap inspects two identifier sets for exact and variant
// matches. Values are compared per type; variant comparison applies to
// phones only.
func identifierOverlap(a, b []identifierFeature) (exact, variant bool) {
	for _, ia := range a {
		for _, ib := range b {
			if ia.typ != ib.typ {
				continue
			}
			if ia.value == ib.value {
				return true, variant
			}
			if ia.typ == identity.TypePhone && phoneVariant(ia.value, ib.value) {
				variant = true
			}
		}
	}
	return false, variant
}

type identifierFeature struct {
	typ   identity.Type
	value string
}
