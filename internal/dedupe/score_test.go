package dedupe

import (
	"math"
	"testing"
)

var testWeights = Weights{
	Identifier:        0.5,
	Name:              0.35,
	Chat:              0.15,
	MinNameSimilarity: 0.55,
}

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		features Features
		expected float64
	}{
		{"no signals", Features{}, 0},
		{"exact identifier", Features{ExactIdentifierMatch: true}, 0.5},
		{"variant phone", Features{VariantPhoneMatch: true}, 0.3},
		{"exact dominates variant", Features{ExactIdentifierMatch: true, VariantPhoneMatch: true}, 0.5},
		{"name above floor", Features{NameSimilarity: 0.8}, 0.28},
		{"name below floor ignored", Features{NameSimilarity: 0.4}, 0},
		{"one shared chat", Features{SharedChats: 1}, 0.075},
		{"many shared chats saturate", Features{SharedChats: 10}, 0.15},
		{"all signals", Features{ExactIdentifierMatch: true, NameSimilarity: 1.0, SharedChats: 2}, 1.0},
	}
	for _, tc := range cases {
		got := Score(tc.features, testWeights)
		if math.Abs(got-tc.expected) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestScoreStaysInRange(t *testing.T) {
	heavy := Weights{Identifier: 0.6, Name: 0.4, Chat: 0.3, MinNameSimilarity: 0}
	got := Score(Features{ExactIdentifierMatch: true, NameSimilarity: 1.0, SharedChats: 5}, heavy)
	if got != 1.0 {
		t.Fatalf("expected score clamped to 1.0, got %v", got)
	}
}

func TestPhoneVariant(t *testing.T) {
	cases := []struct {
		a, b     string
		expected bool
	}{
		{"+15551234567", "+5551234567", true},
		{"+15551234567", "+15551234567", false},
		{"+445551234567", "+5551234567", true},
		{"+15551234567", "+15557654321", false},
		{"+123456", "+3456", false},
		{"+15551234567", "+4567", false},
	}
	for _, tc := range cases {
		if got := phoneVariant(tc.a, tc.b); got != tc.expected {
			t.Errorf("phoneVariant(%q, %q): expected %v, got %v", tc.a, tc.b, tc.expected, got)
		}
	}
}

func TestIdentifierOverlap(t *testing.T) {
	a := []identifierFeature{
		{typ: "phone", value: "+15551234567"},
		{typ: "email", value: "jane@example.com"},
	}

	exact, _ := identifierOverlap(a, []identifierFeature{{typ: "email", value: "jane@example.com"}})
	if !exact {
		t.Fatal("expected exact email match")
	}

	exact, variant := identifierOverlap(a, []identifierFeature{{typ: "phone", value: "+5551234567"}})
	if exact || !variant {
		t.Fatalf("expected variant phone match, got exact=%v variant=%v", exact, variant)
	}

	// The same digits as an email value must not count as a phone variant.
	exact, variant = identifierOverlap(a, []identifierFeature{{typ: "email", value: "+5551234567"}})
	if exact || variant {
		t.Fatal("expected no cross-type match")
	}
}
