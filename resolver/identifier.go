package resolver

import (
	"strings"

	"github.com/tsawler/blockgrid/model"
)

// Tier says which matching rule produced a match.
type Tier int

const (
	// TierNone means nothing matched.
	TierNone Tier = iota
	// TierExact means the normalised forms were equal.
	TierExact
	// TierPartial means one normalised form contained the other.
	TierPartial
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPartial:
		return "partial"
	default:
		return "none"
	}
}

// ResolveIdentifier finds the block whose label best matches query,
// optionally restricted to groups that contain group. It returns false when
// nothing matches or the query normalises to the empty string.
func ResolveIdentifier(blocks []model.Block, query, group string) (model.Block, bool) {
	b, tier := ResolveIdentifierTier(blocks, query, group)
	return b, tier != TierNone
}

// ResolveIdentifierTier is ResolveIdentifier that also reports the tier.
// The partial tier tries labels that contain the query before labels the
// query contains, so "TeamXYZ" picks "Team-XYZ-Core" over "Team-X".
func ResolveIdentifierTier(blocks []model.Block, query, group string) (model.Block, Tier) {
	q := Normalize(query)
	if q == "" {
		return model.Block{}, TierNone
	}

	for _, b := range blocks {
		if GroupMatches(group, b.Group) && Normalize(b.Label) == q {
			return b, TierExact
		}
	}
	for _, b := range blocks {
		if GroupMatches(group, b.Group) && contains(Normalize(b.Label), q) {
			return b, TierPartial
		}
	}
	for _, b := range blocks {
		if GroupMatches(group, b.Group) && contains(q, Normalize(b.Label)) {
			return b, TierPartial
		}
	}
	return model.Block{}, TierNone
}

// Match finds the candidate that names the same thing as label, using the
// same tiers as ResolveIdentifier with each candidate in the query role.
// The first candidate in list order wins within a tier.
func Match(label string, candidates []string) (string, bool) {
	l := Normalize(label)
	if l == "" {
		return "", false
	}

	for _, c := range candidates {
		if Normalize(c) == l {
			return c, true
		}
	}
	for _, c := range candidates {
		if contains(l, Normalize(c)) {
			return c, true
		}
	}
	for _, c := range candidates {
		if contains(Normalize(c), l) {
			return c, true
		}
	}
	return "", false
}

// contains reports whether s contains a non-empty sub.
func contains(s, sub string) bool {
	return sub != "" && strings.Contains(s, sub)
}
