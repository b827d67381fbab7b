// Package index abstracts the fuzzy search backend. A Query is built from
// small named fragments instead of imperative accumulation so each piece of
// the lookup (text match, score floor, type constraint, sanction join) stays
// independently testable.
package index

import (
	"context"

	"vigil/internal/screening/models"
)

// Domain selects which watchlist collection a query runs against.
type Domain string

const (
	DomainExposed    Domain = "exposed"
	DomainSanctioned Domain = "sanctioned"
)

// Defaults applied by NewQuery. The floor is the coarse index-native
// pre-filter bounding result-set size; it is independent of the displayed
// similarity score.
const (
	DefaultTolerance  = 2
	DefaultScoreFloor = 0.25
)

// Query describes one index lookup: a fuzzy text match over the name fields,
// a normalized-score floor relative to the top hit, and optional constraints.
type Query struct {
	Domain          Domain
	Text            string
	Fields          []string
	Tolerance       int
	ScoreFloor      float64
	TypePattern     string
	IncludeSanction bool
}

// NewQuery builds a query with the default fuzzy tolerance and score floor
// over the defaultName/alias fields.
func NewQuery(domain Domain, text string) Query {
	return Query{
		Domain:     domain,
		Text:       text,
		Fields:     []string{"defaultName", "alias"},
		Tolerance:  DefaultTolerance,
		ScoreFloor: DefaultScoreFloor,
	}
}

// WithTolerance sets the fuzzy edit-distance tolerance.
func (q Query) WithTolerance(tolerance int) Query {
	q.Tolerance = tolerance
	return q
}

// WithScoreFloor sets the normalized-score floor (0..1).
func (q Query) WithScoreFloor(floor float64) Query {
	q.ScoreFloor = floor
	return q
}

// WithTypePattern constrains hits to entities whose type matches the pattern
// case-insensitively.
func (q Query) WithTypePattern(pattern string) Query {
	q.TypePattern = pattern
	return q
}

// WithSanctionLookup joins each hit to its issuing sanction list.
func (q Query) WithSanctionLookup() Query {
	q.IncludeSanction = true
	return q
}

// Index is the search backend. Implementations return hits with IndexScore
// already normalized against the top hit of the same query and the floor
// applied.
type Index interface {
	Search(ctx context.Context, q Query) ([]models.SearchHit, error)
}
