// Package fitment narrows the reference dataset with the year, make, model
// and variant criteria extracted from a query.
package fitment

import (
	"context"

	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/pkg/fn"
)

// Criteria are the optional filters of one lookup. Zero values disable a filter.
type Criteria struct {
	// Year, when non-zero, takes precedence over Range.
	Year     int
	Range    domain.YearRange
	Make     string
	Model    string
	Variants []string
}

type fitments = []domain.Fitment

// Stages returns the cascade for c in application order: year, make, model, variant.
// Stages whose criterion is absent pass their input through unchanged.
func Stages(c Criteria) []fn.Stage[fitments, fitments] {
	return []fn.Stage[fitments, fitments]{
		fn.TracedStage("fitment.year", fn.FilterStage(yearPredicate(c))),
		fn.TracedStage("fitment.make", fn.FilterStage(equals(c.Make, func(f domain.Fitment) string { return f.Make }))),
		fn.TracedStage("fitment.model", fn.FilterStage(equals(c.Model, func(f domain.Fitment) string { return f.Model }))),
		fn.TracedStage("fitment.variant", fn.FilterStage(variantPredicate(c.Variants))),
	}
}

// Apply runs the cascade over all. The input slice is never modified.
func Apply(ctx context.Context, all []domain.Fitment, c Criteria) ([]domain.Fitment, error) {
	out, err := fn.Pipeline(Stages(c)...)(ctx, all).Unwrap()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func yearPredicate(c Criteria) func(domain.Fitment) bool {
	switch {
	case c.Year != 0:
		return func(f domain.Fitment) bool { return CoversYear(f, c.Year) }
	case c.Range.Detected():
		return func(f domain.Fitment) bool { return Overlaps(f, *c.Range.Start, *c.Range.End) }
	default:
		return nil
	}
}

// CoversYear reports whether y lies within the row's years, bounds inclusive.
// Rows without both bounds never match.
func CoversYear(f domain.Fitment, y int) bool {
	return f.HasYears() && *f.StartYear <= y && y <= *f.EndYear
}

// Overlaps reports whether the row's years intersect [start, end].
func Overlaps(f domain.Fitment, start, end int) bool {
	return f.HasYears() && *f.StartYear <= end && *f.EndYear >= start
}

func equals(want string, field func(domain.Fitment) string) func(domain.Fitment) bool {
	if want == "" {
		return nil
	}
	return func(f domain.Fitment) bool { return field(f) == want }
}

func variantPredicate(tokens []string) func(domain.Fitment) bool {
	if len(tokens) == 0 {
		return nil
	}
	set := fn.Set(tokens)
	return func(f domain.Fitment) bool {
		_, ok := set[f.VariantToken]
		return ok && f.VariantToken != ""
	}
}
