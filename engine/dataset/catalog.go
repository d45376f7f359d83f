package dataset

import (
	"log/slog"
	"slices"

	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/pkg/fn"
)

// BuildCatalog collects the sorted distinct non-empty makes, models and
// variant tokens of rows.
func BuildCatalog(rows []domain.Fitment) domain.Catalog {
	return domain.Catalog{
		Makes:    distinct(rows, func(f domain.Fitment) string { return f.Make }),
		Models:   distinct(rows, func(f domain.Fitment) string { return f.Model }),
		Variants: distinct(rows, func(f domain.Fitment) string { return f.VariantToken }),
	}
}

func distinct(rows []domain.Fitment, field func(domain.Fitment) string) []string {
	vals := fn.Unique(fn.FilterMap(rows, func(f domain.Fitment) (string, bool) {
		v := field(f)
		return v, v != ""
	}))
	slices.Sort(vals)
	return vals
}

// Quality counts rows whose derived fields could not be computed.
type Quality struct {
	Rows           int
	MissingYears   int
	MissingKType   int
	MissingVariant int
}

// Assess tallies data-quality problems in rows.
func Assess(rows []domain.Fitment) Quality {
	q := Quality{Rows: len(rows)}
	for _, r := range rows {
		if !r.HasYears() {
			q.MissingYears++
		}
		if r.KType == "" {
			q.MissingKType++
		}
		if r.VariantToken == "" {
			q.MissingVariant++
		}
	}
	return q
}

// Clean reports whether every row has years, a K-Type and a variant token.
func (q Quality) Clean() bool {
	return q.MissingYears == 0 && q.MissingKType == 0 && q.MissingVariant == 0
}

// LogValue implements slog.LogValuer.
func (q Quality) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rows", q.Rows),
		slog.Int("missing_years", q.MissingYears),
		slog.Int("missing_ktype", q.MissingKType),
		slog.Int("missing_variant", q.MissingVariant),
	)
}
