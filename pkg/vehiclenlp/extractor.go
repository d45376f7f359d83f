// Package vehiclenlp extracts vehicle make, model, variant and year-range
// tokens from free-text listing titles using regex and substring matching
// against the values present in the fitment dataset.
package vehiclenlp

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/pkg/fn"
)

// yearRangeRe matches two groups of 2-4 digits separated by a hyphen, e.g. 2001-2005 or 98-02.
var yearRangeRe = regexp.MustCompile(`(\d{2,4})-(\d{2,4})`)

// now is swapped in tests to pin the two-digit century pivot.
var now = time.Now

// ExtractYears returns the first hyphenated year pair in text. A two-digit
// start lands in the current century, or the previous one when it lies
// beyond next year. A two-digit end takes the start's century, moved one
// century on when that keeps the range ordered without passing next year.
// Otherwise no ordering check is made between the bounds.
func ExtractYears(text string) domain.YearRange {
	m := yearRangeRe.FindStringSubmatch(text)
	if m == nil {
		return domain.YearRange{}
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.YearRange{}
	}
	end, err := strconv.Atoi(m[2])
	if err != nil {
		return domain.YearRange{}
	}
	limit := now().Year() + 1
	if len(m[1]) == 2 {
		start = pivotYear(start, limit)
	}
	if len(m[2]) == 2 {
		end = endYear(start, end, limit)
	}
	return domain.NewYearRange(start, end)
}

func pivotYear(yy, limit int) int {
	if yy > limit%100 {
		return 1900 + yy
	}
	return 2000 + yy
}

func endYear(start, yy, limit int) int {
	if start < 1000 {
		return pivotYear(yy, limit)
	}
	end := start/100*100 + yy
	if end < start && end+100 <= limit {
		end += 100
	}
	return end
}

// FindPhraseKeywords returns every keyword contained in text, compared
// case-insensitively, in the order the keywords were given.
func FindPhraseKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	return fn.Filter(keywords, func(kw string) bool {
		return kw != "" && strings.Contains(lower, strings.ToLower(kw))
	})
}

// MapAliasToModel returns the canonical model of every alias contained in
// text, in sorted alias order. The same model may appear more than once.
func MapAliasToModel(text string, aliases domain.AliasTable) []string {
	lower := strings.ToLower(text)
	return fn.FilterMap(aliases.Keys(), func(alias string) (string, bool) {
		if !strings.Contains(lower, alias) {
			return "", false
		}
		return aliases[alias], true
	})
}

// MatchModels unions exact model-name matches with alias matches. Aliases
// naming a model absent from models are ignored. The result is deduplicated
// and sorted.
func MatchModels(text string, models []string, aliases domain.AliasTable) []string {
	known := fn.Set(models)
	viaAlias := fn.Filter(MapAliasToModel(text, aliases), func(m string) bool {
		_, ok := known[m]
		return ok
	})
	found := fn.Unique(append(viaAlias, FindPhraseKeywords(text, models)...))
	slices.Sort(found)
	return found
}

// MatchMakes returns the catalog makes named in text directly or through a
// nickname in aliases. Nicknames for makes absent from makes are ignored.
func MatchMakes(text string, makes []string, aliases domain.AliasTable) []string {
	viaAlias := fn.Set(MapAliasToModel(text, aliases))
	exact := fn.Set(FindPhraseKeywords(text, makes))
	return fn.Filter(makes, func(m string) bool {
		_, a := viaAlias[m]
		_, e := exact[m]
		return a || e
	})
}

// Detect runs every extractor over text. Empty or blank text yields an empty Detection.
func Detect(text string, catalog domain.Catalog, modelAliases, makeAliases domain.AliasTable) domain.Detection {
	if strings.TrimSpace(text) == "" {
		return domain.Detection{}
	}
	return domain.Detection{
		Years:    ExtractYears(text),
		Makes:    MatchMakes(text, catalog.Makes, makeAliases),
		Models:   MatchModels(text, catalog.Models, modelAliases),
		Variants: FindPhraseKeywords(text, catalog.Variants),
	}
}
