// Package domain defines the core fitment types, alias tables and request
// validation shared by the dataset, lookup and presentation layers.
package domain

// Fitment is one row of the reference dataset. Rows are immutable after load.
type Fitment struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Variant string `json:"variant"`
	// VariantToken is the second whitespace-separated word of Variant, empty when absent.
	VariantToken string `json:"variant_token,omitempty"`
	// VariantTail is everything after the first space of Variant.
	VariantTail string `json:"variant_tail,omitempty"`
	Year        string `json:"year"`
	StartYear   *int   `json:"start_year"`
	EndYear     *int   `json:"end_year"`
	KType       string `json:"ktype"`
}

// HasYears reports whether both derived year bounds are present.
func (f Fitment) HasYears() bool {
	return f.StartYear != nil && f.EndYear != nil
}

// YearRange is a detected (start, end) pair. Either bound may be absent.
type YearRange struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
}

// Detected reports whether both bounds were found.
func (r YearRange) Detected() bool {
	return r.Start != nil && r.End != nil
}

// Years lists every year from Start to End inclusive. Empty unless detected.
func (r YearRange) Years() []int {
	if !r.Detected() || *r.End < *r.Start {
		return nil
	}
	out := make([]int, 0, *r.End-*r.Start+1)
	for y := *r.Start; y <= *r.End; y++ {
		out = append(out, y)
	}
	return out
}

// Contains reports whether y lies within the range, bounds inclusive.
func (r YearRange) Contains(y int) bool {
	return r.Detected() && *r.Start <= y && y <= *r.End
}

// NewYearRange builds a detected range.
func NewYearRange(start, end int) YearRange {
	return YearRange{Start: IntPtr(start), End: IntPtr(end)}
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Detection is everything extracted from a single query text.
type Detection struct {
	Years    YearRange `json:"years"`
	Makes    []string  `json:"makes"`
	Models   []string  `json:"models"`
	Variants []string  `json:"variants"`
}

// Empty reports whether nothing at all was detected.
func (d Detection) Empty() bool {
	return d.Years.Start == nil && d.Years.End == nil &&
		len(d.Makes) == 0 && len(d.Models) == 0 && len(d.Variants) == 0
}

// Selection holds the user's disambiguation choices. Zero values mean "not chosen".
type Selection struct {
	Year  int    `json:"year,omitempty"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

// Catalog lists the distinct non-empty values of the dataset, each sorted.
type Catalog struct {
	Makes    []string `json:"makes"`
	Models   []string `json:"models"`
	Variants []string `json:"variants"`
}
