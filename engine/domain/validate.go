package domain

import (
	"slices"
	"strconv"
	"unicode/utf8"
)

// MaxQueryLength bounds the free-text query, in runes.
const MaxQueryLength = 512

// Options are the disambiguation choices offered for a detection.
type Options struct {
	Years  []int    `json:"years,omitempty"`
	Makes  []string `json:"makes,omitempty"`
	Models []string `json:"models,omitempty"`
}

// ValidateQuery checks the raw query text. Empty text is valid and means
// "nothing entered yet".
func ValidateQuery(text string) error {
	if !utf8.ValidString(text) {
		return NewValidationError("query", text, ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(text); n > MaxQueryLength {
		return NewValidationError("query", strconv.Itoa(n), ErrQueryTooLong)
	}
	return nil
}

// ValidateSelection checks that every chosen value is one of the offered options.
func ValidateSelection(sel Selection, opts Options) error {
	if sel.Year != 0 && !slices.Contains(opts.Years, sel.Year) {
		return NewValidationError("year", strconv.Itoa(sel.Year), ErrYearOutOfRange)
	}
	if sel.Make != "" && !slices.Contains(opts.Makes, sel.Make) {
		return NewValidationError("make", sel.Make, ErrInvalidSelection)
	}
	if sel.Model != "" && !slices.Contains(opts.Models, sel.Model) {
		return NewValidationError("model", sel.Model, ErrInvalidSelection)
	}
	return nil
}
