// Package dataset loads the vehicle fitment reference file, derives the year
// bounds and variant tokens of every row, and caches the result for the
// lifetime of the process.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/WessleyAI/ktype-finder/engine/domain"
)

// Column names expected in the header row, compared case-insensitively.
const (
	ColMake    = "make"
	ColModel   = "model"
	ColVariant = "variant"
	ColYear    = "year"
	ColKType   = "k-type"
)

var requiredColumns = []string{ColMake, ColModel, ColVariant, ColYear, ColKType}

// Options controls how the reference file is read.
type Options struct {
	// Encoding names the file's text encoding: latin1 (default), windows-1252 or utf-8.
	Encoding string
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// DefaultOptions reads a comma-separated Latin-1 file.
func DefaultOptions() Options {
	return Options{Encoding: "latin1", Comma: ','}
}

// lookupEncoding maps an encoding name to its decoder.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// LoadFile reads the reference file at path. The returned fingerprint is the
// xxhash of the raw file bytes.
func LoadFile(path string, opts Options) ([]domain.Fitment, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	h := xxhash.New()
	rows, err := Load(io.TeeReader(f, h), opts)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", path, err)
	}
	return rows, fmt.Sprintf("%016x", h.Sum64()), nil
}

// Load parses delimited fitment data from r. Rows with missing or malformed
// fields are kept; their derived values are simply left empty.
func Load(r io.Reader, opts Options) ([]domain.Fitment, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(enc.NewDecoder().Reader(r))
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrDatasetEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []domain.Fitment
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, newFitment(rec, idx))
	}
	if len(rows) == 0 {
		return nil, domain.ErrDatasetEmpty
	}
	return rows, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, domain.NewValidationError("header", col, domain.ErrMissingColumn)
		}
	}
	return idx, nil
}

func newFitment(rec []string, idx map[string]int) domain.Fitment {
	field := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	variant := field(ColVariant)
	year := field(ColYear)
	start, end := yearBounds(year)
	return domain.Fitment{
		Make:         field(ColMake),
		Model:        field(ColModel),
		Variant:      variant,
		VariantToken: secondWord(variant),
		VariantTail:  afterFirstSpace(variant),
		Year:         year,
		StartYear:    start,
		EndYear:      end,
		KType:        field(ColKType),
	}
}
