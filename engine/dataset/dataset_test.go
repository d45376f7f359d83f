package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/WessleyAI/ktype-finder/engine/domain"
)

const sampleCSV = `Make,Model,Variant,Year,K-Type
BMW,3 Series,320d 2.0 Diesel,2001-2005,12345
BMW,3 Series,330i 3.0 Petrol,1998-2001,12346
BMW,5 Series,525d,2003-2010,22334
Audi,A4,1.9 TDI,2000-2004,33445
Audi,A4,,n/a,33446
`

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	rows, err := Load(strings.NewReader(sampleCSV), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	r := rows[0]
	if r.Make != "BMW" || r.Model != "3 Series" || r.KType != "12345" {
		t.Fatalf("unexpected row: %+v", r)
	}
	if r.StartYear == nil || *r.StartYear != 2001 || r.EndYear == nil || *r.EndYear != 2005 {
		t.Fatalf("unexpected years: %v %v", r.StartYear, r.EndYear)
	}
	if r.VariantToken != "2.0" {
		t.Fatalf("expected second word 2.0, got %q", r.VariantToken)
	}
	if r.VariantTail != "2.0 Diesel" {
		t.Fatalf("unexpected tail %q", r.VariantTail)
	}

	if rows[2].VariantToken != "" || rows[2].VariantTail != "" {
		t.Fatalf("single-word variant should have no token or tail: %+v", rows[2])
	}

	last := rows[4]
	if last.HasYears() || last.StartYear != nil || last.EndYear != nil {
		t.Fatalf("malformed year should leave bounds nil: %+v", last)
	}
	if last.VariantToken != "" {
		t.Fatalf("empty variant should have no token: %+v", last)
	}
}

func TestLoad_HeaderCaseAndOrder(t *testing.T) {
	data := " k-type ;YEAR;variant;MODEL;Make\n999;2010-2012;Golf 1.6 TDI;Golf;Volkswagen\n"
	rows, err := Load(strings.NewReader(data), Options{Encoding: "utf-8", Comma: ';'})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Make != "Volkswagen" || rows[0].KType != "999" || rows[0].VariantToken != "1.6" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestLoad_Latin1(t *testing.T) {
	data := "Make,Model,Variant,Year,K-Type\nCitro\xebn,C4,1.6 HDi,2004-2010,555\n"
	rows, err := Load(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Make != "Citroën" {
		t.Fatalf("expected decoded make Citroën, got %q", rows[0].Make)
	}
}

func TestLoad_UTF8BOM(t *testing.T) {
	data := "\xef\xbb\xbfMake,Model,Variant,Year,K-Type\nŠkoda,Octavia,1.9 TDI,2004-2013,777\n"
	rows, err := Load(strings.NewReader(data), Options{Encoding: "utf8"})
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Make != "Škoda" {
		t.Fatalf("unexpected make %q", rows[0].Make)
	}
}

func TestLoad_ShortRecord(t *testing.T) {
	data := "Make,Model,Variant,Year,K-Type\nBMW,X5\n"
	rows, err := Load(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Model != "X5" || rows[0].KType != "" || rows[0].HasYears() {
		t.Fatalf("short record should leave trailing fields empty: %+v", rows[0])
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("Make,Model,Variant,Year\nBMW,X5,3.0d,2007-2013\n"), DefaultOptions())
	if !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}

	_, err = Load(strings.NewReader(""), DefaultOptions())
	if !errors.Is(err, domain.ErrDatasetEmpty) {
		t.Fatalf("expected ErrDatasetEmpty, got %v", err)
	}

	_, err = Load(strings.NewReader("Make,Model,Variant,Year,K-Type\n"), DefaultOptions())
	if !errors.Is(err, domain.ErrDatasetEmpty) {
		t.Fatalf("expected ErrDatasetEmpty for header only, got %v", err)
	}

	_, err = Load(strings.NewReader(sampleCSV), Options{Encoding: "ebcdic"})
	if err == nil {
		t.Fatal("expected unsupported encoding error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, fp, err := LoadFile(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 || len(fp) != 16 {
		t.Fatalf("unexpected result: %d rows, fingerprint %q", len(rows), fp)
	}

	_, fp2, err := LoadFile(path, DefaultOptions())
	if err != nil || fp2 != fp {
		t.Fatalf("fingerprint should be stable: %q vs %q (%v)", fp, fp2, err)
	}

	if _, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestYearBounds(t *testing.T) {
	tests := []struct {
		raw        string
		start, end int // 0 = nil
	}{
		{"2001-2005", 2001, 2005},
		{"2001", 2001, 2001},
		{"2001-", 2001, 0},
		{"-2005", 0, 2005},
		{"99", 99, 99},
		{"", 0, 0},
		{"nan", 0, 0},
		{" 2001 - 2005 ", 2001, 2005},
		{"01/2001-12/2005", 0, 2005},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s, e := yearBounds(tt.raw)
			check := func(name string, got *int, want int) {
				if want == 0 {
					if got != nil {
						t.Errorf("%s = %d, want nil", name, *got)
					}
					return
				}
				if got == nil || *got != want {
					t.Errorf("%s = %v, want %d", name, got, want)
				}
			}
			check("start", s, tt.start)
			check("end", e, tt.end)
		})
	}
}

func TestVariantTokens(t *testing.T) {
	if got := secondWord("320d  2.0   Diesel"); got != "2.0" {
		t.Errorf("secondWord = %q", got)
	}
	if got := secondWord("525d"); got != "" {
		t.Errorf("secondWord single = %q", got)
	}
	if got := afterFirstSpace("320d 2.0 Diesel"); got != "2.0 Diesel" {
		t.Errorf("afterFirstSpace = %q", got)
	}
	if got := afterFirstSpace("525d"); got != "" {
		t.Errorf("afterFirstSpace single = %q", got)
	}
}

func TestBuildCatalog(t *testing.T) {
	rows, err := Load(strings.NewReader(sampleCSV), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	c := BuildCatalog(rows)
	if strings.Join(c.Makes, "|") != "Audi|BMW" {
		t.Errorf("makes = %v", c.Makes)
	}
	if strings.Join(c.Models, "|") != "3 Series|5 Series|A4" {
		t.Errorf("models = %v", c.Models)
	}
	if strings.Join(c.Variants, "|") != "2.0|3.0|TDI" {
		t.Errorf("variants = %v", c.Variants)
	}
}

func TestAssess(t *testing.T) {
	rows, err := Load(strings.NewReader(sampleCSV), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	q := Assess(rows)
	if q.Rows != 5 || q.MissingYears != 1 || q.MissingVariant != 2 || q.MissingKType != 0 {
		t.Fatalf("unexpected quality: %+v", q)
	}
	if q.Clean() {
		t.Fatal("quality should not be clean")
	}
	if !(Quality{Rows: 3}).Clean() {
		t.Fatal("empty problem counts should be clean")
	}
}

func TestCache_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(context.Context) ([]domain.Fitment, string, error) {
		calls.Add(1)
		return []domain.Fitment{{Make: "BMW", Model: "X5", KType: "1"}}, "fp", nil
	}, quiet())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", calls.Load())
	}
	snap, _ := c.Get(context.Background())
	if snap.Fingerprint != "fp" || len(snap.Catalog.Makes) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestCache_RetriesFailedLoad(t *testing.T) {
	attempts := 0
	c := NewCache(func(context.Context) ([]domain.Fitment, string, error) {
		attempts++
		if attempts == 1 {
			return nil, "", errors.New("disk hiccup")
		}
		return []domain.Fitment{{Make: "Audi"}}, "fp", nil
	}, quiet())

	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("expected first load to fail")
	}
	snap, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Rows) != 1 || attempts != 2 {
		t.Fatalf("unexpected state: rows=%d attempts=%d", len(snap.Rows), attempts)
	}
}

func TestNewFileCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewFileCache(path, DefaultOptions(), quiet())
	snap, err := c.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Quality.MissingYears != 1 || len(snap.Rows) != 5 {
		t.Fatalf("unexpected snapshot: %+v", snap.Quality)
	}
}
