package fitment

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/WessleyAI/ktype-finder/engine/domain"
)

func row(make_, model, variant string, start, end int, ktype string) domain.Fitment {
	f := domain.Fitment{Make: make_, Model: model, Variant: variant, KType: ktype}
	if start != 0 {
		f.StartYear = domain.IntPtr(start)
	}
	if end != 0 {
		f.EndYear = domain.IntPtr(end)
	}
	if words := strings.Fields(variant); len(words) > 1 {
		f.VariantToken = words[1]
	}
	return f
}

func fixture() []domain.Fitment {
	return []domain.Fitment{
		row("BMW", "3 Series", "E46 320d", 2001, 2005, "1"),
		row("BMW", "3 Series", "E46 330i", 1998, 2001, "2"),
		row("BMW", "3 Series", "E90 320d", 2005, 2012, "3"),
		row("BMW", "5 Series", "E39 525d", 2000, 2003, "4"),
		row("Audi", "A4", "B6 1.9", 2000, 2004, "5"),
		row("Audi", "A4", "B7", 0, 0, "6"),
	}
}

func ktypes(rows []domain.Fitment) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.KType
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, []string{"1", "2", "3", "4", "5", "6"}},
		{"explicit year inner", Criteria{Year: 2003}, []string{"1", "4", "5"}},
		{"explicit year start boundary", Criteria{Year: 2001}, []string{"1", "2", "4", "5"}},
		{"explicit year end boundary", Criteria{Year: 2005}, []string{"1", "3"}},
		{"explicit year outside", Criteria{Year: 1990}, []string{}},
		{"range overlap", Criteria{Range: domain.NewYearRange(2004, 2006)}, []string{"1", "3", "5"}},
		{"range partial at start", Criteria{Range: domain.NewYearRange(1995, 1998)}, []string{"2"}},
		{"range touching end", Criteria{Range: domain.NewYearRange(2012, 2020)}, []string{"3"}},
		{"range disjoint", Criteria{Range: domain.NewYearRange(2013, 2020)}, []string{}},
		{"year beats range", Criteria{Year: 2010, Range: domain.NewYearRange(1998, 1999)}, []string{"3"}},
		{"make", Criteria{Make: "Audi"}, []string{"5", "6"}},
		{"make and model", Criteria{Make: "BMW", Model: "5 Series"}, []string{"4"}},
		{"variant tokens", Criteria{Variants: []string{"320d"}}, []string{"1", "3"}},
		{"everything", Criteria{Range: domain.NewYearRange(2001, 2005), Make: "BMW", Model: "3 Series", Variants: []string{"320d", "330i"}}, []string{"1", "2", "3"}},
		{"case sensitive make", Criteria{Make: "bmw"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(context.Background(), fixture(), tt.c)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(ktypes(got), tt.want) {
				t.Fatalf("got %v, want %v", ktypes(got), tt.want)
			}
		})
	}
}

func TestApply_RangeOverlapProperty(t *testing.T) {
	all := fixture()
	for s := 1995; s <= 2014; s++ {
		for e := s; e <= 2014; e++ {
			got, err := Apply(context.Background(), all, Criteria{Range: domain.NewYearRange(s, e)})
			if err != nil {
				t.Fatal(err)
			}
			want := 0
			for _, f := range all {
				if f.HasYears() && *f.StartYear <= e && *f.EndYear >= s {
					want++
				}
			}
			if len(got) != want {
				t.Fatalf("[%d,%d]: got %d rows, want %d", s, e, len(got), want)
			}
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	all := fixture()
	if _, err := Apply(context.Background(), all, Criteria{Make: "Audi"}); err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 || all[0].KType != "1" {
		t.Fatal("input slice was modified")
	}
}

func TestApply_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Apply(ctx, fixture(), Criteria{Make: "BMW"}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestStages_Count(t *testing.T) {
	if n := len(Stages(Criteria{})); n != 4 {
		t.Fatalf("expected 4 stages, got %d", n)
	}
}
