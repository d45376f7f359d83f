package present

import (
	"bytes"
	"strings"
	"testing"

	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/engine/lookup"
)

func sampleResult() *lookup.Result {
	return &lookup.Result{
		Query: "BMW E46 320d 2001-2003",
		Detection: domain.Detection{
			Years:    domain.NewYearRange(2001, 2003),
			Makes:    []string{"BMW"},
			Models:   []string{"3 Series"},
			Variants: []string{"320d"},
		},
		Options: domain.Options{
			Years:  []int{2001, 2002, 2003},
			Makes:  []string{"BMW"},
			Models: []string{"3 Series"},
		},
		Selection: domain.Selection{Make: "BMW", Model: "3 Series"},
		Rows: []domain.Fitment{
			{Make: "BMW", Model: "3 Series", Variant: "E46 320d", Year: "2001-2005", KType: "1001"},
			{Make: "BMW", Model: "3 Series", Variant: "E90 320d", Year: "2005-2012", KType: "1003"},
		},
		KTypes: []string{"1001", "1003"},
	}
}

func TestRender(t *testing.T) {
	v := Render(sampleResult())
	want := []string{
		"Detected Start Year: 2001, End Year: 2003",
		"Matched Makes: BMW",
		"Matched Models: 3 Series",
		"Matched Variants: 320d",
	}
	if strings.Join(v.Detections, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected detections %q", v.Detections)
	}
	if v.Summary != "Found 2 compatible ktypes:" {
		t.Fatalf("unexpected summary %q", v.Summary)
	}
	if v.KTypes != "1001\n1003" {
		t.Fatalf("unexpected ktypes %q", v.KTypes)
	}
	if len(v.Prompts) != 3 || v.Prompts[0].Field != "year" || !v.Prompts[0].Optional || v.Prompts[0].Selected != "" {
		t.Fatalf("unexpected prompts %+v", v.Prompts)
	}
	if v.Prompts[1].Selected != "BMW" || v.Prompts[2].Selected != "3 Series" {
		t.Fatalf("prompts should show the applied selection: %+v", v.Prompts)
	}
}

func TestRender_NothingDetected(t *testing.T) {
	v := Render(&lookup.Result{Query: "brake pads"})
	if v.Detections[0] != "Detected Start Year: None, End Year: None" {
		t.Fatalf("got %q", v.Detections[0])
	}
	if v.Detections[1] != "Matched Makes: None" {
		t.Fatalf("got %q", v.Detections[1])
	}
	if len(v.Prompts) != 0 || v.KTypes != "" {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestRender_Blank(t *testing.T) {
	v := Render(&lookup.Result{Empty: true})
	if len(v.Detections) != 0 || v.Summary != "" {
		t.Fatalf("blank query should render nothing, got %+v", v)
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, v); err != nil || buf.Len() != 0 {
		t.Fatalf("expected no output, got %q (%v)", buf.String(), err)
	}
	if v := Render(nil); v.Summary != "" {
		t.Fatal("nil result should render nothing")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, Render(sampleResult())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Matched Variants: 320d\n",
		"Select a specific year (optional): [2001, 2002, 2003] (-)\n",
		"Select make: [BMW] (BMW)\n",
		"Found 2 compatible ktypes:\n1001\n1003\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteText_NoMatches(t *testing.T) {
	res := sampleResult()
	res.Rows, res.KTypes = nil, nil
	var buf bytes.Buffer
	if err := WriteText(&buf, Render(res)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "Found 0 compatible ktypes:\nNo compatible ktypes found.\n") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, sampleResult().Rows)
	out := buf.String()
	for _, want := range []string{"K-TYPE", "E46 320d", "1003", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteTable(&buf, nil)
	if buf.String() != "(0 rows)\n" {
		t.Fatalf("unexpected empty table output %q", buf.String())
	}
}

func TestFormatHelpers(t *testing.T) {
	if FormatList(nil) != None || FormatList([]string{"a", "b"}) != "a, b" {
		t.Fatal("FormatList")
	}
	if FormatYear(nil) != None || FormatYear(domain.IntPtr(1999)) != "1999" {
		t.Fatal("FormatYear")
	}
}

func TestNewReply(t *testing.T) {
	res := sampleResult()
	r := NewReply(res)
	if r.Result != res {
		t.Fatal("reply should carry the result")
	}
	if r.View.KTypes != "1001\n1003" || r.View.Summary != "Found 2 compatible ktypes:" {
		t.Fatalf("unexpected view %+v", r.View)
	}
}
