// Package present turns a lookup result into the lines shown to the user and
// writes them as plain text or as a table of matching rows.
package present

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/engine/lookup"
	"github.com/WessleyAI/ktype-finder/pkg/fn"
)

// None is displayed for an absent value or an empty list.
const None = "None"

// Prompt offers a choice between candidates.
type Prompt struct {
	Field    string   `json:"field"`
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Optional bool     `json:"optional"`
	Selected string   `json:"selected,omitempty"`
}

// View is the render model of one lookup.
type View struct {
	Detections []string `json:"detections"`
	Prompts    []Prompt `json:"prompts"`
	Summary    string   `json:"summary"`
	// KTypes is the newline-joined list intended for copy-out.
	KTypes string `json:"ktypes"`
}

// Render builds the View for res. A blank query renders an empty View.
func Render(res *lookup.Result) View {
	if res == nil || res.Empty {
		return View{}
	}
	d := res.Detection
	v := View{
		Detections: []string{
			fmt.Sprintf("Detected Start Year: %s, End Year: %s", FormatYear(d.Years.Start), FormatYear(d.Years.End)),
			"Matched Makes: " + FormatList(d.Makes),
			"Matched Models: " + FormatList(d.Models),
			"Matched Variants: " + FormatList(d.Variants),
		},
		Prompts: Prompts(res),
		Summary: fmt.Sprintf("Found %d compatible ktypes:", len(res.Rows)),
	}
	if len(res.KTypes) > 0 {
		v.KTypes = strings.Join(res.KTypes, "\n")
	}
	return v
}

// Prompts lists the selections offered for res: a year when a range was
// detected, then make and model when any were matched.
func Prompts(res *lookup.Result) []Prompt {
	var out []Prompt
	if years := res.Options.Years; len(years) > 0 {
		p := Prompt{
			Field:    "year",
			Label:    "Select a specific year (optional):",
			Options:  fn.Map(years, strconv.Itoa),
			Optional: true,
		}
		if res.Selection.Year != 0 {
			p.Selected = strconv.Itoa(res.Selection.Year)
		}
		out = append(out, p)
	}
	if len(res.Options.Makes) > 0 {
		out = append(out, Prompt{Field: "make", Label: "Select make:", Options: res.Options.Makes, Selected: res.Selection.Make})
	}
	if len(res.Options.Models) > 0 {
		out = append(out, Prompt{Field: "model", Label: "Select model:", Options: res.Options.Models, Selected: res.Selection.Model})
	}
	return out
}

// FormatList joins items with ", " or returns None.
func FormatList(items []string) string {
	if len(items) == 0 {
		return None
	}
	return strings.Join(items, ", ")
}

// FormatYear prints y or None.
func FormatYear(y *int) string {
	if y == nil {
		return None
	}
	return strconv.Itoa(*y)
}

// WriteText prints v. Empty views print nothing.
func WriteText(w io.Writer, v View) error {
	if v.Summary == "" {
		return nil
	}
	var b strings.Builder
	for _, line := range v.Detections {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, p := range v.Prompts {
		sel := p.Selected
		if sel == "" {
			sel = "-"
		}
		fmt.Fprintf(&b, "%s [%s] (%s)\n", p.Label, strings.Join(p.Options, ", "), sel)
	}
	b.WriteString(v.Summary)
	b.WriteByte('\n')
	if v.KTypes == "" {
		b.WriteString("No compatible ktypes found.\n")
	} else {
		b.WriteString(v.KTypes)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTable renders rows as a table.
func WriteTable(w io.Writer, rows []domain.Fitment) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Make", "Model", "Variant", "Year", "K-Type"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Make, r.Model, r.Variant, r.Year, r.KType})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// Reply is the body of an HTTP or NATS lookup response.
type Reply struct {
	Result *lookup.Result `json:"result"`
	View   View           `json:"view"`
}

// NewReply renders res into a Reply.
func NewReply(res *lookup.Result) Reply {
	return Reply{Result: res, View: Render(res)}
}
