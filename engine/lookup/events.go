package lookup

import "time"

// NATS subjects served and published by the lookup service.
const (
	SubjectLookup    = "ktype.lookup"
	SubjectCompleted = "ktype.lookups.completed"
)

// Event announces a completed lookup.
type Event struct {
	Query   string    `json:"query"`
	Year    int       `json:"year,omitempty"`
	Make    string    `json:"make,omitempty"`
	Model   string    `json:"model,omitempty"`
	Matches int       `json:"matches"`
	KTypes  []string  `json:"ktypes"`
	At      time.Time `json:"at"`
}

// NewEvent summarizes res.
func NewEvent(res *Result) Event {
	return Event{
		Query:   res.Query,
		Year:    res.Selection.Year,
		Make:    res.Selection.Make,
		Model:   res.Selection.Model,
		Matches: len(res.Rows),
		KTypes:  res.KTypes,
		At:      time.Now().UTC(),
	}
}
