package lookup

import (
	"time"

	"github.com/WessleyAI/ktype-finder/pkg/metrics"
)

// Lookup outcomes, used as the outcome label of ktype_lookups_total.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
	OutcomeBlank   = "blank"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

type serviceMetrics struct {
	outcomes map[string]*metrics.Counter
	matched  *metrics.Counter
	duration *metrics.Histogram
	rows     *metrics.Gauge
}

func newServiceMetrics(reg *metrics.Registry) *serviceMetrics {
	m := &serviceMetrics{
		outcomes: make(map[string]*metrics.Counter),
		matched:  reg.Counter("ktype_rows_matched_total", "Fitment rows returned across all lookups"),
		duration: reg.Histogram("ktype_lookup_seconds", "Lookup latency", nil),
		rows:     reg.Gauge("ktype_dataset_rows", "Rows in the loaded dataset"),
	}
	for _, o := range []string{OutcomeMatch, OutcomeNoMatch, OutcomeBlank, OutcomeInvalid, OutcomeError} {
		m.outcomes[o] = reg.Counter(metrics.WithLabels("ktype_lookups_total", "outcome", o), "Lookups by outcome")
	}
	return m
}

func (m *serviceMetrics) observe(start time.Time, res *Result, err error) {
	m.duration.Since(start)
	m.outcomes[outcome(res, err)].Inc()
	if res != nil {
		m.matched.Add(int64(len(res.Rows)))
	}
}

func outcome(res *Result, err error) string {
	switch {
	case err != nil && IsValidation(err):
		return OutcomeInvalid
	case err != nil:
		return OutcomeError
	case res.Empty:
		return OutcomeBlank
	case len(res.Rows) == 0:
		return OutcomeNoMatch
	default:
		return OutcomeMatch
	}
}
