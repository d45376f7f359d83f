// Package lookup is the stateless request handler of the finder: it turns a
// query and the user's disambiguation choices into the detected tokens, the
// selectable options and the matching fitment rows.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/WessleyAI/ktype-finder/engine/dataset"
	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/engine/fitment"
	"github.com/WessleyAI/ktype-finder/pkg/fn"
	"github.com/WessleyAI/ktype-finder/pkg/metrics"
	"github.com/WessleyAI/ktype-finder/pkg/vehiclenlp"
)

// Source provides the loaded dataset.
type Source interface {
	Get(ctx context.Context) (*dataset.Snapshot, error)
}

// Options configures alias matching.
type Options struct {
	ModelAliases domain.AliasTable
	MakeAliases  domain.AliasTable
}

// DefaultOptions uses the built-in alias tables.
func DefaultOptions() Options {
	return Options{
		ModelAliases: domain.DefaultModelAliases.Normalize(),
		MakeAliases:  domain.MakeAliases.Normalize(),
	}
}

// Request is one interaction: the query text plus any choices already made.
type Request struct {
	Query string `json:"query"`
	domain.Selection
}

// Result is the render model of one interaction.
type Result struct {
	Query string `json:"query"`
	// Empty is set when no query text was entered; nothing is detected or filtered.
	Empty     bool             `json:"empty"`
	Detection domain.Detection `json:"detection"`
	Options   domain.Options   `json:"options"`
	// Selection is the choice actually applied, after defaults.
	Selection domain.Selection `json:"selection"`
	// Rows and KTypes are never nil, so they encode as JSON arrays.
	Rows   []domain.Fitment `json:"rows"`
	KTypes []string         `json:"ktypes"`
}

// CatalogInfo describes the loaded dataset.
type CatalogInfo struct {
	domain.Catalog
	Rows        int       `json:"rows"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Service answers lookups against a Source.
type Service struct {
	src     Source
	opts    Options
	metrics *serviceMetrics
	logger  *slog.Logger
}

// New creates a Service. A nil registry or logger gets a private default.
func New(src Source, opts Options, reg *metrics.Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = metrics.New()
	}
	if opts.ModelAliases == nil {
		opts.ModelAliases = domain.AliasTable{}
	}
	if opts.MakeAliases == nil {
		opts.MakeAliases = domain.AliasTable{}
	}
	return &Service{src: src, opts: opts, metrics: newServiceMetrics(reg), logger: logger}
}

// Lookup runs the whole pipeline for req.
func (s *Service) Lookup(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe(start, res, err)
	}()

	if err := domain.ValidateQuery(req.Query); err != nil {
		return nil, err
	}
	snap, err := s.src.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	s.metrics.rows.Set(int64(len(snap.Rows)))

	if strings.TrimSpace(req.Query) == "" {
		return &Result{Query: req.Query, Empty: true, Rows: []domain.Fitment{}, KTypes: []string{}}, nil
	}

	det := vehiclenlp.Detect(req.Query, snap.Catalog, s.opts.ModelAliases, s.opts.MakeAliases)
	opts := domain.Options{
		Years:  det.Years.Years(),
		Makes:  det.Makes,
		Models: det.Models,
	}
	if err := domain.ValidateSelection(req.Selection, opts); err != nil {
		return nil, err
	}
	sel := applyDefaults(req.Selection, opts)

	rows, err := fitment.Apply(ctx, snap.Rows, fitment.Criteria{
		Year:     sel.Year,
		Range:    det.Years,
		Make:     sel.Make,
		Model:    sel.Model,
		Variants: det.Variants,
	})
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if rows == nil {
		rows = []domain.Fitment{}
	}

	s.logger.Debug("lookup",
		"query", req.Query,
		"makes", det.Makes,
		"models", det.Models,
		"variants", det.Variants,
		"matches", len(rows),
	)

	return &Result{
		Query:     req.Query,
		Detection: det,
		Options:   opts,
		Selection: sel,
		Rows:      rows,
		KTypes:    fn.Map(rows, func(f domain.Fitment) string { return f.KType }),
	}, nil
}

// applyDefaults picks the first candidate make and model when the user has
// not chosen one. The year is never defaulted.
func applyDefaults(sel domain.Selection, opts domain.Options) domain.Selection {
	if sel.Make == "" && len(opts.Makes) > 0 {
		sel.Make = opts.Makes[0]
	}
	if sel.Model == "" && len(opts.Models) > 0 {
		sel.Model = opts.Models[0]
	}
	return sel
}

// Catalog describes the loaded dataset.
func (s *Service) Catalog(ctx context.Context) (CatalogInfo, error) {
	snap, err := s.src.Get(ctx)
	if err != nil {
		return CatalogInfo{}, fmt.Errorf("load dataset: %w", err)
	}
	return CatalogInfo{
		Catalog:     snap.Catalog,
		Rows:        len(snap.Rows),
		Fingerprint: snap.Fingerprint,
		LoadedAt:    snap.LoadedAt,
	}, nil
}

// IsValidation reports whether err was caused by bad request input.
func IsValidation(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve)
}
