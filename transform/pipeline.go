// Package transform implements spec §4.3: the three-phase document
// transform pipeline (Normalization, User Filters, Finalization) that
// runs between parsing and writing.
package transform

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/quarto-dev/quartomd-go/ast"
	"github.com/quarto-dev/quartomd-go/astctx"
	"github.com/quarto-dev/quartomd-go/transform/appendix"
	"github.com/quarto-dev/quartomd-go/transform/footnotes"
	"github.com/quarto-dev/quartomd-go/transform/metanorm"
	"github.com/quarto-dev/quartomd-go/transform/reconcile"
	"github.com/quarto-dev/quartomd-go/transform/shortcode"
)

// UserFilter is one filter run during the User Filters phase (spec
// §4.3, between Normalization and Finalization). A scripted Lua filter
// wraps into this shape at a higher layer; the pipeline itself is
// agnostic to what produces a UserFilter.
type UserFilter func(ctx *astctx.Context, doc *ast.Pandoc) error

// Engine, when set, supplies a re-rendered block sequence for the
// reconciliation step of Finalization (spec §4.3e). A nil Engine skips
// reconciliation entirely, leaving doc.Blocks as the filters produced
// them.
type Engine func(ctx *astctx.Context, doc *ast.Pandoc) ([]ast.Block, error)

// Options configures the Finalization phase's gated steps.
type Options struct {
	ReferenceLocation footnotes.Location
	AppendixStyle     appendix.Style
	IsBook            bool
	Shortcodes        *shortcode.Registry
	Filters           []UserFilter
	Engine            Engine
}

// Result carries the outcome of one pipeline run, including the
// reconciliation report when an Engine was configured.
type Result struct {
	Reconciliation *reconcile.Report
}

// Pipeline runs the three phases over one document. Within the User
// Filters phase every filter runs and their errors are combined with
// multierr.Append; a phase that returns an error ends the run before
// the next phase starts.
type Pipeline struct {
	log *zap.Logger
}

// New builds a Pipeline. A nil logger installs zap.NewNop().
func New(log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{log: log}
}

// Run executes Normalization, then User Filters, then Finalization, in
// that order, over doc in place.
func (p *Pipeline) Run(ctx *astctx.Context, doc *ast.Pandoc, opts Options) (Result, error) {
	var result Result

	if err := p.normalize(ctx, doc, opts); err != nil {
		return result, multierr.Combine(err)
	}

	var filterErrs error
	for _, f := range opts.Filters {
		p.log.Debug("running user filter")
		if err := f(ctx, doc); err != nil {
			filterErrs = multierr.Append(filterErrs, err)
		}
	}
	if filterErrs != nil {
		return result, filterErrs
	}

	rep, err := p.finalize(ctx, doc, opts)
	if err != nil {
		return result, multierr.Combine(err)
	}
	result.Reconciliation = rep
	return result, nil
}

// normalize runs the Normalization phase: shortcode resolution and
// footnote extraction, both of which must happen before any user
// filter sees the document (spec §4.3 phase ordering).
func (p *Pipeline) normalize(ctx *astctx.Context, doc *ast.Pandoc, opts Options) error {
	p.log.Debug("normalization phase")

	reg := opts.Shortcodes
	if reg == nil {
		reg = shortcode.NewRegistry()
	}
	shortcode.Resolve(ctx, doc, reg)

	footnotes.Extract(ctx, doc, opts.ReferenceLocation)
	return nil
}

// finalize runs the Finalization phase: metadata normalization,
// appendix consolidation, and (if an Engine was configured) engine
// reconciliation, in that order (spec §4.3c-e).
func (p *Pipeline) finalize(ctx *astctx.Context, doc *ast.Pandoc, opts Options) (*reconcile.Report, error) {
	p.log.Debug("finalization phase")

	metanorm.Normalize(doc)

	appendix.Consolidate(doc, appendix.Options{
		ReferenceLocationMargin: opts.ReferenceLocation == footnotes.Margin,
		IsBook:                  opts.IsBook,
		Style:                   opts.AppendixStyle,
	})

	if opts.Engine == nil {
		return nil, nil
	}
	executed, err := opts.Engine(ctx, doc)
	if err != nil {
		return nil, err
	}
	merged, report := reconcile.Reconcile(doc.Blocks, executed)
	doc.Blocks = merged
	p.log.Debug("reconciliation complete",
		zap.Int("exact", report.ExactMatches),
		zap.Int("structural", report.ContentChanges),
		zap.Int("additions", report.Additions),
		zap.Int("deletions", report.Deletions),
	)
	return &report, nil
}
