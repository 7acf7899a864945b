package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/shared"
)

const (
	DefaultShortQueryLength   = 3
	DefaultMaxContainsResults = 30
)

// Options tunes a [Resolver]. Zero values fall back to the defaults.
type Options struct {
	ShortQueryLength   int        // queries up to this many runes use exact -> prefix
	MaxContainsResults int        // contains results above this count are narrowed
	Limit              int        // cap on returned results, 0 for none
	Fuzzy              bool       // run the fuzzy tier when every other tier is empty
	Normalizer         Normalizer // folding step used for the folded variant
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ShortQueryLength:   DefaultShortQueryLength,
		MaxContainsResults: DefaultMaxContainsResults,
		Fuzzy:              true,
		Normalizer:         Fold,
	}
}

// OptionsFromConfig maps the [search] config section onto resolver options.
func OptionsFromConfig(cfg shared.SearchConfig) Options {
	return Options{
		ShortQueryLength:   cfg.ShortQueryLength,
		MaxContainsResults: cfg.MaxContainsResults,
		Limit:              cfg.Limit,
		Fuzzy:              cfg.Fuzzy,
		Normalizer:         GetNormalizer(cfg.Normalizer),
	}
}

// Resolver runs the strategy escalation against a [Store]. It holds no per-call state.
type Resolver struct {
	store  Store
	opts   Options
	logger *log.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(store Store, opts Options, logger *log.Logger) *Resolver {
	if opts.ShortQueryLength <= 0 {
		opts.ShortQueryLength = DefaultShortQueryLength
	}
	if opts.MaxContainsResults <= 0 {
		opts.MaxContainsResults = DefaultMaxContainsResults
	}
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	if opts.Normalizer == nil {
		opts.Normalizer = Fold
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Resolver{store: store, opts: opts, logger: logger}
}

// Options returns the effective options.
func (r *Resolver) Options() Options {
	return r.opts
}

// Search returns the deduplicated results for query.
func (r *Resolver) Search(ctx context.Context, query string) ([]Result, error) {
	report, err := r.Resolve(ctx, query, false)
	if err != nil {
		return nil, err
	}
	return report.Results, nil
}

// Debug resolves query and reports every attempt made.
func (r *Resolver) Debug(ctx context.Context, query string) (*Report, error) {
	return r.Resolve(ctx, query, true)
}

// Resolve runs the escalation for query.
//
// An empty or whitespace-only query yields an empty report without touching the store.
func (r *Resolver) Resolve(ctx context.Context, query string, verbose bool) (*Report, error) {
	report := &Report{Query: query, Method: StrategyNone, Results: []Result{}}
	tr := newTrace(verbose)

	variants := Variants(query, r.opts.Normalizer)
	if len(variants) == 0 {
		r.logger.Debug("empty query, nothing to resolve")
		return report, nil
	}
	r.logger.Debug("resolving", "query", query, "variants", Terms(variants))

	var (
		rows     []models.Band
		method   Strategy
		narrowed bool
		err      error
	)

	if r.isShort(query) {
		rows, method, err = r.escalate(ctx, tr, variants, r.opts.Limit, StrategyExact, StrategyPrefix)
	} else {
		rows, method, narrowed, err = r.broad(ctx, tr, variants)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 && r.opts.Fuzzy {
		if rows, err = r.fuzzy(ctx, tr, variants); err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			method = StrategyFuzzy
		}
	}

	results := Dedupe(rows)
	if r.opts.Limit > 0 && len(results) > r.opts.Limit {
		results = results[:r.opts.Limit]
	}

	if len(results) == 0 {
		method = StrategyNone
	}

	report.Results = results
	report.Method = method
	report.ResultCount = len(results)
	report.Narrowed = narrowed
	report.VariantsTried = tr.tried
	report.Attempts = tr.attempts

	r.logger.Debug("resolved", "query", query, "method", method, "results", len(results), "narrowed", narrowed)
	return report, nil
}

// isShort measures the decoded query, so an escaped apostrophe counts as one character.
func (r *Resolver) isShort(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(Decode(strings.TrimSpace(query)))) <= r.opts.ShortQueryLength
}

// broad runs the contains tier, narrowing to exact then prefix when it returns too many rows.
//
// If narrowing finds nothing the first MaxContainsResults contains rows are kept.
func (r *Resolver) broad(ctx context.Context, tr *trace, variants []Variant) ([]models.Band, Strategy, bool, error) {
	ceiling := r.opts.MaxContainsResults

	rows, err := r.tier(ctx, tr, StrategyContains, variants, ceiling+1)
	if err != nil {
		return nil, StrategyNone, false, err
	}
	if len(rows) <= ceiling {
		if len(rows) == 0 {
			return nil, StrategyNone, false, nil
		}
		return rows, StrategyContains, false, nil
	}

	r.logger.Debug("contains match too broad, narrowing", "rows", len(rows), "max", ceiling)

	narrowed, method, err := r.escalate(ctx, tr, variants, r.opts.Limit, StrategyExact, StrategyPrefix)
	if err != nil {
		return nil, StrategyNone, false, err
	}
	if len(narrowed) > 0 {
		return narrowed, method, true, nil
	}

	return rows[:ceiling], StrategyContains, false, nil
}

// escalate runs tiers in order and returns the rows of the first one that matches.
func (r *Resolver) escalate(ctx context.Context, tr *trace, variants []Variant, limit int, tiers ...Strategy) ([]models.Band, Strategy, error) {
	for _, s := range tiers {
		rows, err := r.tier(ctx, tr, s, variants, limit)
		if err != nil {
			return nil, StrategyNone, err
		}
		if len(rows) > 0 {
			return rows, s, nil
		}
	}
	return nil, StrategyNone, nil
}

// tier queries each variant with strategy s and stops at the first non-empty response.
func (r *Resolver) tier(ctx context.Context, tr *trace, s Strategy, variants []Variant, limit int) ([]models.Band, error) {
	for _, v := range variants {
		rows, err := r.query(ctx, s, v.Term, limit)
		if err != nil {
			return nil, err
		}
		tr.record(s, v, len(rows))
		r.logger.Debug("attempt", "strategy", s, "rule", v.Rule, "variant", v.Term, "rows", len(rows))
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, nil
}

// fuzzy queries every variant against the similarity predicate and concatenates the rows.
func (r *Resolver) fuzzy(ctx context.Context, tr *trace, variants []Variant) ([]models.Band, error) {
	if _, ok := r.store.(SimilarityStore); !ok {
		r.logger.Debug("store has no similarity predicate, skipping fuzzy tier")
		return nil, nil
	}

	var all []models.Band
	for _, v := range variants {
		rows, err := r.query(ctx, StrategyFuzzy, v.Term, r.opts.Limit)
		if err != nil {
			return nil, err
		}
		tr.record(StrategyFuzzy, v, len(rows))
		r.logger.Debug("attempt", "strategy", StrategyFuzzy, "rule", v.Rule, "variant", v.Term, "rows", len(rows))
		all = append(all, rows...)
	}
	return all, nil
}

func (r *Resolver) query(ctx context.Context, s Strategy, term string, limit int) ([]models.Band, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("canceled before %s match: %w", s, err)
	}

	var (
		rows []models.Band
		err  error
	)
	switch s {
	case StrategyExact:
		rows, err = r.store.Equals(ctx, term, limit)
	case StrategyPrefix:
		rows, err = r.store.StartsWith(ctx, term, limit)
	case StrategyContains:
		rows, err = r.store.Contains(ctx, term, limit)
	case StrategyFuzzy:
		rows, err = r.store.(SimilarityStore).Similar(ctx, term, limit)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", shared.ErrInvalidArgument, s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s match for %q: %w", shared.ErrStore, s, term, err)
	}
	return rows, nil
}
