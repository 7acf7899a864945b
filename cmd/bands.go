package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/desertthunder/bandfeed/internal/formatter"
	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/search"
	"github.com/desertthunder/bandfeed/internal/shared"
	"github.com/desertthunder/bandfeed/internal/tasks"
	"github.com/urfave/cli/v3"
)

// BandsImport loads bands from a CSV or JSON file into the catalog.
func (r *Runner) BandsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file path is required", shared.ErrMissingArgument)
	}

	store, err := r.store()
	if err != nil {
		return err
	}

	importer := tasks.NewImporter(store, shared.WithLogger(r.logger, "component", "importer"))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progressCh)

	result, err := importer.Import(ctx, progressCh, path)
	close(progressCh)
	done.Wait()

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete")
	r.writePlain("File: %s\n", result.Path)
	r.writePlain("Created: %d/%d\n", result.Created, result.Total)
	r.writePlain("Skipped (already present): %d\n", result.Skipped)

	if len(result.Failed) > 0 {
		r.writePlain("\nFailed to import %d rows:\n", len(result.Failed))
		for _, f := range result.Failed {
			r.writePlain("  - row %d %q: %v\n", f.Row, f.Name, f.Error)
		}
	}

	return nil
}

// BandsAdd creates a single band from flags.
func (r *Runner) BandsAdd(ctx context.Context, cmd *cli.Command) error {
	band := models.Band{
		Name:    cmd.String("name"),
		Country: cmd.String("country"),
	}
	for _, g := range cmd.StringSlice("genre") {
		band.Genres = append(band.Genres, tasks.SplitGenres(g)...)
	}
	if cmd.IsSet("followers") {
		band.Followers = models.Followers(cmd.Int("followers"))
	}

	store, err := r.store()
	if err != nil {
		return err
	}

	persisted := models.NewPersistedBand(0, band)
	if err := store.Create(persisted); err != nil {
		return err
	}

	r.logger.Info("band created", "id", persisted.ID(), "name", persisted.Name())

	if cmd.Bool("json") {
		return r.writeJSON(persisted.Band(), true)
	}

	result := search.NewResult(persisted.Band())
	r.writePlain("✓ Added %s\n", result.Label)
	r.writePlain("  ID: %s\n", result.ID)
	return nil
}

// BandsList prints bands in name order, optionally filtered by country or genre.
func (r *Runner) BandsList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.store()
	if err != nil {
		return err
	}

	bands, err := store.List(map[string]any{
		"country": cmd.String("country"),
		"genre":   cmd.String("genre"),
		"limit":   cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]models.Band, 0, len(bands))
		for _, b := range bands {
			out = append(out, b.Band())
		}
		return r.writeJSON(out, true)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Bands (%d of %d)", len(bands), total))
	if len(bands) == 0 {
		r.writePlain("No bands found.\n")
		return nil
	}
	for i, b := range bands {
		result := search.NewResult(b.Band())
		r.writePlain("%3d. %s\n", i+1, result.Label)
		r.writePlain("     %s\n", result.ID)
	}
	return nil
}

// BandsDelete soft-deletes a band by ID.
func (r *Runner) BandsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: band ID is required", shared.ErrMissingArgument)
	}

	store, err := r.store()
	if err != nil {
		return err
	}

	if err := store.Delete(id); err != nil {
		return err
	}

	r.logger.Info("band deleted", "id", id)
	r.writePlain("✓ Deleted %s\n", id)
	return nil
}

// BandsSearch resolves one query and prints or exports the report.
func (r *Runner) BandsSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	var format formatter.Format
	if raw := cmd.String("format"); raw != "" {
		f, err := formatter.ParseFormat(raw)
		if err != nil {
			return fmt.Errorf("%w: --format: %w", shared.ErrInvalidFlag, err)
		}
		format = f
	}

	resolver, err := r.searcher()
	if err != nil {
		return err
	}

	debug := cmd.Bool("debug")
	report, err := resolver.Resolve(ctx, query, debug)
	if err != nil {
		return err
	}

	if limit := cmd.Int("limit"); limit > 0 && len(report.Results) > limit {
		report.Results = report.Results[:limit]
		report.ResultCount = limit
	}

	output := cmd.String("output")
	switch {
	case output != "" || format != "":
		if format == "" {
			format = formatter.FormatText
		}
		path, err := formatter.WriteExport(report, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("results exported", "path", path, "format", format)
		r.writePlain("✓ %d result(s) written to %s\n", report.ResultCount, path)
		return nil
	case cmd.Bool("json"):
		return r.writeJSON(report, true)
	default:
		r.printReport(report, debug)
		return nil
	}
}

// BandsResolve resolves every query in a file with a worker pool.
func (r *Runner) BandsResolve(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	queries, err := readQueries(path)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("%w: no queries in %s", shared.ErrInvalidInput, path)
	}

	resolver, err := r.searcher()
	if err != nil {
		return err
	}

	opts := tasks.BatchOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Verbose:    cmd.Bool("debug"),
	}

	asJSON := cmd.Bool("json")
	progressCh := make(chan tasks.ProgressUpdate, 50)
	var done *sync.WaitGroup
	if asJSON {
		done = drain(progressCh)
	} else {
		done = r.printProgress(progressCh)
	}

	result, err := tasks.NewBatchResolver(resolver).Run(ctx, progressCh, queries, opts)
	close(progressCh)
	done.Wait()

	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		data, err := formatter.ExportBatchToCSV(result.Reports())
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		r.logger.Info("batch summary written", "path", out)
	}

	if asJSON {
		return r.writeJSON(result.Reports(), true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Resolve Complete")
	r.writePlain("Queries: %d\n", result.Total)
	r.writePlain("Matched: %d\n", result.Matched)
	r.writePlain("Unmatched: %d\n", result.Unmatched)
	r.writePlain("Failed: %d\n", result.Failed)

	for _, q := range result.Results {
		switch {
		case q.Error != nil:
			r.writePlain("  ✗ %s: %v\n", q.Query, q.Error)
		case len(q.Report.Results) == 0:
			r.writePlain("  - %s: no match\n", q.Query)
		default:
			r.writePlain("  ✓ %s → %s (%s)\n", q.Query, q.Report.Results[0].Label, q.Report.Method)
		}
	}
	return nil
}

// printReport writes a human-readable report, including every attempt when debug is set.
func (r *Runner) printReport(report *search.Report, debug bool) {
	r.writePlainHeader(fmt.Sprintf("Results for %q", report.Query))
	r.writePlain("Method: %s\n", report.Method)
	if report.Narrowed {
		r.writePlain("Narrowed: contains matched more than %d bands\n", r.resolver.Options().MaxContainsResults)
	}
	if debug {
		r.writePlain("Variants: %s\n", strings.Join(report.VariantsTried, " | "))
	}
	r.writePlain("Results: %d\n\n", report.ResultCount)

	if len(report.Results) == 0 {
		r.writePlain("No bands matched.\n")
	}
	for i, res := range report.Results {
		r.writePlain("%3d. %s\n", i+1, res.Label)
	}

	if debug && len(report.Attempts) > 0 {
		r.writePlainln("Attempts:")
		for _, a := range report.Attempts {
			r.writePlain("  %-8s %-12s %-24q %d row(s)\n", a.Strategy, a.Rule, a.Variant, a.Rows)
		}
	}
}

// printProgress echoes progress messages until ch is closed.
func (r *Runner) printProgress(ch <-chan tasks.ProgressUpdate) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range ch {
			if update.Phase == tasks.ReadFile {
				r.writePlain("📥 %s\n", update.Message)
				continue
			}
			r.writePlain("   %s\n", update.Message)
		}
	}()
	return &wg
}

// drain discards progress messages until ch is closed.
func drain(ch <-chan tasks.ProgressUpdate) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range ch {
		}
	}()
	return &wg
}

// readQueries reads one query per line, skipping blank lines and # comments.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queries file: %w", err)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries file: %w", err)
	}
	return queries, nil
}
