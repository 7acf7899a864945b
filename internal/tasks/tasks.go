// package tasks implements bulk band import and batch query resolution.
package tasks

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/shared"
)

// BandCreator persists a new band. Implemented by repositories.BandRepository.
type BandCreator interface {
	Create(band *models.PersistedBand) error
}

// RowError is a band that could not be imported.
type RowError struct {
	Row   int    // 1-based record number in the source file, header excluded
	Name  string // Band name, if one was parsed
	Error error
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Path    string
	Total   int        // Records read from the file
	Created int        // Bands written to the store
	Skipped int        // Duplicates of bands already stored
	Failed  []RowError // Invalid or unwritable records
}

// Importer loads bands from CSV or JSON files into a store.
type Importer struct {
	store  BandCreator
	logger *log.Logger
}

// NewImporter creates an Importer writing to store.
func NewImporter(store BandCreator, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Importer{store: store, logger: logger}
}

// Import reads the file at path and creates every band in it.
//
// The format is chosen by extension (.csv or .json). Duplicates are counted as skipped and other per-band failures are
// collected in [ImportResult.Failed]; only file-level problems and cancellation return an error.
func (i *Importer) Import(ctx context.Context, prog chan<- ProgressUpdate, path string) (*ImportResult, error) {
	sendProgress(prog, readFileUpdate(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var bands []models.Band
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		bands, err = ParseCSV(f)
	case ".json":
		bands, err = ParseJSON(f)
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .json)", shared.ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	total := len(bands)
	sendProgress(prog, parsedFileUpdate(path, total))
	i.logger.Info("importing bands", "path", path, "count", total)

	result := &ImportResult{Path: path, Total: total, Failed: []RowError{}}
	for n, b := range bands {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import canceled after %d bands: %w", n, err)
		}

		err := i.store.Create(models.NewPersistedBand(0, b))
		switch {
		case err == nil:
			result.Created++
			sendProgress(prog, importedBandUpdate(n+1, total, b.Name))
		case errors.Is(err, shared.ErrDuplicate):
			result.Skipped++
			i.logger.Debug("skipping duplicate band", "name", b.Name, "country", b.Country)
			sendProgress(prog, skippedBandUpdate(n+1, total, b.Name, err))
		default:
			result.Failed = append(result.Failed, RowError{Row: n + 1, Name: b.Name, Error: err})
			i.logger.Warn("failed to import band", "row", n+1, "name", b.Name, "error", err)
			sendProgress(prog, skippedBandUpdate(n+1, total, b.Name, err))
		}
	}

	i.logger.Info("import finished", "created", result.Created, "skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}

// ParseCSV reads bands from CSV with columns name,country,genres,followers.
//
// A leading header row is detected by its first cell being "name". Genres are separated by ';' or '|'; an empty
// followers cell means unknown. Trailing columns may be omitted.
func ParseCSV(r io.Reader) ([]models.Band, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV: %w", shared.ErrInvalidInput, err)
	}

	if len(records) > 0 && len(records[0]) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "name") {
		records = records[1:]
	}

	bands := make([]models.Band, 0, len(records))
	for n, record := range records {
		b := models.Band{Name: strings.TrimSpace(cell(record, 0)), Country: strings.TrimSpace(cell(record, 1))}
		b.Genres = SplitGenres(cell(record, 2))

		if raw := strings.TrimSpace(cell(record, 3)); raw != "" {
			followers, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: followers %q is not a number", shared.ErrInvalidInput, n+1, raw)
			}
			b.Followers = models.Followers(followers)
		}

		bands = append(bands, b)
	}
	return bands, nil
}

// ParseJSON reads a JSON array of bands.
func ParseJSON(r io.Reader) ([]models.Band, error) {
	var bands []models.Band
	if err := json.NewDecoder(r).Decode(&bands); err != nil {
		return nil, fmt.Errorf("%w: failed to decode JSON: %w", shared.ErrInvalidInput, err)
	}
	for n := range bands {
		bands[n].ID = ""
		bands[n].NormalizedName = ""
	}
	return bands, nil
}

// SplitGenres splits a genre cell on ';' or '|', dropping blanks.
func SplitGenres(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' })
	genres := make([]string, 0, len(fields))
	for _, g := range fields {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
