package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/bandfeed/internal/models"
	"github.com/desertthunder/bandfeed/internal/search"
	"github.com/desertthunder/bandfeed/internal/shared"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mattn/go-sqlite3"
)

var (
	_ models.Repository[*models.PersistedBand] = (*BandRepository)(nil)
	_ search.Store                             = (*BandRepository)(nil)
	_ search.SimilarityStore                   = (*BandRepository)(nil)
)

const bandColumns = `id, sequence, name, normalized_name, country, genres, followers, created_at, updated_at, deleted_at`

// BandRepository implements models.Repository[*models.PersistedBand] and the resolver's [search.Store].
//
// Matching predicates compare against name_lower and normalized_name, both derived in Go on write, since SQLite's
// lower() only folds ASCII. Rows are ordered by name_lower, then sequence.
type BandRepository struct {
	db        *sql.DB
	normalize search.Normalizer
}

// NewBandRepository creates a new BandRepository with the given database connection
func NewBandRepository(db *sql.DB) *BandRepository {
	return &BandRepository{db: db, normalize: search.Canonical}
}

// Create inserts a new [models.PersistedBand] with generated ID and sequence.
//
// A live band with the same lowercased name and country returns [shared.ErrDuplicate].
func (r *BandRepository) Create(band *models.PersistedBand) error {
	band.SetID(shared.GenerateID())
	if err := band.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "bands")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	band.SetSequence(sequence)
	band.SetName(strings.TrimSpace(band.Name()))
	band.SetNormalizedName(r.normalize(band.Name()))

	genres, err := encodeGenres(band.Genres())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bands (id, sequence, name, name_lower, normalized_name, country, genres, followers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		band.ID(),
		sequence,
		band.Name(),
		strings.ToLower(band.Name()),
		band.NormalizedName(),
		band.Country(),
		genres,
		followersValue(band.Followers()),
		band.CreatedAt(),
		band.UpdatedAt(),
	)
	if err != nil {
		return insertError(band.Name(), err)
	}
	return nil
}

// Get retrieves a band by ID, excluding soft-deleted bands
func (r *BandRepository) Get(id string) (*models.PersistedBand, error) {
	query := `SELECT ` + bandColumns + ` FROM bands WHERE id = ? AND deleted_at IS NULL`

	band, err := scanBand(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrBandNotFound, id)
	}
	return band, err
}

// Update modifies an existing band, re-deriving its matching columns from the name
func (r *BandRepository) Update(band *models.PersistedBand) error {
	if err := band.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	band.SetUpdatedAt(now)
	band.SetName(strings.TrimSpace(band.Name()))
	band.SetNormalizedName(r.normalize(band.Name()))

	genres, err := encodeGenres(band.Genres())
	if err != nil {
		return err
	}

	query := `
		UPDATE bands
		SET name = ?, name_lower = ?, normalized_name = ?, country = ?, genres = ?, followers = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		band.Name(),
		strings.ToLower(band.Name()),
		band.NormalizedName(),
		band.Country(),
		genres,
		followersValue(band.Followers()),
		now,
		band.ID(),
	)
	if err != nil {
		return insertError(band.Name(), err)
	}

	return expectAffected(result, band.ID())
}

// Delete soft-deletes a band by ID
func (r *BandRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE bands SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete band: %w", err)
	}
	return expectAffected(result, id)
}

// List retrieves live bands matching the given criteria.
//
// Supported keys: "country" (case-insensitive), "genre" (case-insensitive tag match), "limit" (int).
func (r *BandRepository) List(criteria map[string]any) ([]*models.PersistedBand, error) {
	query := `SELECT ` + bandColumns + ` FROM bands WHERE deleted_at IS NULL`
	args := []any{}

	if country, ok := criteria["country"].(string); ok && country != "" {
		query += " AND country = ? COLLATE NOCASE"
		args = append(args, country)
	}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND EXISTS (SELECT 1 FROM json_each(bands.genres) WHERE lower(json_each.value) = ?)"
		args = append(args, strings.ToLower(genre))
	}

	query += " ORDER BY name_lower ASC, sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bands: %w", err)
	}
	defer rows.Close()

	var bands []*models.PersistedBand
	for rows.Next() {
		band, err := scanBand(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, band)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return bands, nil
}

// Count returns the number of live bands.
func (r *BandRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bands WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bands: %w", err)
	}
	return n, nil
}

// Equals returns bands whose name or normalized name equals term, ignoring case.
func (r *BandRepository) Equals(ctx context.Context, term string, limit int) ([]models.Band, error) {
	term = strings.ToLower(term)
	return r.match(ctx, `(name_lower = ? OR normalized_name = ?)`, limit, term, term)
}

// StartsWith returns bands whose name or normalized name begins with term, ignoring case.
func (r *BandRepository) StartsWith(ctx context.Context, term string, limit int) ([]models.Band, error) {
	pattern := escapeLike(strings.ToLower(term)) + "%"
	return r.match(ctx, `(name_lower LIKE ? ESCAPE '\' OR normalized_name LIKE ? ESCAPE '\')`, limit, pattern, pattern)
}

// Contains returns bands whose name or normalized name contains term, ignoring case.
func (r *BandRepository) Contains(ctx context.Context, term string, limit int) ([]models.Band, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return r.match(ctx, `(name_lower LIKE ? ESCAPE '\' OR normalized_name LIKE ? ESCAPE '\')`, limit, pattern, pattern)
}

// Similar returns bands whose normalized name is within [search.DistanceThreshold] edits of the normalized term,
// closest first, then by name.
//
// Candidates are prefiltered in SQL by normalized name length.
func (r *BandRepository) Similar(ctx context.Context, term string, limit int) ([]models.Band, error) {
	target := r.normalize(term)
	n := utf8.RuneCountInString(target)
	if n == 0 {
		return nil, nil
	}
	threshold := search.DistanceThreshold(n)

	query := `SELECT ` + bandColumns + ` FROM bands
		WHERE deleted_at IS NULL AND length(normalized_name) BETWEEN ? AND ?
		ORDER BY name_lower ASC, sequence ASC`

	rows, err := r.db.QueryContext(ctx, query, n-threshold, n+threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar bands: %w", err)
	}
	defer rows.Close()

	type ranked struct {
		band     models.Band
		distance int
	}

	var candidates []ranked
	for rows.Next() {
		band, err := scanBand(rows)
		if err != nil {
			return nil, err
		}
		if d := fuzzy.LevenshteinDistance(target, band.NormalizedName()); d <= threshold {
			candidates = append(candidates, ranked{band: band.Band(), distance: d})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	bands := make([]models.Band, len(candidates))
	for i, c := range candidates {
		bands[i] = c.band
	}
	return bands, nil
}

func (r *BandRepository) match(ctx context.Context, predicate string, limit int, args ...any) ([]models.Band, error) {
	query := `SELECT ` + bandColumns + ` FROM bands WHERE deleted_at IS NULL AND ` + predicate +
		` ORDER BY name_lower ASC, sequence ASC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bands: %w", err)
	}
	defer rows.Close()

	var bands []models.Band
	for rows.Next() {
		band, err := scanBand(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, band.Band())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return bands, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// scanBand scans a row selected with bandColumns into a [models.PersistedBand]
func scanBand(s scanner) (*models.PersistedBand, error) {
	var (
		id             string
		sequence       int
		name           string
		normalizedName string
		country        string
		genres         string
		followers      sql.NullInt64
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := s.Scan(&id, &sequence, &name, &normalizedName, &country, &genres, &followers, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan band: %w", err)
	}

	dto := models.Band{
		ID:             id,
		Name:           name,
		NormalizedName: normalizedName,
		Country:        country,
	}
	if genres != "" {
		if err := json.Unmarshal([]byte(genres), &dto.Genres); err != nil {
			return nil, fmt.Errorf("failed to decode genres for band %s: %w", id, err)
		}
	}
	if followers.Valid {
		dto.Followers = models.Followers(int(followers.Int64))
	}

	band := models.NewPersistedBand(sequence, dto)
	band.SetCreatedAt(createdAt)
	band.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		band.SetDeletedAt(&deletedAt.Time)
	}

	return band, nil
}

// escapeLike escapes LIKE wildcards so term matches literally with ESCAPE '\'.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func encodeGenres(genres []string) (string, error) {
	if genres == nil {
		genres = []string{}
	}
	data, err := json.Marshal(genres)
	if err != nil {
		return "", fmt.Errorf("failed to encode genres: %w", err)
	}
	return string(data), nil
}

func followersValue(followers *int) any {
	if followers == nil {
		return nil
	}
	return *followers
}

func insertError(name string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", shared.ErrDuplicate, name)
	}
	return fmt.Errorf("failed to write band: %w", err)
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrBandNotFound, id)
	}
	return nil
}
