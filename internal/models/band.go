package models

import (
	"fmt"
	"strings"
	"time"
)

// Band is a band row as returned by the store.
//
// Name keeps the original spelling (accents, apostrophes); NormalizedName is derived from it and only used for matching.
type Band struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	NormalizedName string   `json:"normalized_name,omitempty"`
	Country        string   `json:"country,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Followers      *int     `json:"followers,omitempty"` // nil when the sync never reported a count
}

// FollowerCount returns the follower count, or 0 when absent or negative.
func (b Band) FollowerCount() int {
	if b.Followers == nil || *b.Followers < 0 {
		return 0
	}
	return *b.Followers
}

// Followers is a helper for building a [Band] literal with a follower count.
func Followers(n int) *int {
	return &n
}

// PersistedBand is a [Band] stored in the bands table.
type PersistedBand struct {
	id        string
	sequence  int
	band      Band
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedBand creates a PersistedBand from a [Band] DTO with fresh timestamps.
func NewPersistedBand(sequence int, band Band) *PersistedBand {
	now := time.Now()
	return &PersistedBand{
		id:        band.ID,
		sequence:  sequence,
		band:      band,
		createdAt: now,
		updatedAt: now,
	}
}

func (b *PersistedBand) ID() string               { return b.id }
func (b *PersistedBand) Sequence() int            { return b.sequence }
func (b *PersistedBand) Name() string             { return b.band.Name }
func (b *PersistedBand) NormalizedName() string   { return b.band.NormalizedName }
func (b *PersistedBand) Country() string          { return b.band.Country }
func (b *PersistedBand) Genres() []string         { return b.band.Genres }
func (b *PersistedBand) Followers() *int          { return b.band.Followers }
func (b *PersistedBand) CreatedAt() time.Time     { return b.createdAt }
func (b *PersistedBand) UpdatedAt() time.Time     { return b.updatedAt }
func (b *PersistedBand) DeletedAt() *time.Time    { return b.deletedAt }
func (b *PersistedBand) IsDeleted() bool          { return b.deletedAt != nil }
func (b *PersistedBand) SetSequence(sequence int) { b.sequence = sequence }

// SetID sets the identifier on both the entity and its DTO.
func (b *PersistedBand) SetID(id string) {
	b.id = id
	b.band.ID = id
}

func (b *PersistedBand) SetName(name string)                 { b.band.Name = name }
func (b *PersistedBand) SetNormalizedName(normalized string) { b.band.NormalizedName = normalized }
func (b *PersistedBand) SetCountry(country string)           { b.band.Country = country }
func (b *PersistedBand) SetGenres(genres []string)           { b.band.Genres = genres }
func (b *PersistedBand) SetFollowers(followers *int)         { b.band.Followers = followers }
func (b *PersistedBand) SetCreatedAt(t time.Time)            { b.createdAt = t }
func (b *PersistedBand) SetUpdatedAt(t time.Time)            { b.updatedAt = t }
func (b *PersistedBand) SetDeletedAt(t *time.Time)           { b.deletedAt = t }

// Band returns the DTO view of the entity.
func (b *PersistedBand) Band() Band {
	band := b.band
	band.ID = b.id
	return band
}

// Validate checks required fields.
func (b *PersistedBand) Validate() error {
	if b.id == "" {
		return fmt.Errorf("band ID is required")
	}
	if strings.TrimSpace(b.band.Name) == "" {
		return fmt.Errorf("band name is required")
	}
	if b.band.Followers != nil && *b.band.Followers < 0 {
		return fmt.Errorf("band followers must not be negative")
	}
	return nil
}
