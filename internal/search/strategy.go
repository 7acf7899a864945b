package search

import (
	"context"

	"github.com/desertthunder/bandfeed/internal/models"
)

// Strategy is a match tier.
type Strategy string

const (
	StrategyNone     Strategy = "none"
	StrategyExact    Strategy = "exact"
	StrategyPrefix   Strategy = "prefix"
	StrategyContains Strategy = "contains"
	StrategyFuzzy    Strategy = "fuzzy"
)

func (s Strategy) String() string {
	return string(s)
}

// Store is the read-only band lookup the resolver queries.
//
// Every predicate is case-insensitive and matches the display name or the normalized name.
// Rows come back in the store's own order. A limit of 0 means no limit.
type Store interface {
	Equals(ctx context.Context, term string, limit int) ([]models.Band, error)
	StartsWith(ctx context.Context, term string, limit int) ([]models.Band, error)
	Contains(ctx context.Context, term string, limit int) ([]models.Band, error)
}

// SimilarityStore is implemented by stores that support approximate matching, closest rows first.
type SimilarityStore interface {
	Similar(ctx context.Context, term string, limit int) ([]models.Band, error)
}

// DistanceThreshold is the edit distance accepted by the fuzzy tier for a term of n runes (about 20%, between 1 and 3).
func DistanceThreshold(n int) int {
	th := n / 5
	if th < 1 {
		return 1
	}
	if th > 3 {
		return 3
	}
	return th
}
