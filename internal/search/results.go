package search

import (
	"fmt"
	"strings"

	"github.com/desertthunder/bandfeed/internal/models"
)

// Result is the display projection of a band.
type Result struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Country     string   `json:"country,omitempty"`
	GenreTags   []string `json:"genre_tags"`
	GenreLabel  string   `json:"genre_label,omitempty"`
	Followers   int      `json:"followers"`
	Label       string   `json:"label"`
}

// NewResult projects b into a [Result].
func NewResult(b models.Band) Result {
	tags := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		if g = strings.TrimSpace(g); g != "" {
			tags = append(tags, g)
		}
	}

	name := strings.TrimSpace(b.Name)
	genreLabel := strings.Join(tags, ", ")

	label := name
	if b.Country != "" {
		label = fmt.Sprintf("%s (%s)", label, b.Country)
	}
	if genreLabel != "" {
		label = fmt.Sprintf("%s · %s", label, genreLabel)
	}

	return Result{
		ID:          b.ID,
		DisplayName: name,
		Country:     b.Country,
		GenreTags:   tags,
		GenreLabel:  genreLabel,
		Followers:   b.FollowerCount(),
		Label:       label,
	}
}

// collector merges rows by band ID, keeping the first occurrence.
type collector struct {
	seen    map[string]struct{}
	results []Result
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{}), results: []Result{}}
}

func (c *collector) add(rows ...models.Band) {
	for _, row := range rows {
		if _, ok := c.seen[row.ID]; ok {
			continue
		}
		c.seen[row.ID] = struct{}{}
		c.results = append(c.results, NewResult(row))
	}
}

// Dedupe projects rows into results, dropping repeated band IDs and keeping first-seen order.
func Dedupe(rows []models.Band) []Result {
	c := newCollector()
	c.add(rows...)
	return c.results
}
