package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/bandfeed/internal/search"
)

var _ list.Item = resultItem{}

// resultItem wraps [search.Result] to implement [list.Item].
type resultItem struct {
	result search.Result
}

func (i resultItem) FilterValue() string { return i.result.DisplayName }
func (i resultItem) Title() string       { return i.result.DisplayName }
func (i resultItem) Description() string {
	parts := []string{}
	if i.result.Country != "" {
		parts = append(parts, i.result.Country)
	}
	if i.result.GenreLabel != "" {
		parts = append(parts, i.result.GenreLabel)
	}
	parts = append(parts, fmt.Sprintf("%d followers", i.result.Followers))
	return strings.Join(parts, " • ")
}

func resultItems(results []search.Result) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
