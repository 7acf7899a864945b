package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/bandfeed/internal/search"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// methodStyle colors a strategy by how loose the match was: exact and prefix are green, contains amber, fuzzy red.
func methodStyle(s search.Strategy) lipgloss.Style {
	switch s {
	case search.StrategyExact, search.StrategyPrefix:
		return styles.ok
	case search.StrategyContains:
		return styles.warn
	case search.StrategyFuzzy:
		return styles.err
	default:
		return styles.help
	}
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
