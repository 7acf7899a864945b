// Package ui implements an interactive band search terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [SearchView] : Type a query into the input; enter runs the resolver
//  2. [ResultsView] : Browse the deduplicated results in a list
//  3. [DetailView] : Inspect one band
//
// The status line shows the strategy that produced the results and the variants tried, and ctrl+d toggles the full
// attempt trace. Each search runs as a [tea.Cmd]; results of a superseded search are discarded.
//
// Keyboard navigation uses vim-style bindings in the list (j/k, enter, esc) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
