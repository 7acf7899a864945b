package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	search key.Binding
	focus  key.Binding
	back   key.Binding
	debug  key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		search: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		debug:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "toggle attempts")),
		quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.focus, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.search, k.focus, k.back},
		{k.debug, k.quit},
	}
}
