package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bandfeed/internal/search"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	DetailView
)

// Resolver resolves a query. Implemented by [search.Resolver].
type Resolver interface {
	Resolve(ctx context.Context, query string, verbose bool) (*search.Report, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	resolver  Resolver
	width     int
	height    int
	input     textinput.Model
	results   list.Model
	report    *search.Report
	selected  *search.Result
	seq       int
	searching bool
	verbose   bool
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model searching with resolver. A non-empty query is searched on start.
func NewModel(ctx context.Context, resolver Resolver, query string) *Model {
	input := textinput.New()
	input.Placeholder = "band name, e.g. månegarm"
	input.Prompt = "› "
	input.CharLimit = 256
	input.SetValue(query)
	input.Focus()

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.Title = "Results"
	results.SetShowHelp(false)
	results.SetFilteringEnabled(false)

	return &Model{
		ctx:      ctx,
		view:     SearchView,
		resolver: resolver,
		input:    input,
		results:  results,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the cursor blink and, when a query was given, the first search.
func (m *Model) Init() tea.Cmd {
	if strings.TrimSpace(m.input.Value()) != "" {
		return tea.Batch(textinput.Blink, m.runSearch())
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-6, 10)
		m.results.SetSize(msg.Width-4, max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.debug) {
			m.verbose = !m.verbose
			return m, nil
		}
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		if msg.kind == MsgSearchComplete {
			return m.handleSearchComplete(msg.data.(searchComplete))
		}
	}

	return m.updateFocused(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.view == DetailView && m.selected != nil {
		return m.renderDetail()
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Band search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	if m.report != nil && len(m.report.Results) > 0 {
		b.WriteString(m.results.View())
		b.WriteString("\n")
	}
	if m.verbose && m.report != nil && len(m.report.Attempts) > 0 {
		b.WriteString(m.renderAttempts())
		b.WriteString("\n")
	}

	var helpKeys []key.Binding
	if m.view == SearchView {
		helpKeys = []key.Binding{m.keys.search, m.keys.focus, m.keys.debug, m.keys.quit}
	} else {
		helpKeys = []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.focus, m.keys.quit}
	}
	b.WriteString(m.help.ShortHelpView(helpKeys))

	return b.String()
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		return m, m.runSearch()
	case key.Matches(msg, m.keys.focus):
		if len(m.results.Items()) > 0 {
			m.view = ResultsView
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.focus), key.Matches(msg, m.keys.back):
		m.view = SearchView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.results.SelectedItem().(resultItem); ok {
			r := item.result
			m.selected = &r
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.enter) {
		m.view = ResultsView
		m.selected = nil
	}
	return m, nil
}

func (m *Model) handleSearchComplete(msg searchComplete) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	m.searching = false
	m.err = msg.err
	if msg.err != nil {
		m.report = nil
		return m, m.results.SetItems(nil)
	}

	m.report = msg.report
	m.results.Title = fmt.Sprintf("Results for %q", msg.report.Query)
	m.results.ResetSelected()
	return m, m.results.SetItems(resultItems(msg.report.Results))
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case ResultsView:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

// runSearch resolves the current input. The trace is always recorded so toggling attempts needs no new search.
func (m *Model) runSearch() tea.Cmd {
	query := m.input.Value()
	m.seq++
	m.searching = true
	seq := m.seq

	return func() tea.Msg {
		report, err := m.resolver.Resolve(m.ctx, query, true)
		return searchCompleteMsg(seq, report, err)
	}
}

func (m *Model) renderStatus() string {
	switch {
	case m.searching:
		return styles.help.Render("Searching...")
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.report == nil:
		return styles.help.Render("Type a band name and press enter")
	case m.report.ResultCount == 0:
		return styles.warn.Render(fmt.Sprintf("No bands matched %q", m.report.Query))
	}

	method := methodStyle(m.report.Method).Render(m.report.Method.String())
	status := fmt.Sprintf("%d result(s) via %s", m.report.ResultCount, method)
	if m.report.Narrowed {
		status += " (narrowed)"
	}
	if len(m.report.VariantsTried) > 0 {
		status += styles.help.Render(" · tried " + strings.Join(m.report.VariantsTried, ", "))
	}
	return status
}

func (m *Model) renderAttempts() string {
	var b strings.Builder
	b.WriteString(styles.warn.Render("Attempts"))
	for i, a := range m.report.Attempts {
		b.WriteString(fmt.Sprintf("\n  %d. %-8s %-8s %q → %d", i+1, a.Strategy, a.Rule, a.Variant, a.Rows))
	}
	return b.String()
}

func (m *Model) renderDetail() string {
	r := m.selected

	var b strings.Builder
	b.WriteString(styles.title.Render(r.DisplayName))
	b.WriteString("\n")
	if r.Country != "" {
		b.WriteString(fmt.Sprintf("Country:   %s\n", r.Country))
	}
	if r.GenreLabel != "" {
		b.WriteString(fmt.Sprintf("Genres:    %s\n", r.GenreLabel))
	}
	b.WriteString(fmt.Sprintf("Followers: %d\n", r.Followers))
	b.WriteString(fmt.Sprintf("ID:        %s\n\n", r.ID))
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	return b.String()
}
