package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bandfeed/internal/search"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchComplete MsgKind = iota
)

type searchComplete struct {
	seq    int
	report *search.Report
	err    error
}

// searchCompleteMsg is the constructor for [MsgSearchComplete]. seq identifies the search so stale results are dropped.
func searchCompleteMsg(seq int, report *search.Report, err error) Msg {
	return Msg{kind: MsgSearchComplete, data: searchComplete{seq: seq, report: report, err: err}}
}
