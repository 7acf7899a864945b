package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bandfeed/internal/shared"
	"github.com/desertthunder/bandfeed/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive band search.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, f, err := shared.NewFileLogger("./tmp/bandfeed-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	resolver, err := r.searcher()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, resolver, cmd.StringArg("query"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
