package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/storage"
	"github.com/desertthunder/cineflix/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive library browser.
//
// Changes written by other cineflix processes reach the open lists through the storage watcher,
// and the session is kept alive for as long as the program runs.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/cineflix-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.requireSession(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher, err := storage.NewWatcher(ctx, r.store, r.bus, r.config.Session.WatchInterval.Duration,
		shared.WithLogger(r.logger, "component", "watcher"))
	if err != nil {
		return fmt.Errorf("failed to watch profile: %w", err)
	}
	go watcher.Run(ctx)
	go r.session.KeepAlive(ctx, r.config.Session.RefreshInterval.Duration)

	model := ui.NewModel(r.bus, r.session, r.favorites, r.watching)
	defer model.Close()

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}
