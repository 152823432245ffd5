package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tabgroups/tabgroups/internal/options"
	"github.com/tabgroups/tabgroups/internal/store"
	"github.com/tabgroups/tabgroups/internal/tui"
	"github.com/tabgroups/tabgroups/internal/updates"
)

func (a *app) newOptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Open the options page",
		Long: `Open the interactive options page. When standard output is not a
terminal the current preferences are printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOptions(cmd)
		},
	}
}

func (a *app) runOptions(cmd *cobra.Command) error {
	if !a.interactive(cmd.OutOrStdout()) {
		a.logger.Debug("stdout is not a terminal, printing preferences")
		return a.printPreferences(cmd, outputText)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	hub := updates.NewHub(a.logger)
	defer hub.Close()

	s, err := a.openStore(hub)
	if err != nil {
		return err
	}
	defer s.Close()

	page, stop, err := a.openPage(ctx, s, hub)
	if err != nil {
		return err
	}
	a.logger.Info("options page opened", "platform", page.Platform(), "mode", page.Preferences().Mode)

	program := tea.NewProgram(page,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, runErr := program.Run()
	stop()

	if runErr != nil {
		return fmt.Errorf("options page failed: %w", runErr)
	}
	a.logger.Info("options page closed")
	return nil
}

// openPage subscribes the page to hub, starts watching s and then reads the
// initial preferences. Subscribing first queues any change made during the
// read for the page. stop ends the subscription and waits for the watcher.
func (a *app) openPage(ctx context.Context, s *store.Store, hub *updates.Hub) (*options.Page, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	ch, unsubscribe := hub.Subscribe()
	watching := a.startWatch(ctx, s, hub)
	stop := func() {
		unsubscribe()
		cancel()
		<-watching
	}

	initial, err := options.Load(ctx, s)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	ui := a.manager.GetUIConfig()
	page := options.New(s, ch, initial,
		options.WithContext(ctx),
		options.WithLogger(a.logger),
		options.WithTheme(tui.NewTheme(ui.Theme)),
		options.WithPlatform(ui.Platform),
		options.WithHelp(ui.ShowHelp),
	)
	return page, stop, nil
}
