// Package cli implements the tabgroups command line
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tabgroups/tabgroups/internal/config"
	"github.com/tabgroups/tabgroups/internal/domain"
	"github.com/tabgroups/tabgroups/internal/logging"
	"github.com/tabgroups/tabgroups/internal/store"
	"github.com/tabgroups/tabgroups/internal/updates"
)

// app holds the state shared by all commands of one invocation
type app struct {
	cfgFile string
	envFile string
	manager *config.Manager
	logger  *log.Logger
	closer  io.Closer

	// interactive reports whether w is a terminal
	interactive func(w io.Writer) bool
}

// Execute runs the root command with os.Args
func Execute() error {
	return run(NewRootCommand())
}

func run(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err == nil {
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	if domain.IsErrorType(err, domain.ErrorTypeConfiguration) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Check the config file, the TABGROUPS_* environment variables and the flags.")
	}
	return err
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	a := &app{
		manager:     config.NewManager(),
		interactive: isTerminal,
	}

	root := &cobra.Command{
		Use:   "tabgroups",
		Short: "Choose how tabs are grouped by domain",
		Long: `tabgroups edits the preferences that decide how browser tabs are put
in groups by domain: automatically or manually, and whether new groups
get a title and a colour.

Run without arguments to open the options page.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOptions(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: tabgroups.yaml in . or ~/.config/tabgroups)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with TABGROUPS_* variables")
	flags.String("backend", "", "preference backend: file, sqlite or memory")
	flags.String("store-path", "", "preference file or database")
	flags.String("theme", "", "colour theme: default, dark, light or minimal")
	flags.String("platform", "", "platform identifier, e.g. MacIntel")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-output", "", "log destination: a file, stderr or discard")

	root.AddCommand(
		a.newOptionsCommand(),
		a.newGetCommand(),
		a.newSetCommand(),
		a.newResetCommand(),
		a.newConfigCommand(),
		newVersionCommand(),
	)
	return root
}

var flagKeys = map[string]string{
	"backend":    "store.backend",
	"store-path": "store.path",
	"theme":      "ui.theme",
	"platform":   "ui.platform",
	"log-level":  "logging.level",
	"log-output": "logging.output",
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return domain.NewError(domain.ErrorTypeConfiguration, "failed to load environment file", err)
	}
	for name, key := range flagKeys {
		if err := a.manager.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	var err error
	if a.cfgFile != "" {
		err = a.manager.LoadFromFile(a.cfgFile)
	} else {
		err = a.manager.Load()
	}
	if err != nil {
		return domain.NewError(domain.ErrorTypeConfiguration, "failed to load configuration", err)
	}

	a.logger, a.closer, err = logging.New(a.manager.GetLoggingConfig())
	if err != nil {
		return domain.NewError(domain.ErrorTypeConfiguration, "failed to set up logging", err)
	}
	a.logger.Debug("configuration loaded", "file", a.manager.GetConfigFile(), "backend", a.manager.GetStoreConfig().Backend)
	return nil
}

func (a *app) teardown() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// openBackend opens the configured preference backend
func (a *app) openBackend() (store.Backend, error) {
	cfg := a.manager.GetStoreConfig()
	path := config.StorePath(cfg)

	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryBackend(nil), nil
	case config.BackendSQLite:
		return store.OpenSQLiteBackend(path, cfg.PollInterval)
	case config.BackendFile, "":
		return store.NewFileBackend(path)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// openStore wraps the configured backend in a Store publishing to publisher
func (a *app) openStore(publisher domain.UpdatePublisher) (*store.Store, error) {
	cfg := a.manager.GetStoreConfig()
	backend, err := a.openBackend()
	if err != nil {
		return nil, domain.NewError(domain.ErrorTypeStorage, "failed to open preferences", err).
			WithContext("backend", cfg.Backend)
	}

	opts := []store.Option{store.WithDefaults(cfg.Defaults)}
	if publisher != nil {
		opts = append(opts, store.WithPublisher(publisher))
	}
	return store.New(backend, opts...), nil
}

// startWatch publishes external changes to hub until ctx is cancelled. The
// returned channel is closed once watching has stopped.
func (a *app) startWatch(ctx context.Context, s *store.Store, hub *updates.Hub) <-chan struct{} {
	done, err := store.Watch(ctx, s, hub, a.logger)
	if err != nil {
		a.logger.Debug("not watching for external changes", "err", err)
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return done
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
