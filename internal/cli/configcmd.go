package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabgroups/tabgroups/internal/config"
	"github.com/tabgroups/tabgroups/internal/domain"
)

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, change or create the application config",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if file := a.manager.GetConfigFile(); file != "" {
				fmt.Fprintf(out, "# %s\n", file)
			}
			data, err := yaml.Marshal(a.manager.Settings())
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the current settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(config.Dir(), "tabgroups.yaml")
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := a.manager.SaveAs(path); err != nil {
				return err
			}
			a.logger.Info("wrote configuration", "path", path)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save it to the config file",
		Long: `Change one setting and save it to the config file in use, or to
~/.config/tabgroups/tabgroups.yaml when none was loaded.

Keys: ` + strings.Join(config.Keys, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.ToLower(args[0]), args[1]
			if !config.IsKey(key) {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			if err := a.manager.Set(key, value); err != nil {
				return domain.NewError(domain.ErrorTypeValidation, "invalid setting", err).
					WithContext("key", key).
					WithContext("value", value)
			}
			if err := a.manager.Save(); err != nil {
				return err
			}
			a.logger.Info("setting changed", "key", key, "value", value, "file", a.manager.GetConfigFile())
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s in %s\n", key, value, a.manager.GetConfigFile())
			return err
		},
	}

	var yes bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.confirm(cmd, yes, "Reset the configuration?",
				"Settings from the config file and flags are replaced by the defaults.")
			if err != nil || !ok {
				return err
			}
			if err := a.manager.Reset(); err != nil {
				return domain.NewError(domain.ErrorTypeConfiguration, "failed to reset configuration", err)
			}
			if err := a.manager.Save(); err != nil {
				return err
			}
			a.logger.Info("configuration reset", "file", a.manager.GetConfigFile())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", a.manager.GetConfigFile())
			return err
		},
	}
	resetCmd.Flags().BoolVarP(&yes, "yes", "y", false, "reset without asking")

	cmd.AddCommand(showCmd, setCmd, resetCmd, initCmd)
	return cmd
}
