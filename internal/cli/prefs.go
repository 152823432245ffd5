package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabgroups/tabgroups/internal/domain"
)

const (
	outputText = "text"
	outputYAML = "yaml"
	outputJSON = "json"
)

func (a *app) newGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the grouping preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printPreferences(cmd, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, yaml or json")
	return cmd
}

func (a *app) printPreferences(cmd *cobra.Command, output string) error {
	s, err := a.openStore(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	prefs, err := s.Snapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(output) {
	case outputText:
		_, err = fmt.Fprint(out, formatText(prefs))
	case outputYAML:
		var data []byte
		if data, err = yaml.Marshal(prefs); err == nil {
			_, err = out.Write(data)
		}
	case outputJSON:
		var data []byte
		if data, err = json.MarshalIndent(prefs, "", "  "); err == nil {
			_, err = fmt.Fprintln(out, string(data))
		}
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	return err
}

func formatText(prefs domain.StoredPreferences) string {
	label := "Unknown"
	if mode, err := domain.ParseMode(prefs.Mode); err == nil {
		label = mode.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tabs are put in groups: %s (%s)\n", label, prefs.Mode)
	fmt.Fprintf(&b, "New groups get a title: %s\n", onOff(prefs.Title))
	fmt.Fprintf(&b, "New groups get an unique color: %s\n", onOff(prefs.Color))
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// parseSwitch accepts on/off alongside the strconv.ParseBool spellings
func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", value)
	}
	return v, nil
}

func (a *app) newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <mode|color|title> <value>",
		Short: "Change one grouping preference",
		Long: `Change one grouping preference.

  tabgroups set mode auto|manual
  tabgroups set color on|off
  tabgroups set title on|off`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{domain.KeyMode, domain.KeyColor, domain.KeyTitle},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setPreference(cmd, args[0], args[1])
		},
	}
}

func (a *app) setPreference(cmd *cobra.Command, key, value string) error {
	s, err := a.openStore(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	switch strings.ToLower(key) {
	case domain.KeyMode:
		mode, perr := domain.ParseModeName(value)
		if perr != nil {
			return domain.NewError(domain.ErrorTypeValidation, "invalid mode", perr).WithContext("value", value)
		}
		err = s.Mode().Set(ctx, mode.Key())
	case domain.KeyColor:
		on, perr := parseSwitch(value)
		if perr != nil {
			return domain.NewError(domain.ErrorTypeValidation, "invalid color", perr)
		}
		err = s.Color().Set(ctx, on)
	case domain.KeyTitle:
		on, perr := parseSwitch(value)
		if perr != nil {
			return domain.NewError(domain.ErrorTypeValidation, "invalid title", perr)
		}
		err = s.Title().Set(ctx, on)
	default:
		return fmt.Errorf("unknown preference %q (want mode, color or title)", key)
	}
	if err != nil {
		return err
	}

	a.logger.Info("preference changed", "key", strings.ToLower(key), "value", value)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", strings.ToLower(key), value)
	return err
}

func (a *app) newResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default grouping preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.confirm(cmd, yes, "Reset grouping preferences?",
				formatText(a.manager.GetStoreConfig().Defaults))
			if err != nil || !ok {
				return err
			}
			return a.resetPreferences(cmd)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "reset without asking")
	return cmd
}

// confirm asks before a destructive action unless yes is set. Without a
// terminal to ask on it refuses.
func (a *app) confirm(cmd *cobra.Command, yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	if !a.interactive(cmd.OutOrStdout()) {
		return false, fmt.Errorf("refusing to %s without --yes when not running in a terminal", cmd.Name())
	}

	confirmed := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Reset").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return confirmed, err
}

func (a *app) resetPreferences(cmd *cobra.Command) error {
	s, err := a.openStore(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset preferences: %w", err)
	}
	a.logger.Info("preferences reset to defaults")
	_, err = fmt.Fprint(cmd.OutOrStdout(), formatText(s.Defaults()))
	return err
}
