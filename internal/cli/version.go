package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabgroups/tabgroups/internal/version"
)

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Runs without configuration or logging
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.Detailed())
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")
	return cmd
}
