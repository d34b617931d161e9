package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect application settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCommands(cmd, func(ctx context.Context, c clientCommands) error {
			settings, err := c.ListSettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to list settings: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), settings)
			}
			if len(settings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No settings found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE\tUPDATED AT")
			for _, s := range settings {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Value, s.UpdatedAt)
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.PersistentFlags().BoolVar(&useRemote, "remote", false, "send commands to a running 'clientbook serve' over its socket")
	settingsCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	settingsCmd.AddCommand(settingsListCmd)
}
