package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgenie/internal/output"
)

var flagStatsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Token usage statistics",
}

var statsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the last operation and lifetime token usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{format: flagStatsFormat})
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator(nil)
		if err != nil {
			return err
		}
		orch.ShowTokenStats()
		return nil
	},
}

var statsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all token usage statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator(nil)
		if err != nil {
			return err
		}
		return orch.ResetTokenStats(cmd.Context())
	},
}

func init() {
	statsCmd.AddCommand(statsShowCmd)
	statsCmd.AddCommand(statsResetCmd)
	statsShowCmd.Flags().StringVar(&flagStatsFormat, "format", "text", "Output format ("+strings.Join(output.Formats, ", ")+")")
}
