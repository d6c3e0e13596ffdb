package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgenie/internal/workflow"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List and select models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the models the configured service offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		client, err := a.newClient(a.cfg.Service)
		if err != nil {
			return usageError{err}
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), listTimeout(a.cfg.Request.Timeout()))
		defer cancel()

		models, err := client.ListModels(ctx)
		if err != nil {
			a.ui.Error(workflow.Message(err))
			return &workflow.HandledError{Op: "listModels", Err: err}
		}
		if len(models) == 0 {
			a.ui.Warn("No models available from current API configuration.")
			return nil
		}
		for _, m := range models {
			marker := " "
			if m == a.cfg.Service.Model {
				marker = "*"
			}
			fmt.Fprintf(stdout, "%s %s\n", marker, m)
		}
		return nil
	},
}

var modelsSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a model interactively and save it to the config file",
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
		stop := a.abortOnSignal()
		defer stop()
		return orch.SelectAvailableModel(cmd.Context())
	},
}

func listTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsSelectCmd)
}
