package main

import (
	"fmt"

	"github.com/aretw0/spotlist/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the wizard flow as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the wizard steps, their gates and the
location branch. With --session the path of a stored session is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			state, err := app.Sessions.Load(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error loading session %q: %w", id, err)
			}
			overlay = graph.OverlayFromState(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Wizard.Steps(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of this session")
}
