package main

import (
	"fmt"

	"github.com/aretw0/spotlist/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration, hooks and step copy",
	Long: `Loads the configuration and hook file, resolves the copy of every step and
reports catalog documents that collide or name an unknown step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := cli.Validate(cmd.Context(), app)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Store: %s\n", app.Config.Store.Backend)
		fmt.Fprintf(out, "Catalog overrides: %v\n", report.Overrides)
		fmt.Fprintf(out, "Submit hooks: %v\n", report.SubmitHooks)
		fmt.Fprintf(out, "Locator: %s\n", report.Locator)
		fmt.Fprintln(out, "Configuration is valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
