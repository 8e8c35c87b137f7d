package main

import (
	"github.com/aretw0/spotlist/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the listing wizard in the terminal",
	Long: `Starts the wizard in interactive mode. Progress is saved after every step;
with the file or redis store, running again with the same --session resumes
where the lister left off (SPOTLIST_STORE_BACKEND=file).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.RunOptions{}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.IdleTimeout, _ = cmd.Flags().GetDuration("idle-timeout")
		opts.Stdin = cmd.InOrStdin()
		opts.Stdout = cmd.OutOrStdout()

		return cli.Execute(cmd.Context(), app, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "local", "Session ID to create or resume")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no confirmation prompt)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("fresh", false, "Discard the stored progress of the session first")
	runCmd.Flags().Bool("plain", false, "Disable markdown styling")
	runCmd.Flags().Duration("idle-timeout", 0, "Stop waiting for input after this long (0 waits forever)")

	// 'run' is the default when no command is given.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
