package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/spotlist"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of spotlist",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spotlist version %s\n", strings.TrimSpace(spotlist.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
