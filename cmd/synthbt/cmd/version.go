package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/strategies"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the synthbt CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "synthbt version %s\n", version)
		fmt.Fprintf(w, "strategies: %v\n", strategies.Names())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
