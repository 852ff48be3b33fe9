// Package cmd provides the command-line interface for the pairs server.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Pairs is a memory card game server.",
	Long: `Pairs deals boards of face-down picture cards and runs timed rounds over ` +
		`HTTP and WebSocket. Use "serve" to run the server and "levels" to inspect ` +
		`a level progression.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Registered exit handlers run before the process ends.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
