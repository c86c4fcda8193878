// Package cli defines the planner command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Weekday Planner – evening schedule derivation and reminders",
	Long: `planner derives a deterministic evening timeline (dinner, bath,
laundry, study, free time) from an arrival time and a few preferences,
stores planned days for analytics, and serves Web Push reminders.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(analyticsCmd)
}
