// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kutumb-backend",
	Short: "Kutumb is the backend service for the senior-citizen welfare program",
	Long: `Kutumb is the backend service for the senior-citizen welfare program.
It serves the REST API used for citizen registration, beat and officer
management, scheduled welfare visits and SOS alerts.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
