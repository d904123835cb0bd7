package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use: "tocino",
	Short: "Tocino records animation traces from a simulated network " +
		"topology.",
	Long: `Tocino correlates transmit and receive events of a discrete-event ` +
		`network simulation and records them as an ordered animation trace. ` +
		`The trace can go to a file, to a TCP peer, or be mirrored into a ` +
		`SQLite database for offline queries.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file may supply TOCINO_* variables for the config layer.
	if err := godotenv.Load(); err == nil {
		logrus.Debug("loaded environment from .env")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
