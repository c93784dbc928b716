package cmd

import (
	"github.com/spf13/cobra"
)

var (
	dbPath  string
	rootCmd = &cobra.Command{
		Use:   "moviefinder",
		Short: "Movie Finder - Ask questions about movies and TV in plain English",
		Long: `Movie Finder translates natural language questions into SQL and runs
them against a local IMDb SQLite database.

When run without commands, it launches an interactive TUI.
Use subcommands for CLI mode with JSON output.`,
		Run: func(cmd *cobra.Command, args []string) {
			// No subcommand specified - launch TUI
			LaunchTUI(dbPath)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "db/imdb.db", "Path to the IMDb SQLite database file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
