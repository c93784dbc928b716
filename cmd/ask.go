package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question and run the generated SQL",
	Long: `Translate a natural language question into SQL, execute it against the
IMDb database, and print the results as JSON.

Requires ANTHROPIC_API_KEY environment variable to be set.

Examples:
  moviefinder ask "What is the rating of Inception?"
  moviefinder ask "List episodes of The Office from 2008"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := InitApp(dbPath)
		if err != nil {
			HandleError(err, "Failed to initialize")
		}

		result, err := app.Ask(context.Background(), args[0])
		if err != nil {
			HandleError(err, "Failed to answer question")
		}

		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			HandleError(err, "Failed to encode JSON")
		}
		fmt.Println(string(output))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
