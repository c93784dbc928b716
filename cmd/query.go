package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var queryString string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a read-only SQL query against the database",
	Long: `Execute the requested QUERY against the IMDb SQLite database. Only
SELECT statements pass validation; everything else is rejected.

Examples:
  moviefinder query --sql "SELECT * FROM titles LIMIT 5"
  moviefinder query --sql "SELECT COUNT(*) AS total FROM people"`,
	Run: func(cmd *cobra.Command, args []string) {
		if queryString == "" {
			HandleError(fmt.Errorf("query is required"), "Missing query parameter")
		}

		app, err := InitApp(dbPath)
		if err != nil {
			HandleError(err, "Failed to initialize")
		}

		result, err := app.RunSQL(context.Background(), queryString)
		if err != nil {
			HandleError(err, "Failed to execute query")
		}

		output, err := json.MarshalIndent(result.Results, "", "  ")
		if err != nil {
			HandleError(err, "Failed to encode JSON")
		}
		fmt.Println(string(output))
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryString, "sql", "q", "", "SQL query to execute (required)")
	_ = queryCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(queryCmd)
}
