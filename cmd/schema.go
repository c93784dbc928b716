package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SchemaOutput represents the schema information for a table
type SchemaOutput struct {
	TableName   string       `json:"table_name"`
	ColumnCount int          `json:"column_count"`
	Columns     []ColumnData `json:"columns"`
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Retrieve a summary of the IMDb database schema",
	Long: `Retrieve a summary of the local IMDb SQLite database schema.
This command returns information about all tables and their columns.

Examples:
  moviefinder schema`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := InitApp(dbPath)
		if err != nil {
			HandleError(err, "Failed to initialize")
		}

		ctx := context.Background()
		schemas := make([]SchemaOutput, 0, len(app.Tables()))

		for _, tableName := range app.Tables() {
			columns, err := app.TableSchema(ctx, tableName)
			if err != nil {
				// Skip tables that don't exist in this database file
				continue
			}
			schemas = append(schemas, SchemaOutput{
				TableName:   tableName,
				ColumnCount: len(columns),
				Columns:     columns,
			})
		}

		output, err := json.MarshalIndent(schemas, "", "  ")
		if err != nil {
			HandleError(err, "Failed to encode JSON")
		}

		fmt.Println(string(output))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
