package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var copySQL bool

var translateCmd = &cobra.Command{
	Use:   "translate [question]",
	Short: "Translate a question into SQL without running it",
	Long: `Generate the SQL for a natural language question and print it. The
statement is validated but never executed.

Examples:
  moviefinder translate "Top 10 highest rated movies of 1994"
  moviefinder translate --copy "How many episodes does Breaking Bad have?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := InitApp(dbPath)
		if err != nil {
			HandleError(err, "Failed to initialize")
		}

		result, err := app.Translate(context.Background(), args[0])
		if err != nil {
			HandleError(err, "Translation failed")
		}

		fmt.Println(result.SQL)
		if result.RepairWarning {
			fmt.Fprintln(os.Stderr, "warning: repaired unescaped quotes in a LIKE pattern")
		}

		if copySQL {
			if err := clipboard.WriteAll(result.SQL); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not copy to clipboard: %v\n", err)
			}
		}
	},
}

func init() {
	translateCmd.Flags().BoolVarP(&copySQL, "copy", "c", false, "Copy the generated SQL to the clipboard")
	rootCmd.AddCommand(translateCmd)
}
