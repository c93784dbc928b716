package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var chatJSON bool

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the assistant, with database and chart tools",
	Long: `Send one message through the tool-calling assistant. The model can search
the IMDb database and generate charts before composing its answer.

Requires ANTHROPIC_API_KEY environment variable to be set.

Examples:
  moviefinder chat "How prolific was Tom Hanks over the years? Chart it."
  moviefinder chat "Compare the ratings of the Lord of the Rings movies"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := InitApp(dbPath)
		if err != nil {
			HandleError(err, "Failed to initialize")
		}

		result, err := app.Chat(context.Background(), args[0])
		if err != nil {
			HandleError(err, "Chat failed")
		}

		if chatJSON {
			fmt.Println(string(result.RawJSON))
			return
		}

		fmt.Println(result.AIResponse)
		if result.ChartText != "" {
			fmt.Println()
			fmt.Println(result.ChartText)
		}
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "Print the full response envelope as JSON")
	rootCmd.AddCommand(chatCmd)
}
