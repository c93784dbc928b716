package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent [prompt]",
	Short: "Run a freeform agent with database tools",
	Long: `Run a multi-step agent that can translate questions, inspect the schema
and execute read-only SQL on its own until the prompt is answered. Unlike
chat, the agent decides its own tool budget.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  moviefinder agent "Which decade produced the best rated horror movies?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prompt := strings.Join(args, " ")
		if err := RunAgent(context.Background(), dbPath, prompt); err != nil {
			HandleError(err, "Agent run failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
