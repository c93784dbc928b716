package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	port     int
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the HTTP server exposing the query pipeline as a JSON API.

Endpoints:
  POST /api/ask     translate a question and run the SQL
  POST /api/chat    tool-calling assistant
  POST /api/query   validated raw SQL
  GET  /api/schema  table listing and column info`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 5001, "Port to run the server on")
}

func runServe() {
	fmt.Printf("Starting Movie Finder web server...\n")
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Port: %d\n\n", port)

	if err := StartServer(dbPath, port); err != nil {
		log.Fatalf("Server failed: %v\n", err)
	}
}
