package cmd

import (
	"context"
	"fmt"
	"os"
)

// AskData is a one-shot question answered with generated SQL (matches main.AskResult)
type AskData struct {
	Question    string           `json:"question"`
	SQLQuery    string           `json:"sql_query"`
	ColumnNames []string         `json:"column_names"`
	Results     []map[string]any `json:"results"`
	RowCount    int              `json:"row_count"`
}

// TranslateData is a generated SQL statement without execution
type TranslateData struct {
	SQL           string `json:"sql"`
	RepairWarning bool   `json:"repair_warning,omitempty"`
}

// ChatData is a conversational answer, with the chart pre-rendered for the terminal
type ChatData struct {
	AIResponse string `json:"ai_response"`
	ToolCalls  int    `json:"tool_calls"`
	ChartText  string `json:"chart_text,omitempty"`
	RequestID  string `json:"request_id"`
	RawJSON    []byte `json:"-"`
}

// QueryData is the result of a raw SQL statement
type QueryData struct {
	SQLQuery    string           `json:"sql_query"`
	ColumnNames []string         `json:"column_names"`
	Results     []map[string]any `json:"results"`
	RowCount    int              `json:"row_count"`
}

// ColumnData describes one table column from the schema
type ColumnData struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	NotNull bool   `json:"not_null"`
	PK      bool   `json:"pk"`
}

// AppInterface wraps the query pipeline for CLI commands
type AppInterface interface {
	Ask(ctx context.Context, question string) (*AskData, error)
	Chat(ctx context.Context, message string) (*ChatData, error)
	Translate(ctx context.Context, question string) (*TranslateData, error)
	RunSQL(ctx context.Context, sqlQuery string) (*QueryData, error)
	Tables() []string
	TableSchema(ctx context.Context, table string) ([]ColumnData, error)
}

// These variables will be set by main package
var (
	LaunchTUI   func(dbPath string)
	InitApp     func(dbPath string) (AppInterface, error)
	StartServer func(dbPath string, port int) error
	RunAgent    func(ctx context.Context, dbPath, prompt string) error
)

// HandleError prints error and exits
func HandleError(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}
