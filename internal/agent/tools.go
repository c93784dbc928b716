package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"charm.land/fantasy"

	"moviefinder/cmd"
)

// CreateTools builds the Fantasy tools the agent can call. Every tool goes
// through the same pipeline the CLI commands use, so the validation gate
// applies to agent-issued SQL too.
func CreateTools(app cmd.AppInterface) []fantasy.AgentTool {
	return []fantasy.AgentTool{
		translateTool(app),
		queryTool(app),
		schemaTool(app),
	}
}

type translateInput struct {
	Question string `json:"question" description:"A natural language question about movies, shows, or people"`
}

func translateTool(app cmd.AppInterface) fantasy.AgentTool {
	toolFunc := func(ctx context.Context, input translateInput, call fantasy.ToolCall) (fantasy.ToolResponse, error) {
		if input.Question == "" {
			return fantasy.ToolResponse{}, fmt.Errorf("question parameter is required")
		}

		result, err := app.Translate(ctx, input.Question)
		if err != nil {
			return fantasy.ToolResponse{}, fmt.Errorf("failed to translate question: %v", err)
		}

		return fantasy.NewTextResponse(result.SQL), nil
	}

	return fantasy.NewAgentTool(
		"translate",
		"Translate a natural language question into a validated SQLite SELECT statement",
		toolFunc,
	)
}

type queryInput struct {
	SQL string `json:"sql" description:"A read-only SQLite SELECT statement to execute"`
}

func queryTool(app cmd.AppInterface) fantasy.AgentTool {
	toolFunc := func(ctx context.Context, input queryInput, call fantasy.ToolCall) (fantasy.ToolResponse, error) {
		if input.SQL == "" {
			return fantasy.ToolResponse{}, fmt.Errorf("sql parameter is required")
		}

		result, err := app.RunSQL(ctx, input.SQL)
		if err != nil {
			return fantasy.ToolResponse{}, fmt.Errorf("failed to execute query: %v", err)
		}

		jsonBytes, err := json.MarshalIndent(result.Results, "", "  ")
		if err != nil {
			return fantasy.ToolResponse{}, fmt.Errorf("failed to encode result as JSON: %v", err)
		}

		return fantasy.NewTextResponse(string(jsonBytes)), nil
	}

	return fantasy.NewAgentTool(
		"query",
		"Execute a read-only SQL query against the IMDb database",
		toolFunc,
	)
}

type schemaInput struct {
	Table string `json:"table,omitempty" description:"Table name to describe. Omit to list all tables."`
}

func schemaTool(app cmd.AppInterface) fantasy.AgentTool {
	toolFunc := func(ctx context.Context, input schemaInput, call fantasy.ToolCall) (fantasy.ToolResponse, error) {
		if input.Table == "" {
			// No table given: list all of them
			jsonBytes, err := json.Marshal(app.Tables())
			if err != nil {
				return fantasy.ToolResponse{}, fmt.Errorf("failed to encode table list: %v", err)
			}
			return fantasy.NewTextResponse(string(jsonBytes)), nil
		}

		columns, err := app.TableSchema(ctx, input.Table)
		if err != nil {
			return fantasy.ToolResponse{}, fmt.Errorf("failed to get schema for table %s: %v", input.Table, err)
		}

		jsonBytes, err := json.MarshalIndent(columns, "", "  ")
		if err != nil {
			return fantasy.ToolResponse{}, fmt.Errorf("failed to encode result as JSON: %v", err)
		}

		return fantasy.NewTextResponse(string(jsonBytes)), nil
	}

	return fantasy.NewAgentTool(
		"schema",
		"List the database tables or describe one table's columns",
		toolFunc,
	)
}
