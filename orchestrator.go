package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	libinjection "github.com/corazawaf/libinjection-go"
)

const (
	toolSearchDatabase = "search_database"
	toolGenerateChart  = "generate_chart"
)

// ToolCallStatus tracks a tool invocation through its lifecycle.
type ToolCallStatus string

const (
	ToolStatusPending   ToolCallStatus = "pending"
	ToolStatusExecuting ToolCallStatus = "executing"
	ToolStatusCompleted ToolCallStatus = "completed"
	ToolStatusFailed    ToolCallStatus = "failed"
)

// ToolCallRecord is one tool invocation requested by the model (or chained
// automatically), in invocation order.
type ToolCallRecord struct {
	ID           string         `json:"id"`
	FunctionName string         `json:"function_name"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	Status       ToolCallStatus `json:"status"`
	Result       any            `json:"result,omitempty"`
}

// SearchToolResult is the structured envelope returned by search_database.
type SearchToolResult struct {
	Success     bool             `json:"success"`
	Results     []map[string]any `json:"results,omitempty"`
	SQLQuery    string           `json:"sql_query,omitempty"`
	ColumnNames []string         `json:"column_names,omitempty"`
	RowCount    int              `json:"row_count"`
	Error       string           `json:"error,omitempty"`
}

// ChartToolResult is the structured envelope returned by generate_chart.
type ChartToolResult struct {
	Success bool         `json:"success"`
	Chart   *ChartSeries `json:"chart,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ChatResponse is the envelope returned to the caller for a chat request.
type ChatResponse struct {
	Success       bool              `json:"success"`
	AIResponse    string            `json:"ai_response"`
	FunctionCalls []ToolCallRecord  `json:"function_calls"`
	SearchResults *SearchToolResult `json:"search_results,omitempty"`
	ChartData     *ChartToolResult  `json:"chart_data,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	RequestID     string            `json:"request_id"`
}

type searchFilters struct {
	YearRange string  `json:"year_range,omitempty"`
	Genre     string  `json:"genre,omitempty"`
	RatingMin float64 `json:"rating_min,omitempty"`
}

type searchArgs struct {
	QueryType    string         `json:"query_type"`
	SearchTerms  string         `json:"search_terms"`
	ChartRequest bool           `json:"chart_request,omitempty"`
	Filters      *searchFilters `json:"filters,omitempty"`
}

type chartArgs struct {
	ChartType string           `json:"chart_type"`
	Data      []map[string]any `json:"data"`
	Title     string           `json:"title,omitempty"`
	XLabel    string           `json:"x_label,omitempty"`
	YLabel    string           `json:"y_label,omitempty"`
}

// toolFailure is the generic failure envelope fed back to the model when a
// tool cannot run at all (bad arguments, unknown tool name).
type toolFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Orchestrator drives the two-call tool loop: one model call to plan, local
// tool execution in requested order, and one model call to synthesize the
// answer. No state survives across requests.
type Orchestrator struct {
	messages messageCreator
	model    anthropic.Model
	service  *QueryService
	store    *Store
}

// NewOrchestrator builds the orchestrator with its own model client.
func NewOrchestrator(cfg *Config, service *QueryService, store *Store) (*Orchestrator, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	return &Orchestrator{
		messages: &client.Messages,
		model:    anthropic.Model(cfg.Model),
		service:  service,
		store:    store,
	}, nil
}

// chatTools declares the callable tool schemas sent to the model.
func chatTools() []anthropic.ToolUnionParam {
	searchTool := anthropic.ToolParam{
		Name:        toolSearchDatabase,
		Description: anthropic.String("Search the IMDb movie/TV database with a natural language query. Set chart_request=true to get a person's on-screen credits grouped by year, ready for charting."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"query_type": map[string]any{
					"type":        "string",
					"enum":        []string{"movie_search", "person_search", "analysis", "collaboration", "chart_data"},
					"description": "What kind of question this is",
				},
				"search_terms": map[string]any{
					"type":        "string",
					"description": "The title, person name, or free-text terms to search for",
				},
				"chart_request": map[string]any{
					"type":        "boolean",
					"description": "True when the results should be chartable credits-per-year for a named person",
				},
				"filters": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"year_range": map[string]any{"type": "string", "description": "Premiere year range, e.g. 1990-2000"},
						"genre":      map[string]any{"type": "string"},
						"rating_min": map[string]any{"type": "number"},
					},
				},
			},
			Required: []string{"query_type", "search_terms"},
		},
	}

	chartTool := anthropic.ToolParam{
		Name:        toolGenerateChart,
		Description: anthropic.String("Generate a bar, line, or pie chart from result rows. Rows may carry year/count pairs, raw year fields, x/y pairs, or label/value pairs for pie charts."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"chart_type": map[string]any{
					"type": "string",
					"enum": []string{"bar", "line", "pie"},
				},
				"data": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "object"},
					"description": "Result rows to chart",
				},
				"title":   map[string]any{"type": "string"},
				"x_label": map[string]any{"type": "string"},
				"y_label": map[string]any{"type": "string"},
			},
			Required: []string{"chart_type", "data"},
		},
	}

	return []anthropic.ToolUnionParam{
		{OfTool: &searchTool},
		{OfTool: &chartTool},
	}
}

// Run handles one chat request: at most two model calls, with all requested
// tools executed sequentially in between. Only a failure of the model calls
// themselves surfaces as an error; tool failures are folded into the
// transcript.
func (o *Orchestrator) Run(ctx context.Context, userMessage string) (*ChatResponse, error) {
	resp := &ChatResponse{
		FunctionCalls: []ToolCallRecord{},
		Timestamp:     time.Now().UTC(),
		RequestID:     newRequestID(),
	}

	params := anthropic.MessageNewParams{
		Model:     o.model,
		MaxTokens: 4000,
		System: []anthropic.TextBlockParam{
			{Text: BuildChatPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
		Tools: chatTools(),
	}

	first, err := o.messages.New(ctx, params)
	if err != nil {
		if logger != nil {
			logger.Error("Chat model call failed", "error", err, "request_id", resp.RequestID)
		}
		return nil, newQueryError(ErrTranslation, "", fmt.Errorf("Claude API error: %w", err))
	}

	var (
		assistantBlocks []anthropic.ContentBlockParamUnion
		textParts       []string
		toolUses        []anthropic.ContentBlockUnion
	)

	for _, block := range first.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
			assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(block.Text))
		case "tool_use":
			toolUses = append(toolUses, block)
			assistantBlocks = append(assistantBlocks, anthropic.ContentBlockParamUnion{
				OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    block.ID,
					Name:  block.Name,
					Input: block.Input,
				},
			})
		}
	}

	// No tool calls: the model's text is the final answer.
	if len(toolUses) == 0 {
		resp.Success = true
		resp.AIResponse = strings.Join(textParts, "")
		return resp, nil
	}

	// Execute each requested tool strictly in order, feeding results back
	// tagged with the originating call identifier.
	var resultBlocks []anthropic.ContentBlockParamUnion

	for _, call := range toolUses {
		record := ToolCallRecord{
			ID:           call.ID,
			FunctionName: call.Name,
			Status:       ToolStatusExecuting,
		}
		if len(call.Input) > 0 {
			_ = json.Unmarshal(call.Input, &record.Arguments)
		}

		result, failed := o.executeTool(ctx, call.Name, call.Input, resp)
		record.Result = result
		if failed {
			record.Status = ToolStatusFailed
		} else {
			record.Status = ToolStatusCompleted
		}
		resp.FunctionCalls = append(resp.FunctionCalls, record)

		payload, merr := json.Marshal(result)
		if merr != nil {
			payload = []byte(`{"success":false,"error":"unserializable tool result"}`)
			failed = true
		}
		resultBlocks = append(resultBlocks, toolResultBlock(call.ID, string(payload), failed))

		// Auto-chain: a successful chart-oriented search always gets its chart
		// built, even when the model forgot to request the second step.
		if call.Name == toolSearchDatabase && !failed {
			o.autoChainChart(call, resp)
		}
	}

	params.Messages = append(params.Messages,
		anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant, Content: assistantBlocks},
		anthropic.NewUserMessage(resultBlocks...),
	)

	second, err := o.messages.New(ctx, params)
	if err != nil {
		if logger != nil {
			logger.Error("Chat synthesis call failed", "error", err, "request_id", resp.RequestID, "tool_calls", len(resp.FunctionCalls))
		}
		return nil, newQueryError(ErrTranslation, "", fmt.Errorf("Claude API error during synthesis: %w", err))
	}

	resp.Success = true
	resp.AIResponse = messageText(second)

	if logger != nil {
		logger.Info("Chat request completed",
			"request_id", resp.RequestID,
			"tool_calls", len(resp.FunctionCalls),
			"has_chart", resp.ChartData != nil)
	}

	return resp, nil
}

// executeTool dispatches on the fixed set of tool names. It never returns an
// error: every failure becomes a structured envelope so the conversation can
// continue. The second return value reports whether the tool failed.
func (o *Orchestrator) executeTool(ctx context.Context, name string, input json.RawMessage, resp *ChatResponse) (any, bool) {
	switch name {
	case toolSearchDatabase:
		result := o.runSearchTool(ctx, input)
		resp.SearchResults = result
		return result, !result.Success

	case toolGenerateChart:
		var args chartArgs
		if err := json.Unmarshal(input, &args); err != nil {
			result := &ChartToolResult{Success: false, Error: fmt.Sprintf("invalid chart arguments: %v", err)}
			resp.ChartData = result
			return result, true
		}
		result := o.runChartTool(args)
		resp.ChartData = result
		return result, !result.Success

	default:
		if logger != nil {
			logger.Warn("Model requested unknown tool", "tool", name, "request_id", resp.RequestID)
		}
		return &toolFailure{Success: false, Error: fmt.Sprintf("unknown tool %q", name)}, true
	}
}

// runSearchTool executes the search_database tool. Panics are contained here
// so a misbehaving pipeline cannot abort the orchestration.
func (o *Orchestrator) runSearchTool(ctx context.Context, input json.RawMessage) (result *SearchToolResult) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("Search tool panicked", "panic", fmt.Sprint(r))
			}
			result = &SearchToolResult{Success: false, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	var args searchArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return &SearchToolResult{Success: false, Error: fmt.Sprintf("invalid search arguments: %v", err)}
	}
	if strings.TrimSpace(args.SearchTerms) == "" {
		return &SearchToolResult{Success: false, Error: "search_terms is required"}
	}

	// Screen the terms before they are bound into any statement.
	if isSQLi, fingerprint := libinjection.IsSQLi(args.SearchTerms); isSQLi {
		if logger != nil {
			logger.Warn("Rejected search terms with injection pattern", "fingerprint", string(fingerprint))
		}
		return &SearchToolResult{Success: false, Error: "search terms rejected: SQL injection pattern detected"}
	}

	if args.ChartRequest {
		qr, err := o.store.PersonCreditsByYear(ctx, args.SearchTerms)
		if err != nil {
			return &SearchToolResult{Success: false, Error: err.Error()}
		}
		return &SearchToolResult{
			Success:     true,
			Results:     qr.RowMaps(),
			SQLQuery:    strings.TrimSpace(personCreditsSQL),
			ColumnNames: qr.Columns,
			RowCount:    qr.RowCount(),
		}
	}

	ask, err := o.service.Ask(ctx, buildSearchQuestion(args))
	if err != nil {
		return &SearchToolResult{Success: false, Error: err.Error()}
	}
	return &SearchToolResult{
		Success:     true,
		Results:     ask.Results,
		SQLQuery:    ask.SQLQuery,
		ColumnNames: ask.ColumnNames,
		RowCount:    ask.RowCount,
	}
}

// runChartTool executes the generate_chart tool via the aggregator.
func (o *Orchestrator) runChartTool(args chartArgs) *ChartToolResult {
	series, err := BuildChartSeries(args.ChartType, args.Data, args.Title, args.XLabel, args.YLabel)
	if err != nil {
		return &ChartToolResult{Success: false, Error: err.Error()}
	}
	return &ChartToolResult{Success: true, Chart: series}
}

// autoChainChart builds the chart for a successful chart_request search and
// records the chained invocation so callers can observe it. The chained result
// is not fed back to the model: the API only accepts tool results for calls
// the model made itself.
func (o *Orchestrator) autoChainChart(call anthropic.ContentBlockUnion, resp *ChatResponse) {
	var args searchArgs
	if len(call.Input) > 0 {
		_ = json.Unmarshal(call.Input, &args)
	}
	if !args.ChartRequest || resp.SearchResults == nil || resp.SearchResults.RowCount == 0 {
		return
	}

	chart := o.runChartTool(chartArgs{
		ChartType: "bar",
		Data:      resp.SearchResults.Results,
		Title:     fmt.Sprintf("%s credits by year", args.SearchTerms),
		XLabel:    "Year",
		YLabel:    "Credits",
	})
	resp.ChartData = chart

	status := ToolStatusCompleted
	if !chart.Success {
		status = ToolStatusFailed
	}
	resp.FunctionCalls = append(resp.FunctionCalls, ToolCallRecord{
		ID:           "auto_chart_" + call.ID,
		FunctionName: toolGenerateChart,
		Arguments: map[string]any{
			"chart_type": "bar",
			"source":     toolSearchDatabase,
		},
		Status: status,
		Result: chart,
	})

	if logger != nil {
		logger.Info("Auto-chained chart generation after chart_request search",
			"request_id", resp.RequestID, "success", chart.Success)
	}
}

// buildSearchQuestion turns tool arguments into the natural-language question
// fed to the translation pipeline.
func buildSearchQuestion(args searchArgs) string {
	var b strings.Builder

	switch args.QueryType {
	case "movie_search":
		b.WriteString("Find movies matching ")
		b.WriteString(args.SearchTerms)
		b.WriteString(" with their ratings")
	case "person_search":
		b.WriteString("Find the person named ")
		b.WriteString(args.SearchTerms)
		b.WriteString(" and the titles they are known for, with ratings")
	case "collaboration":
		b.WriteString("Find titles where ")
		b.WriteString(args.SearchTerms)
		b.WriteString(" worked together, with ratings")
	case "chart_data":
		b.WriteString("Count on-screen credits per premiere year for ")
		b.WriteString(args.SearchTerms)
	default:
		b.WriteString(args.SearchTerms)
	}

	if f := args.Filters; f != nil {
		if f.YearRange != "" {
			b.WriteString(", premiered in ")
			b.WriteString(f.YearRange)
		}
		if f.Genre != "" {
			b.WriteString(", in the ")
			b.WriteString(f.Genre)
			b.WriteString(" genre")
		}
		if f.RatingMin > 0 {
			fmt.Fprintf(&b, ", with a rating of at least %.1f", f.RatingMin)
		}
	}

	return b.String()
}

// toolResultBlock wraps a serialized tool result for the follow-up model call.
func toolResultBlock(toolUseID, content string, isError bool) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{
		OfToolResult: &anthropic.ToolResultBlockParam{
			ToolUseID: toolUseID,
			IsError:   anthropic.Bool(isError),
			Content: []anthropic.ToolResultBlockParamContentUnion{
				{OfText: &anthropic.TextBlockParam{Text: content}},
			},
		},
	}
}

// newRequestID returns a short random identifier for log correlation.
func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
