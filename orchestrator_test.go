package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func newTestOrchestrator(t *testing.T, fake *fakeMessages) (*Orchestrator, func()) {
	t.Helper()

	store, cleanup := SetupTestStore(t)
	return &Orchestrator{
		messages: fake,
		model:    "test-model",
		store:    store,
	}, cleanup
}

func TestRunWithoutTools(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		textMessage("Forrest Gump premiered in 1994."),
	}}
	orch, cleanup := newTestOrchestrator(t, fake)
	defer cleanup()

	resp, err := orch.Run(context.Background(), "When did Forrest Gump premiere?")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !resp.Success {
		t.Error("response should be successful")
	}
	if resp.AIResponse != "Forrest Gump premiered in 1994." {
		t.Errorf("ai_response = %q", resp.AIResponse)
	}
	if len(resp.FunctionCalls) != 0 {
		t.Errorf("got %d function calls, want 0", len(resp.FunctionCalls))
	}
	if len(fake.calls) != 1 {
		t.Errorf("got %d API calls, want exactly 1", len(fake.calls))
	}
	if resp.RequestID == "" {
		t.Error("request_id missing")
	}
	if resp.Timestamp.IsZero() {
		t.Error("timestamp missing")
	}
}

func TestRunChartRequestAutoChains(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		toolUseMessage("call_1", toolSearchDatabase, map[string]any{
			"query_type":    "chart_data",
			"search_terms":  "Tom Hanks",
			"chart_request": true,
		}),
		textMessage("Tom Hanks was busiest in 1994."),
	}}
	orch, cleanup := newTestOrchestrator(t, fake)
	defer cleanup()

	resp, err := orch.Run(context.Background(), "Chart Tom Hanks' credits over time")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !resp.Success {
		t.Error("response should be successful")
	}
	if len(resp.FunctionCalls) < 2 {
		t.Fatalf("got %d function calls, want search plus chained chart", len(resp.FunctionCalls))
	}

	search := resp.FunctionCalls[0]
	if search.FunctionName != toolSearchDatabase || search.Status != ToolStatusCompleted {
		t.Errorf("first record = %s/%s, want completed search", search.FunctionName, search.Status)
	}
	chained := resp.FunctionCalls[1]
	if chained.FunctionName != toolGenerateChart || chained.Status != ToolStatusCompleted {
		t.Errorf("second record = %s/%s, want completed chart", chained.FunctionName, chained.Status)
	}

	if resp.SearchResults == nil || !resp.SearchResults.Success {
		t.Fatal("search results missing or failed")
	}
	if resp.SearchResults.RowCount != 3 {
		t.Errorf("search row_count = %d, want 3", resp.SearchResults.RowCount)
	}
	if resp.ChartData == nil || !resp.ChartData.Success {
		t.Fatal("chart data missing or failed")
	}
	if got := resp.ChartData.Chart.Labels; len(got) != 3 || got[0] != "1994" {
		t.Errorf("chart labels = %v, want ascending years starting at 1994", got)
	}

	// Two model calls: plan, then synthesis with the tool transcript.
	if len(fake.calls) != 2 {
		t.Fatalf("got %d API calls, want 2", len(fake.calls))
	}
	if len(fake.calls[1].Messages) != 3 {
		t.Errorf("synthesis call carries %d messages, want user+assistant+results", len(fake.calls[1].Messages))
	}
}

func TestRunUnknownTool(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		toolUseMessage("call_1", "format_disk", map[string]any{}),
		textMessage("I could not do that."),
	}}
	orch, cleanup := newTestOrchestrator(t, fake)
	defer cleanup()

	resp, err := orch.Run(context.Background(), "do something odd")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !resp.Success {
		t.Error("unknown tool must not fail the whole response")
	}
	if len(resp.FunctionCalls) != 1 {
		t.Fatalf("got %d function calls, want 1", len(resp.FunctionCalls))
	}
	record := resp.FunctionCalls[0]
	if record.Status != ToolStatusFailed {
		t.Errorf("record status = %s, want failed", record.Status)
	}
	failure, ok := record.Result.(*toolFailure)
	if !ok {
		t.Fatalf("record result is %T, want *toolFailure", record.Result)
	}
	if failure.Success || failure.Error == "" {
		t.Errorf("failure envelope = %+v", failure)
	}
}

func TestRunToolFailureContinues(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		toolUseMessage("call_1", toolSearchDatabase, map[string]any{
			"query_type":   "movie_search",
			"search_terms": "",
		}),
		textMessage("I could not search for that."),
	}}
	orch, cleanup := newTestOrchestrator(t, fake)
	defer cleanup()

	resp, err := orch.Run(context.Background(), "find nothing")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !resp.Success {
		t.Error("tool failure must not abort the request")
	}
	if resp.FunctionCalls[0].Status != ToolStatusFailed {
		t.Errorf("record status = %s, want failed", resp.FunctionCalls[0].Status)
	}
	if resp.SearchResults == nil || resp.SearchResults.Success {
		t.Error("search result should be a failure envelope")
	}
	if len(fake.calls) != 2 {
		t.Errorf("got %d API calls, want 2", len(fake.calls))
	}
}

func TestRunGenerateChartTool(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		toolUseMessage("call_1", toolGenerateChart, map[string]any{
			"chart_type": "pie",
			"data": []map[string]any{
				{"label": "Drama", "value": 3},
				{"label": "Comedy", "value": 1},
			},
			"title": "Genres",
		}),
		textMessage("Here is the genre split."),
	}}
	orch, cleanup := newTestOrchestrator(t, fake)
	defer cleanup()

	resp, err := orch.Run(context.Background(), "chart the genres")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if resp.ChartData == nil || !resp.ChartData.Success {
		t.Fatal("chart data missing or failed")
	}
	if resp.ChartData.Chart.Kind != ChartPie {
		t.Errorf("chart kind = %s, want pie", resp.ChartData.Chart.Kind)
	}
	if resp.FunctionCalls[0].Status != ToolStatusCompleted {
		t.Errorf("record status = %s, want completed", resp.FunctionCalls[0].Status)
	}
}

func TestRunRejectsInjectionTerms(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		toolUseMessage("call_1", toolSearchDatabase, map[string]any{
			"query_type":    "chart_data",
			"search_terms":  "x' OR 1=1 --",
			"chart_request": true,
		}),
		textMessage("That search was rejected."),
	}}
	orch, cleanup := newTestOrchestrator(t, fake)
	defer cleanup()

	resp, err := orch.Run(context.Background(), "chart this")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if resp.SearchResults == nil || resp.SearchResults.Success {
		t.Error("injection-flavored terms should produce a failure envelope")
	}
	if resp.FunctionCalls[0].Status != ToolStatusFailed {
		t.Errorf("record status = %s, want failed", resp.FunctionCalls[0].Status)
	}
	if resp.ChartData != nil {
		t.Error("no chart should be chained after a failed search")
	}
}

func TestRunSynthesisFailure(t *testing.T) {
	fake := &fakeMessages{
		responses: []*anthropic.Message{
			toolUseMessage("call_1", toolSearchDatabase, map[string]any{
				"query_type":    "chart_data",
				"search_terms":  "Tom Hanks",
				"chart_request": true,
			}),
			nil,
		},
		errs: []error{nil, fmt.Errorf("rate limited")},
	}
	orch, cleanup := newTestOrchestrator(t, fake)
	defer cleanup()

	_, err := orch.Run(context.Background(), "chart Tom Hanks")
	if err == nil {
		t.Fatal("synthesis failure must surface as an error")
	}
	if !errors.Is(err, ErrTranslation) {
		t.Errorf("error not categorized as translation: %v", err)
	}
}

func TestBuildSearchQuestion(t *testing.T) {
	testCases := []struct {
		name string
		args searchArgs
		want []string
	}{
		{
			name: "Movie search with filters",
			args: searchArgs{
				QueryType:   "movie_search",
				SearchTerms: "heist",
				Filters:     &searchFilters{YearRange: "1990-2000", Genre: "Thriller", RatingMin: 7.5},
			},
			want: []string{"heist", "1990-2000", "Thriller", "7.5"},
		},
		{
			name: "Collaboration",
			args: searchArgs{QueryType: "collaboration", SearchTerms: "Tom Hanks and Meg Ryan"},
			want: []string{"worked together", "Tom Hanks and Meg Ryan"},
		},
		{
			name: "Unknown type passes terms through",
			args: searchArgs{QueryType: "something_else", SearchTerms: "best westerns"},
			want: []string{"best westerns"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := buildSearchQuestion(tc.args)
			for _, fragment := range tc.want {
				if !strings.Contains(strings.ToLower(got), strings.ToLower(fragment)) {
					t.Errorf("question %q missing %q", got, fragment)
				}
			}
		})
	}
}
