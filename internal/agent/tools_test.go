package agent

import (
	"context"
	"testing"

	"moviefinder/cmd"
)

// Mock implementation for testing
type mockApp struct{}

func (m *mockApp) Ask(ctx context.Context, question string) (*cmd.AskData, error) {
	return &cmd.AskData{Question: question, RowCount: 0}, nil
}

func (m *mockApp) Chat(ctx context.Context, message string) (*cmd.ChatData, error) {
	return &cmd.ChatData{AIResponse: "ok"}, nil
}

func (m *mockApp) Translate(ctx context.Context, question string) (*cmd.TranslateData, error) {
	return &cmd.TranslateData{SQL: "SELECT 1"}, nil
}

func (m *mockApp) RunSQL(ctx context.Context, sqlQuery string) (*cmd.QueryData, error) {
	return &cmd.QueryData{SQLQuery: sqlQuery}, nil
}

func (m *mockApp) Tables() []string {
	return []string{"people", "titles"}
}

func (m *mockApp) TableSchema(ctx context.Context, table string) ([]cmd.ColumnData, error) {
	return []cmd.ColumnData{{Name: "id", Type: "TEXT", PK: true}}, nil
}

// TestCreateTools tests that the pipeline is exposed as the expected tool set
func TestCreateTools(t *testing.T) {
	tools := CreateTools(&mockApp{})

	if len(tools) != 3 {
		t.Errorf("Expected 3 tools, got %d", len(tools))
	}
	for i, tool := range tools {
		if tool == nil {
			t.Errorf("tool %d is nil", i)
		}
	}
}

// TestNewMovieAgentValidation tests configuration validation
func TestNewMovieAgentValidation(t *testing.T) {
	t.Run("MissingAPIKey", func(t *testing.T) {
		_, err := NewMovieAgent(&mockApp{})
		if err == nil {
			t.Error("Expected error when API key is missing")
		}
	})

	t.Run("EmptyAPIKeyOption", func(t *testing.T) {
		_, err := NewMovieAgent(&mockApp{}, WithAPIKey(""))
		if err == nil {
			t.Error("Expected error for empty API key")
		}
	})

	t.Run("EmptyModelOption", func(t *testing.T) {
		_, err := NewMovieAgent(&mockApp{}, WithAPIKey("test-key"), WithModel(""))
		if err == nil {
			t.Error("Expected error for empty model")
		}
	})
}
