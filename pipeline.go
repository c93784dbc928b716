package main

import (
	"context"
	"time"
)

// AskResult is the outcome of a one-shot natural-language query.
type AskResult struct {
	Question    string           `json:"question"`
	SQLQuery    string           `json:"sql_query"`
	ColumnNames []string         `json:"column_names"`
	Results     []map[string]any `json:"results"`
	RowCount    int              `json:"row_count"`
}

// QueryService wires the translation pipeline to the store: translate,
// validate, optionally dry-run the query plan, then execute.
type QueryService struct {
	translator   *Translator
	store        *Store
	explainCheck bool
}

// NewQueryService assembles the pipeline from its two collaborators.
func NewQueryService(translator *Translator, store *Store, cfg *Config) *QueryService {
	return &QueryService{
		translator:   translator,
		store:        store,
		explainCheck: cfg.ExplainCheck,
	}
}

// Ask translates a question into SQL and executes it. Validation rejection is
// terminal: the statement never reaches the database and the categorized error
// carries the rejected SQL.
func (s *QueryService) Ask(ctx context.Context, question string) (*AskResult, error) {
	start := time.Now()

	candidate, err := s.translator.GenerateSQL(ctx, question)
	if err != nil {
		return nil, err
	}

	if s.explainCheck {
		if err := s.store.ExplainCheck(ctx, candidate.SQL); err != nil {
			return nil, err
		}
	}

	result, err := s.store.Execute(ctx, candidate.SQL)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Question answered",
			"question", question,
			"row_count", result.RowCount(),
			"duration_ms", time.Since(start).Milliseconds())
	}

	return &AskResult{
		Question:    question,
		SQLQuery:    candidate.SQL,
		ColumnNames: result.Columns,
		Results:     result.RowMaps(),
		RowCount:    result.RowCount(),
	}, nil
}
