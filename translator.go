package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// messageCreator is the slice of the Anthropic client the translator needs.
// Kept as an interface so tests can substitute a scripted model.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// SQLCandidate tracks a generated statement through extraction, quote repair
// and validation. Once Validated is true the SQL starts with a read verb and
// contains no destructive keyword.
type SQLCandidate struct {
	RawText         string `json:"raw_text"`
	SQL             string `json:"sql"`
	Validated       bool   `json:"validated"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	RepairWarning   bool   `json:"repair_warning,omitempty"`
}

// Translator turns natural-language questions into SQL candidates using the
// Claude Messages API.
type Translator struct {
	messages       messageCreator
	model          anthropic.Model
	maxQueryLength int
}

// NewTranslator builds a translator from configuration. The API key is
// required; everything else has defaults.
func NewTranslator(cfg *Config) (*Translator, error) {
	if cfg.AnthropicAPIKey == "" {
		if logger != nil {
			logger.Error("Translator initialization failed: missing API key")
		}
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	return &Translator{
		messages:       &client.Messages,
		model:          anthropic.Model(cfg.Model),
		maxQueryLength: cfg.MaxQueryLength,
	}, nil
}

// GenerateSQL runs one translation call and post-processes the response into a
// validated SQL candidate. On validation rejection the candidate is returned
// alongside the error so callers can report the rejected statement.
func (t *Translator) GenerateSQL(ctx context.Context, question string) (*SQLCandidate, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, newQueryError(ErrTranslation, "", fmt.Errorf("empty question"))
	}
	if t.maxQueryLength > 0 && len(question) > t.maxQueryLength {
		return nil, newQueryError(ErrTranslation, "", fmt.Errorf("question exceeds %d characters", t.maxQueryLength))
	}

	params := anthropic.MessageNewParams{
		Model:       t.model,
		MaxTokens:   600,
		Temperature: anthropic.Float(0.4),
		System: []anthropic.TextBlockParam{
			{Text: BuildTranslationPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	}

	message, err := t.messages.New(ctx, params)
	if err != nil {
		if logger != nil {
			logger.Error("Claude API call failed for SQL generation", "error", err, "question", question)
		}
		return nil, newQueryError(ErrTranslation, "", fmt.Errorf("Claude API error: %w", err))
	}

	responseText := messageText(message)
	if responseText == "" {
		if logger != nil {
			logger.Error("No text content in Claude response for SQL generation", "question", question)
		}
		return nil, newQueryError(ErrTranslation, "", fmt.Errorf("no text response from Claude"))
	}

	candidate := &SQLCandidate{RawText: responseText}
	candidate.SQL = ExtractSQL(responseText)
	candidate.SQL, candidate.RepairWarning = RepairLikeQuotes(candidate.SQL)

	if err := ValidateSQL(candidate.SQL); err != nil {
		candidate.RejectionReason = err.Error()
		if logger != nil {
			logger.Warn("Generated SQL rejected by validator", "reason", candidate.RejectionReason, "sql_preview", truncateString(candidate.SQL, 150))
		}
		return candidate, err
	}

	candidate.Validated = true

	if logger != nil {
		logger.Info("Generated SQL from question", "question", question, "sql_preview", truncateString(candidate.SQL, 150))
	}

	return candidate, nil
}

// messageText concatenates the text blocks of a model response.
func messageText(message *anthropic.Message) string {
	if message == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// truncateString shortens a string for log output, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
