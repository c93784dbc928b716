package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// fakeMessages is a scripted stand-in for the Messages API.
type fakeMessages struct {
	responses []*anthropic.Message
	errs      []error
	calls     []anthropic.MessageNewParams
}

func (f *fakeMessages) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, params)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx >= len(f.responses) {
		return nil, fmt.Errorf("fake has no response for call %d", idx)
	}
	return f.responses[idx], nil
}

func textMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}
}

func toolUseMessage(id, name string, args any) *anthropic.Message {
	input, _ := json.Marshal(args)
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "tool_use", ID: id, Name: name, Input: input},
		},
	}
}

func newTestTranslator(fake *fakeMessages) *Translator {
	return &Translator{
		messages:       fake,
		model:          "test-model",
		maxQueryLength: 500,
	}
}

func TestGenerateSQL(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		textMessage("```sql\nSELECT primary_title FROM titles WHERE premiered = 1994\n```"),
	}}
	translator := newTestTranslator(fake)

	candidate, err := translator.GenerateSQL(context.Background(), "What premiered in 1994?")
	if err != nil {
		t.Fatalf("GenerateSQL failed: %v", err)
	}

	if candidate.SQL != "SELECT primary_title FROM titles WHERE premiered = 1994" {
		t.Errorf("extracted SQL = %q", candidate.SQL)
	}
	if !candidate.Validated {
		t.Error("candidate should be validated")
	}
	if candidate.RepairWarning {
		t.Error("no repair warning expected")
	}

	// The call must carry the system prompt and the question.
	if len(fake.calls) != 1 {
		t.Fatalf("got %d API calls, want 1", len(fake.calls))
	}
	if len(fake.calls[0].System) == 0 || !strings.Contains(fake.calls[0].System[0].Text, "SQLite") {
		t.Error("system prompt missing from API call")
	}
}

func TestGenerateSQLRepairsQuotes(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		textMessage("SELECT name FROM people WHERE name LIKE '%O'Brien%'"),
	}}
	translator := newTestTranslator(fake)

	candidate, err := translator.GenerateSQL(context.Background(), "Find O'Brien")
	if err != nil {
		t.Fatalf("GenerateSQL failed: %v", err)
	}
	if candidate.SQL != "SELECT name FROM people WHERE name LIKE '%O''Brien%'" {
		t.Errorf("repaired SQL = %q", candidate.SQL)
	}
}

func TestGenerateSQLRejectsDestructive(t *testing.T) {
	fake := &fakeMessages{responses: []*anthropic.Message{
		textMessage("DELETE FROM titles"),
	}}
	translator := newTestTranslator(fake)

	candidate, err := translator.GenerateSQL(context.Background(), "Remove everything")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error not categorized as validation: %v", err)
	}
	if candidate == nil {
		t.Fatal("rejected candidate should still be returned")
	}
	if candidate.Validated {
		t.Error("candidate must not be marked validated")
	}
	if candidate.RejectionReason == "" {
		t.Error("rejection reason missing")
	}
}

func TestGenerateSQLInputChecks(t *testing.T) {
	translator := newTestTranslator(&fakeMessages{})

	if _, err := translator.GenerateSQL(context.Background(), "   "); err == nil {
		t.Error("empty question should fail before any API call")
	}

	long := strings.Repeat("x", 501)
	if _, err := translator.GenerateSQL(context.Background(), long); err == nil {
		t.Error("over-length question should fail before any API call")
	}
}

func TestGenerateSQLAPIFailure(t *testing.T) {
	fake := &fakeMessages{errs: []error{fmt.Errorf("connection refused")}}
	translator := newTestTranslator(fake)

	_, err := translator.GenerateSQL(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrTranslation) {
		t.Errorf("error not categorized as translation: %v", err)
	}
}
