package main

import (
	"context"
	"errors"
	"testing"
)

func TestExecute(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	result, err := store.Execute(context.Background(),
		"SELECT primary_title, premiered FROM titles WHERE type = 'movie' ORDER BY premiered")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Columns) != 2 {
		t.Fatalf("got %d columns, want 2: %v", len(result.Columns), result.Columns)
	}
	if result.RowCount() != 5 {
		t.Errorf("got %d rows, want 5", result.RowCount())
	}

	// Every row carries exactly one field per column
	for i, row := range result.Rows {
		if len(row) != len(result.Columns) {
			t.Errorf("row %d has %d fields, want %d", i, len(row), len(result.Columns))
		}
	}

	// Text columns come back as strings, not []byte
	if _, ok := result.Rows[0][0].(string); !ok {
		t.Errorf("primary_title scanned as %T, want string", result.Rows[0][0])
	}
}

func TestExecuteZeroRows(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	result, err := store.Execute(context.Background(),
		"SELECT primary_title, premiered FROM titles WHERE premiered = 1900")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.RowCount() != 0 {
		t.Errorf("got %d rows, want 0", result.RowCount())
	}
	// Column names survive an empty result set
	if len(result.Columns) != 2 {
		t.Errorf("got columns %v, want primary_title and premiered", result.Columns)
	}
}

func TestExecuteBadSQL(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	_, err := store.Execute(context.Background(), "SELECT FROM nope nope")
	if err == nil {
		t.Fatal("expected error for invalid SQL")
	}
	if !errors.Is(err, ErrExecution) {
		t.Errorf("error not categorized as execution: %v", err)
	}
}

func TestQueryOnlyConnection(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Even if a write slipped past validation, the connection refuses it.
	if _, err := store.Execute(ctx, "DELETE FROM titles"); err == nil {
		t.Fatal("expected the query-only connection to reject DELETE")
	}

	result, err := store.Execute(ctx, "SELECT COUNT(*) AS n FROM titles")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if n, _ := result.Rows[0][0].(int64); n != 6 {
		t.Errorf("titles count = %v, want 6 (table must be untouched)", result.Rows[0][0])
	}
}

func TestPersonCreditsByYear(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	result, err := store.PersonCreditsByYear(context.Background(), "Tom Hanks")
	if err != nil {
		t.Fatalf("PersonCreditsByYear failed: %v", err)
	}

	// 1994 x2, 1995 x1, 1998 x1; the title without a premiere year is excluded.
	wantYears := []int64{1994, 1995, 1998}
	wantCounts := []int64{2, 1, 1}

	if result.RowCount() != len(wantYears) {
		t.Fatalf("got %d rows, want %d: %v", result.RowCount(), len(wantYears), result.Rows)
	}
	for i, row := range result.Rows {
		year, _ := row[0].(int64)
		count, _ := row[1].(int64)
		if year != wantYears[i] || count != wantCounts[i] {
			t.Errorf("row %d = (%v, %v), want (%d, %d)", i, row[0], row[1], wantYears[i], wantCounts[i])
		}
	}

	maps := result.RowMaps()
	if _, ok := maps[0]["year"]; !ok {
		t.Errorf("RowMaps missing year key: %v", maps[0])
	}
	if _, ok := maps[0]["count"]; !ok {
		t.Errorf("RowMaps missing count key: %v", maps[0])
	}
}

func TestPersonCreditsByYearUnknownPerson(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	result, err := store.PersonCreditsByYear(context.Background(), "Nobody At All")
	if err != nil {
		t.Fatalf("PersonCreditsByYear failed: %v", err)
	}
	if result.RowCount() != 0 {
		t.Errorf("got %d rows for unknown person, want 0", result.RowCount())
	}
}

func TestExplainCheck(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	if err := store.ExplainCheck(ctx, "SELECT * FROM titles LIMIT 1"); err != nil {
		t.Errorf("ExplainCheck rejected valid SQL: %v", err)
	}

	err := store.ExplainCheck(ctx, "SELECT * FROM no_such_table")
	if err == nil {
		t.Fatal("expected ExplainCheck to reject SQL against a missing table")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error not categorized as validation: %v", err)
	}
}

func TestTableInfo(t *testing.T) {
	store, cleanup := SetupTestStore(t)
	defer cleanup()

	info, err := store.TableInfo(context.Background(), "ratings")
	if err != nil {
		t.Fatalf("TableInfo failed: %v", err)
	}

	names := map[string]bool{}
	for _, row := range info.RowMaps() {
		if name, ok := row["name"].(string); ok {
			names[name] = true
		}
	}
	for _, want := range []string{"title_id", "rating", "votes"} {
		if !names[want] {
			t.Errorf("TableInfo missing column %s: %v", want, names)
		}
	}
}
