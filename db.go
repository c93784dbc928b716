package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// movieTables lists the six tables of the fixed IMDb schema.
var movieTables = []string{"people", "titles", "akas", "crew", "episodes", "ratings"}

// QueryResult holds an eagerly fetched result set. Every row has exactly
// len(Columns) fields, in SELECT order.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// RowCount returns the number of fetched rows.
func (r *QueryResult) RowCount() int { return len(r.Rows) }

// RowMaps converts the result set to column-name-keyed records, the shape the
// chart aggregator and JSON responses work with.
func (r *QueryResult) RowMaps() []map[string]any {
	maps := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		record := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			record[col] = row[j]
		}
		maps[i] = record
	}
	return maps
}

// Store executes read-only SQL against the IMDb SQLite file. Each call opens
// its own connection with the query-only pragma and a busy timeout, and closes
// it before returning; no state is shared across requests.
type Store struct {
	path    string
	timeout time.Duration
}

// NewStore returns a store for the database file at path. timeout bounds both
// the busy wait and the per-query context.
func NewStore(path string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{path: path, timeout: timeout}
}

// open establishes a read-only connection and applies performance pragmas.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_query_only=true&_busy_timeout=%d",
		s.path, int(s.timeout/time.Millisecond))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open database", "error", err, "db_path", s.path)
		}
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Enlarged page cache (64 MB); read performance only, no file changes.
	if _, err := db.ExecContext(ctx, "PRAGMA cache_size = -64000"); err != nil {
		db.Close()
		if logger != nil {
			logger.Error("Failed to apply cache pragma", "error", err, "db_path", s.path)
		}
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return db, nil
}

// Execute runs a statement with optional bound parameters and fetches all rows
// eagerly. The connection is closed on every path. Database-level failures are
// returned as categorized execution errors carrying the offending SQL.
func (s *Store) Execute(ctx context.Context, sqlQuery string, args ...any) (*QueryResult, error) {
	start := time.Now()

	db, err := s.open(ctx)
	if err != nil {
		return nil, newQueryError(ErrExecution, sqlQuery, err)
	}
	defer db.Close()

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, sqlQuery, args...)
	if err != nil {
		if logger != nil {
			logger.Error("SQL execution failed", "error", err, "sql_preview", truncateString(sqlQuery, 150))
		}
		return nil, newQueryError(ErrExecution, sqlQuery, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, newQueryError(ErrExecution, sqlQuery, fmt.Errorf("failed to read result columns: %w", err))
	}

	result := &QueryResult{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, newQueryError(ErrExecution, sqlQuery, fmt.Errorf("scan failed: %w", err))
		}

		// The sqlite driver hands text columns back as []byte.
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, newQueryError(ErrExecution, sqlQuery, err)
	}

	if logger != nil {
		logger.Info("SQL executed",
			"duration_ms", time.Since(start).Milliseconds(),
			"row_count", len(result.Rows),
			"sql_preview", truncateString(sqlQuery, 150))
	}

	return result, nil
}

// ExplainCheck dry-runs a statement through EXPLAIN QUERY PLAN as a
// syntax-only check without executing it. Used by the stricter validator
// variant.
func (s *Store) ExplainCheck(ctx context.Context, sqlQuery string) error {
	db, err := s.open(ctx)
	if err != nil {
		return newQueryError(ErrValidation, sqlQuery, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+sqlQuery)
	if err != nil {
		if logger != nil {
			logger.Warn("Query plan check rejected statement", "error", err, "sql_preview", truncateString(sqlQuery, 150))
		}
		return newQueryError(ErrValidation, sqlQuery, fmt.Errorf("query plan check failed: %w", err))
	}
	return rows.Close()
}

// personCreditsSQL is the chart template: a person's on-screen credits
// bucketed by premiere year, already in (year, count) shape.
const personCreditsSQL = `
	SELECT t.premiered AS year, COUNT(DISTINCT t.title_id) AS count
	FROM people p
	INNER JOIN crew c ON c.person_id = p.person_id
	INNER JOIN titles t ON t.title_id = c.title_id
	WHERE p.name = ?
	  AND c.category IN ('actor', 'actress')
	  AND t.premiered IS NOT NULL
	GROUP BY t.premiered
	ORDER BY t.premiered`

// PersonCreditsByYear runs the specialized chart query for a named person.
// The name is a bound parameter, never interpolated.
func (s *Store) PersonCreditsByYear(ctx context.Context, name string) (*QueryResult, error) {
	return s.Execute(ctx, personCreditsSQL, name)
}

// TableInfo returns PRAGMA table_info output for one of the schema tables.
func (s *Store) TableInfo(ctx context.Context, table string) (*QueryResult, error) {
	return s.Execute(ctx, fmt.Sprintf("PRAGMA table_info('%s')", table))
}
