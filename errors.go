package main

import (
	"errors"
	"fmt"
)

// Failure categories for the query pipeline. Translation and validation
// failures surface to the caller before any SQL reaches the database;
// execution failures carry the offending statement for diagnosis.
var (
	ErrTranslation = errors.New("translation failed")
	ErrValidation  = errors.New("sql validation rejected")
	ErrExecution   = errors.New("sql execution failed")
	ErrAggregation = errors.New("chart aggregation failed")
)

// QueryError wraps a pipeline failure with its category and the SQL involved.
type QueryError struct {
	Kind error  // one of the sentinel categories above
	SQL  string // offending statement, may be empty for translation failures
	Err  error
}

func (e *QueryError) Error() string {
	if e.SQL != "" {
		return fmt.Sprintf("%s: %v (sql: %s)", e.Kind, e.Err, truncateString(e.SQL, 120))
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Is lets errors.Is match against the category sentinels.
func (e *QueryError) Is(target error) bool { return target == e.Kind }

func newQueryError(kind error, sql string, err error) *QueryError {
	return &QueryError{Kind: kind, SQL: sql, Err: err}
}
