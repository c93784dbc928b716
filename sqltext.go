package main

import (
	"fmt"
	"regexp"
	"strings"
)

// destructiveKeywords is the denylist applied to generated SQL. The check is a
// naive case-insensitive substring search, so a column name containing one of
// these words would false-positive; acceptable for this fixed schema.
var destructiveKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE", "TRUNCATE",
}

// ExtractSQL strips a surrounding markdown code fence (with an optional
// language tag) and whitespace from a model response, yielding the candidate
// SQL statement. It is idempotent and performs no syntax validation.
func ExtractSQL(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// Drop a language hint such as "sql" or "sqlite" on the fence line.
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			firstLine := strings.TrimSpace(s[:idx])
			if firstLine == "" || isFenceLanguageTag(firstLine) {
				s = s[idx+1:]
			}
		} else {
			s = strings.TrimSpace(s)
			if isFenceLanguageTag(s) {
				s = ""
			}
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

func isFenceLanguageTag(s string) bool {
	if s == "" || len(s) > 12 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

var likeLiteralStart = regexp.MustCompile(`(?i)\bLIKE\s*'`)

// RepairLikeQuotes doubles unescaped single quotes inside LIKE '...' string
// literals, the most common way the model breaks otherwise-valid SQL (e.g.
// LIKE '%O'Brien%'). Already-doubled quotes are left untouched, and quotes in
// equality literals are deliberately not repaired. The function never fails:
// if the heuristic scan goes wrong it returns the original statement and
// reports a warning through the second return value.
func RepairLikeQuotes(sqlQuery string) (repaired string, warned bool) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Warn("Quote repair failed, returning statement unmodified", "panic", fmt.Sprint(r), "sql_preview", truncateString(sqlQuery, 120))
			}
			repaired = sqlQuery
			warned = true
		}
	}()

	matches := likeLiteralStart.FindAllStringIndex(sqlQuery, -1)
	if len(matches) == 0 {
		return sqlQuery, false
	}

	var b strings.Builder
	cursor := 0

	for _, m := range matches {
		if m[1] <= cursor {
			// Match falls inside a literal we already consumed.
			continue
		}

		// Copy everything up to and including the opening quote.
		b.WriteString(sqlQuery[cursor:m[1]])

		literal, consumed, ok := repairLiteral(sqlQuery[m[1]:])
		if !ok {
			// Unterminated literal: leave the remainder untouched.
			b.WriteString(sqlQuery[m[1]:])
			cursor = len(sqlQuery)
			break
		}

		b.WriteString(literal)
		b.WriteByte('\'')
		cursor = m[1] + consumed
	}

	if cursor < len(sqlQuery) {
		b.WriteString(sqlQuery[cursor:])
	}

	return b.String(), false
}

// repairLiteral scans a string literal body starting just after its opening
// quote. It returns the repaired body, the number of input bytes consumed
// including the closing quote, and whether a closing quote was found. A quote
// followed by anything other than a delimiter is treated as an unescaped
// interior quote and doubled.
func repairLiteral(s string) (string, int, bool) {
	var b strings.Builder

	i := 0
	for i < len(s) {
		ch := s[i]
		if ch != '\'' {
			b.WriteByte(ch)
			i++
			continue
		}

		// Doubled quote: already escaped, keep as-is.
		if i+1 < len(s) && s[i+1] == '\'' {
			b.WriteString("''")
			i += 2
			continue
		}

		// Quote at end of input or followed by a delimiter closes the literal.
		if i+1 >= len(s) || isLiteralDelimiter(s[i+1]) {
			return b.String(), i + 1, true
		}

		// Bare quote inside the literal: escape it.
		b.WriteString("''")
		i++
	}

	return b.String(), i, false
}

func isLiteralDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', ')', ';', ',':
		return true
	}
	return false
}

// ValidateSQL is the read-only gate: it rejects statements containing any
// destructive keyword and statements that do not begin with SELECT. A nil
// return means the statement may be executed. Rejection is terminal for the
// request; no retry against the model is attempted.
func ValidateSQL(sqlQuery string) error {
	trimmed := strings.TrimSpace(sqlQuery)
	if trimmed == "" {
		return newQueryError(ErrValidation, sqlQuery, fmt.Errorf("empty statement"))
	}

	upper := strings.ToUpper(trimmed)
	for _, kw := range destructiveKeywords {
		if strings.Contains(upper, kw) {
			return newQueryError(ErrValidation, sqlQuery, fmt.Errorf("statement contains forbidden keyword %s", kw))
		}
	}

	if !strings.HasPrefix(upper, "SELECT") {
		return newQueryError(ErrValidation, sqlQuery, fmt.Errorf("only SELECT statements are allowed"))
	}

	return nil
}
