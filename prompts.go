package main

import (
	"strconv"
	"strings"
)

// schemaDescriptor is the fixed description of the IMDb corpus embedded in
// every prompt so generated SQL stays grounded in the real tables.
const schemaDescriptor = `**Database Schema (SQLite):**

Tables:
- people: person_id, name, born, died
- titles: title_id, type, primary_title, original_title, is_adult, premiered, ended, runtime_minutes, genres
- akas: title_id, title, region, language, types, attributes, is_original_title
- crew: title_id, person_id, category, job, characters
- episodes: episode_title_id, show_title_id, season_number, episode_number
- ratings: title_id, rating, votes`

// translationRules is the fixed rule set appended to every translation prompt.
const translationRules = `**SQL Guidelines:**
- Generate READ-ONLY queries: a single SELECT statement, nothing else
- Always include r.rating and r.votes when the ratings table is relevant
- Use SELECT DISTINCT when joining tables that can multiply rows
- Escape single quotes inside string literals by doubling them ('' not ')
- Put indexed equality predicates (title_id, person_id, primary_title, name) before LIKE predicates
- titles.type is 'movie', 'tvSeries', 'tvEpisode', 'short', etc.
- titles.premiered is the release year as an integer`

// fewShotExamples maps natural-language phrasings to their expected SQL.
// The examples are fixed so the composed prompt is deterministic.
var fewShotExamples = []struct {
	Input  string
	Output string
}{
	{
		Input:  "Find movies named 'Inception' and their ratings.",
		Output: "SELECT t.title_id, t.type, t.primary_title, t.premiered, t.genres, r.rating, r.votes FROM titles t INNER JOIN ratings r ON r.title_id = t.title_id WHERE t.primary_title = 'Inception' AND t.type = 'movie';",
	},
	{
		Input:  "List all episodes of 'The Office' TV show and order them by season and episode number.",
		Output: "SELECT e.episode_title_id, e.show_title_id, e.season_number, e.episode_number FROM titles t INNER JOIN episodes e ON t.title_id = e.show_title_id WHERE t.primary_title = 'The Office' AND t.type = 'tvSeries' ORDER BY e.season_number, e.episode_number;",
	},
	{
		Input:  "Find which movies both Leonardo DiCaprio and Tom Hardy acted in together.",
		Output: "SELECT DISTINCT t.title_id, t.primary_title, t.premiered, t.genres FROM titles t INNER JOIN crew c1 ON t.title_id = c1.title_id INNER JOIN crew c2 ON t.title_id = c2.title_id WHERE c1.person_id IN (SELECT person_id FROM people WHERE name = 'Leonardo DiCaprio') AND c2.person_id IN (SELECT person_id FROM people WHERE name = 'Tom Hardy') AND c1.category = 'actor' AND c2.category = 'actor' AND t.type = 'movie';",
	},
}

// BuildTranslationPrompt composes the system prompt for direct NL-to-SQL
// generation. Same inputs always produce the same string.
func BuildTranslationPrompt() string {
	var b strings.Builder

	b.WriteString("You are an assistant that translates natural language questions into SQLite queries against an IMDb database.\n\n")
	b.WriteString(schemaDescriptor)
	b.WriteString("\n\n")
	b.WriteString(translationRules)
	b.WriteString("\n\n**Examples:**\n")

	for i, ex := range fewShotExamples {
		b.WriteString("\nExample ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(":\nInput: \"")
		b.WriteString(ex.Input)
		b.WriteString("\"\nOutput: \"")
		b.WriteString(ex.Output)
		b.WriteString("\"\n")
	}

	b.WriteString("\nTranslate the user's question into one SQL query. Pick the most relevant columns to show based on the question. ")
	b.WriteString("It is *VERY IMPORTANT* to return ONLY the clean SQL WITHOUT ANY MARKDOWN, so it can be executed directly.")

	return b.String()
}

// BuildChatPrompt composes the system prompt for the tool-augmented
// conversational mode. It extends the translation prompt with descriptions of
// the two callable tools so the model knows when to reach for them.
func BuildChatPrompt() string {
	var b strings.Builder

	b.WriteString("You are a movie database assistant. You answer questions about films, TV shows and the people who made them, backed by an IMDb database.\n\n")
	b.WriteString(schemaDescriptor)
	b.WriteString("\n\n**Tools:**\n")
	b.WriteString("- search_database: runs a natural-language search against the database. Set chart_request=true when the user wants a chart of a person's credits over time.\n")
	b.WriteString("- generate_chart: turns result rows into a bar, line or pie chart. Call it after search_database when the user asked for a visualization.\n\n")
	b.WriteString("Use search_database for any factual question about the corpus. When the user asks for a chart, request both tools. ")
	b.WriteString("When you answer from tool results, summarize the key rows rather than repeating every column.\n\n")
	b.WriteString(translationRules)

	return b.String()
}
