package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// APIHandler handles JSON API requests
type APIHandler struct {
	Store        *Store
	Service      *QueryService
	Orchestrator *Orchestrator
}

type askRequest struct {
	Question string `json:"question"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type queryRequest struct {
	SQL string `json:"sql"`
}

// Ask handles one-shot natural-language queries.
func (h *APIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "translation not available: ANTHROPIC_API_KEY not set",
		})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.Service.Ask(r.Context(), req.Question)
	if err != nil {
		respondJSON(w, statusForError(err), map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}

// Chat handles conversational requests through the tool-calling orchestrator.
func (h *APIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.Orchestrator == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "chat not available: ANTHROPIC_API_KEY not set",
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	resp, err := h.Orchestrator.Run(r.Context(), req.Message)
	if err != nil {
		respondJSON(w, statusForError(err), map[string]any{
			"success":   false,
			"error":     err.Error(),
			"timestamp": time.Now().UTC(),
		})
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Query executes caller-supplied SQL after the usual validation gate.
func (h *APIHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sqlQuery := ExtractSQL(req.SQL)
	if err := ValidateSQL(sqlQuery); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	result, err := h.Store.Execute(r.Context(), sqlQuery)
	if err != nil {
		respondJSON(w, statusForError(err), map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"sql_query":    sqlQuery,
		"column_names": result.Columns,
		"results":      result.RowMaps(),
		"row_count":    result.RowCount(),
	})
}

// Schema lists the queryable tables.
func (h *APIHandler) Schema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"tables": movieTables,
	})
}

// TableSchema returns column information for one table.
func (h *APIHandler) TableSchema(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	known := false
	for _, t := range movieTables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "unknown table"})
		return
	}

	info, err := h.Store.TableInfo(r.Context(), table)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"table":   table,
		"columns": info.RowMaps(),
	})
}

// statusForError maps the categorized pipeline errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrTranslation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON is a helper function to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}
