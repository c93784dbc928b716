package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ServerConfig holds configuration for the web server
type ServerConfig struct {
	Port         int
	Store        *Store
	Service      *QueryService
	Orchestrator *Orchestrator
}

// StartServer initializes and starts the HTTP server
func StartServer(config ServerConfig) error {
	r := newRouter(config)

	addr := fmt.Sprintf(":%d", config.Port)
	log.Printf("Starting server on http://localhost%s", addr)
	return http.ListenAndServe(addr, r)
}

func newRouter(config ServerConfig) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API handlers (JSON responses)
	apiHandler := &APIHandler{
		Store:        config.Store,
		Service:      config.Service,
		Orchestrator: config.Orchestrator,
	}
	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", apiHandler.Ask)
		r.Post("/chat", apiHandler.Chat)
		r.Post("/query", apiHandler.Query)
		r.Get("/schema", apiHandler.Schema)
		r.Get("/schema/{table}", apiHandler.TableSchema)
	})

	return r
}
