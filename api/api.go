// Package api provides the HTTP API server for submitting notes, querying
// them, and exporting the collection.
package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/pkg/ingest"
	"github.com/pinholabs/sitelog/pkg/project"
	"github.com/pinholabs/sitelog/pkg/query"
	"github.com/pinholabs/sitelog/pkg/storage"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string
}

// Server is the API server for the sitelog system.
type Server struct {
	config    Config
	store     storage.Store
	ingester  *ingest.Service
	querier   *query.Service
	projects  *project.Directory
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The store and services are injected to
// allow sharing with other components and test doubles.
func NewServer(config Config, store storage.Store, ingester *ingest.Service, querier *query.Service, projects *project.Directory, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		store:    store,
		ingester: ingester,
		querier:  querier,
		projects: projects,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/api/projects", s.handleListProjects)
	app.Post("/api/notes", s.handleSubmitNote)
	app.Post("/api/query", s.handleQuery)
	app.Get("/api/stats", s.handleStats)
	app.Get("/api/export/csv", s.handleExportCSV)

	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
