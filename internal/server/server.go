// Package server provides the HTTP API for the Wayfinder editor backend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tactilepath/wayfinder/internal/config"
	"github.com/tactilepath/wayfinder/internal/generator"
	"github.com/tactilepath/wayfinder/internal/roomsearch"
	"github.com/tactilepath/wayfinder/internal/storage"
)

// Server is the HTTP server for the Wayfinder API.
type Server struct {
	storage   storage.Storage
	generator *generator.Generator
	rooms     *roomsearch.Index
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	st storage.Storage,
	gen *generator.Generator,
	rooms *roomsearch.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		storage:   st,
		generator: gen,
		rooms:     rooms,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Generation can outlive the default timeout, and the websocket
		// upgrade must not go through the compressing writer; both stay
		// outside this group.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(middleware.Compress(5))

			r.Get("/status", s.handleStatus)

			r.Post("/buildings", s.handleCreateBuilding)
			r.Get("/buildings", s.handleListBuildings)
			r.Get("/buildings/{id}", s.handleGetBuilding)
			r.Delete("/buildings/{id}", s.handleDeleteBuilding)
			r.Get("/buildings/{id}/floors", s.handleListFloors)

			r.Post("/floors", s.handleCreateFloor)
			r.Get("/floors/{id}", s.handleGetFloor)
			r.Delete("/floors/{id}", s.handleDeleteFloor)
			r.Get("/floors/{id}/rooms", s.handleListRooms)
			r.Get("/floors/{id}/paths", s.handleListPaths)

			r.Post("/rooms", s.handleCreateRoom)
			r.Get("/rooms/search", s.handleSearchRooms)
			r.Get("/rooms/{id}", s.handleGetRoom)
			r.Delete("/rooms/{id}", s.handleDeleteRoom)

			r.Post("/paths", s.handleCreatePath)
			r.Get("/paths/{id}", s.handleGetPath)
			r.Delete("/paths/{id}", s.handleDeletePath)
			r.Put("/paths/{id}/anchors", s.handleReplaceAnchors)
			r.Get("/paths/{id}/segments", s.handleGetSegments)
			r.Get("/paths/{id}/instructions", s.handleGetInstructions)
		})

		r.Post("/paths/{id}/instructions", s.handleGenerateInstructions)
		r.Get("/paths/{id}/instructions/stream", s.handleStreamInstructions)
		r.Post("/floors/{id}/instructions", s.handleGenerateFloor)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
