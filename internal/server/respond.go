package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tactilepath/wayfinder/internal/storage"
	"go.uber.org/zap"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondStorageError maps storage errors to 404 or 500.
func (s *Server) respondStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("storage error", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}
