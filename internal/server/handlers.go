package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tactilepath/wayfinder/internal/directions"
	"github.com/tactilepath/wayfinder/internal/geometry"
	"github.com/tactilepath/wayfinder/internal/models"
	"github.com/tactilepath/wayfinder/internal/steps"
	"github.com/tactilepath/wayfinder/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomCount, err := s.storage.CountRooms(ctx)
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	pathCount, err := s.storage.CountPaths(ctx)
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	setCount, err := s.storage.CountInstructionSets(ctx)
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Storage.RoomIndexPath)
	if err != nil {
		s.logger.Warn("disk usage lookup failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"rooms":            roomCount,
		"paths":            pathCount,
		"instruction_sets": setCount,
		"disk_bytes":       diskBytes,
	})
}

func (s *Server) handleCreateBuilding(w http.ResponseWriter, r *http.Request) {
	var b models.Building
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if b.Name == "" {
		s.respondError(w, http.StatusBadRequest, "building name is required")
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := s.storage.CreateBuilding(r.Context(), &b); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, &b)
}

func (s *Server) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := s.storage.ListBuildings(r.Context())
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, buildings)
}

func (s *Server) handleGetBuilding(w http.ResponseWriter, r *http.Request) {
	b, err := s.storage.GetBuilding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBuilding(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteBuilding(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := s.storage.ListFloorsByBuilding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, floors)
}

func (s *Server) handleCreateFloor(w http.ResponseWriter, r *http.Request) {
	var f models.Floor
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if f.BuildingID == "" {
		s.respondError(w, http.StatusBadRequest, "building_id is required")
		return
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if err := s.storage.CreateFloor(r.Context(), &f); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, &f)
}

func (s *Server) handleGetFloor(w http.ResponseWriter, r *http.Request) {
	f, err := s.storage.GetFloor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFloor(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteFloor(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.storage.ListRoomsByFloor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var room models.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if room.FloorID == "" || room.Name == "" {
		s.respondError(w, http.StatusBadRequest, "floor_id and name are required")
		return
	}
	if err := room.BoundingBox.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if err := s.storage.CreateRoom(r.Context(), &room); err != nil {
		s.respondStorageError(w, err)
		return
	}
	if floor, err := s.storage.GetFloor(r.Context(), room.FloorID); err == nil {
		if err := s.rooms.Add(r.Context(), &room, floor.BuildingID); err != nil {
			s.logger.Warn("failed to index room", zap.String("room_id", room.ID), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusCreated, &room)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.storage.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.storage.DeleteRoom(r.Context(), id); err != nil {
		s.respondStorageError(w, err)
		return
	}
	if err := s.rooms.Delete(r.Context(), id); err != nil {
		s.logger.Warn("failed to unindex room", zap.String("room_id", id), zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSearchRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	fuzzy := r.URL.Query().Get("fuzzy") == "true"
	buildingID := r.URL.Query().Get("building_id")

	results, err := s.rooms.Search(r.Context(), q, limit, fuzzy, buildingID)
	if err != nil {
		s.logger.Error("room search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := s.storage.ListPathsByFloor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, paths)
}

func (s *Server) handleCreatePath(w http.ResponseWriter, r *http.Request) {
	var p models.Path
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.FloorID == "" || p.FromRoomID == "" || p.ToRoomID == "" {
		s.respondError(w, http.StatusBadRequest, "floor_id, from_room_id and to_room_id are required")
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.storage.CreatePath(r.Context(), &p); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, &p)
}

func (s *Server) handleGetPath(w http.ResponseWriter, r *http.Request) {
	p, err := s.storage.GetPath(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePath(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeletePath(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleReplaceAnchors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetPath(r.Context(), id); err != nil {
		s.respondStorageError(w, err)
		return
	}
	var anchors []*models.Anchor
	if err := json.NewDecoder(r.Body).Decode(&anchors); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, a := range anchors {
		if a != nil {
			a.PathID = id
		}
	}
	if err := s.storage.ReplaceAnchors(r.Context(), id, anchors); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "saved", "anchors": len(anchors)})
}

// handleGetSegments derives the relativized segments for a path without
// calling the generation service, for canvas preview.
func (s *Server) handleGetSegments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	path, err := s.storage.GetPath(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	anchors, err := s.storage.GetAnchors(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	rooms, err := s.storage.ListRoomsByFloor(r.Context(), path.FloorID)
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	segments := directions.Relativize(geometry.Segment(anchors, rooms))
	s.respondJSON(w, http.StatusOK, segments)
}

// handleGetInstructions returns the stored instruction set with step counts
// adjusted for the caller's stride preference. Stored text is never changed.
func (s *Server) handleGetInstructions(w http.ResponseWriter, r *http.Request) {
	size, err := models.ParseStepSize(r.URL.Query().Get("step_size"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	set, err := s.storage.GetInstructionSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"path_id":                  set.PathID,
		"step_size":                size,
		"descriptive_instructions": steps.AdjustAll(set.DescriptiveInstructions, size),
		"concise_instructions":     steps.AdjustAll(set.ConciseInstructions, size),
		"generated_at":             set.GeneratedAt,
	})
}

func (s *Server) handleGenerateInstructions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	set, err := s.generator.GeneratePath(r.Context(), id, nil)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondStorageError(w, err)
			return
		}
		s.logger.Error("generation failed", zap.String("path_id", id), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, set)
}

func (s *Server) handleGenerateFloor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetFloor(r.Context(), id); err != nil {
		s.respondStorageError(w, err)
		return
	}
	result, err := s.generator.GenerateFloor(r.Context(), id)
	if err != nil {
		s.logger.Error("bulk generation failed", zap.String("floor_id", id), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}
