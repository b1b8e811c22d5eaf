// Package importer ingests floorplan JSON documents dropped into watched
// directories: the file-upload side of the editor.
package importer

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tactilepath/wayfinder/internal/models"
	"github.com/tactilepath/wayfinder/internal/roomsearch"
	"github.com/tactilepath/wayfinder/internal/storage"
)

// floorplanDoc is the on-disk JSON shape of an uploaded floorplan.
type floorplanDoc struct {
	Building struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"building"`
	Floors []struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
		Rooms []struct {
			Name        string      `json:"name"`
			BoundingBox models.Rect `json:"bounding_box"`
		} `json:"rooms"`
		Paths []struct {
			FromRoom string `json:"from_room"`
			ToRoom   string `json:"to_room"`
			Anchors  []struct {
				Index int     `json:"index"`
				X     float64 `json:"x"`
				Y     float64 `json:"y"`
			} `json:"anchors"`
		} `json:"paths"`
	} `json:"floors"`
}

// Importer loads floorplan documents into storage and the room index.
type Importer struct {
	storage storage.Storage
	index   *roomsearch.Index
	logger  *zap.Logger
}

// New creates an importer.
func New(st storage.Storage, index *roomsearch.Index, logger *zap.Logger) *Importer {
	return &Importer{storage: st, index: index, logger: logger}
}

// BuildingIDForFile returns the stable building ID derived from the source
// file path, so re-dropping the same file updates instead of duplicating.
func BuildingIDForFile(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha1.Sum([]byte(abs))
	return "fp-" + hex.EncodeToString(sum[:8])
}

// ImportFile ingests one floorplan JSON file. Any previous import of the
// same file is replaced wholesale (the building and everything under it).
func (im *Importer) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read floorplan: %w", err)
	}
	var doc floorplanDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse floorplan %s: %w", path, err)
	}
	if doc.Building.Name == "" {
		return fmt.Errorf("floorplan %s has no building name", path)
	}

	buildingID := BuildingIDForFile(path)
	if err := im.removeBuilding(ctx, buildingID); err != nil {
		return err
	}

	building := &models.Building{ID: buildingID, Name: doc.Building.Name, Address: doc.Building.Address}
	if err := im.storage.CreateBuilding(ctx, building); err != nil {
		return fmt.Errorf("failed to create building: %w", err)
	}

	var roomCount, pathCount int
	for _, f := range doc.Floors {
		floor := &models.Floor{ID: uuid.NewString(), BuildingID: buildingID, Name: f.Name, Level: f.Level}
		if err := im.storage.CreateFloor(ctx, floor); err != nil {
			return fmt.Errorf("failed to create floor %q: %w", f.Name, err)
		}

		roomIDs := make(map[string]string, len(f.Rooms))
		for _, r := range f.Rooms {
			room := &models.Room{
				ID:          uuid.NewString(),
				FloorID:     floor.ID,
				Name:        r.Name,
				BoundingBox: r.BoundingBox,
			}
			if err := im.storage.CreateRoom(ctx, room); err != nil {
				return fmt.Errorf("failed to create room %q: %w", r.Name, err)
			}
			if err := im.index.Add(ctx, room, buildingID); err != nil {
				return fmt.Errorf("failed to index room %q: %w", r.Name, err)
			}
			roomIDs[r.Name] = room.ID
			roomCount++
		}

		for _, p := range f.Paths {
			fromID, ok := roomIDs[p.FromRoom]
			if !ok {
				return fmt.Errorf("path references unknown room %q on floor %q", p.FromRoom, f.Name)
			}
			toID, ok := roomIDs[p.ToRoom]
			if !ok {
				return fmt.Errorf("path references unknown room %q on floor %q", p.ToRoom, f.Name)
			}
			pathRec := &models.Path{ID: uuid.NewString(), FloorID: floor.ID, FromRoomID: fromID, ToRoomID: toID}
			if err := im.storage.CreatePath(ctx, pathRec); err != nil {
				return fmt.Errorf("failed to create path %q->%q: %w", p.FromRoom, p.ToRoom, err)
			}
			anchors := make([]*models.Anchor, 0, len(p.Anchors))
			for _, a := range p.Anchors {
				anchors = append(anchors, &models.Anchor{PathID: pathRec.ID, Index: a.Index, X: a.X, Y: a.Y})
			}
			if err := im.storage.ReplaceAnchors(ctx, pathRec.ID, anchors); err != nil {
				return fmt.Errorf("failed to save anchors for %q->%q: %w", p.FromRoom, p.ToRoom, err)
			}
			pathCount++
		}
	}

	im.logger.Info("floorplan imported",
		zap.String("file", path),
		zap.String("building_id", buildingID),
		zap.Int("floors", len(doc.Floors)),
		zap.Int("rooms", roomCount),
		zap.Int("paths", pathCount),
	)
	return nil
}

// RemoveFile removes everything imported from the given file.
func (im *Importer) RemoveFile(ctx context.Context, path string) error {
	return im.removeBuilding(ctx, BuildingIDForFile(path))
}

// removeBuilding drops a building, its records, and its room index entries.
func (im *Importer) removeBuilding(ctx context.Context, buildingID string) error {
	floors, err := im.storage.ListFloorsByBuilding(ctx, buildingID)
	if err != nil {
		return fmt.Errorf("failed to list floors: %w", err)
	}
	for _, f := range floors {
		rooms, err := im.storage.ListRoomsByFloor(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}
		for _, r := range rooms {
			if err := im.index.Delete(ctx, r.ID); err != nil {
				im.logger.Warn("failed to unindex room", zap.String("room_id", r.ID), zap.Error(err))
			}
		}
	}
	if err := im.storage.DeleteBuilding(ctx, buildingID); err != nil {
		return fmt.Errorf("failed to delete building: %w", err)
	}
	return nil
}
