// Package storage defines the persistence interface for floorplans and
// generated instruction sets.
package storage

import (
	"context"
	"errors"

	"github.com/tactilepath/wayfinder/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines floorplan and instruction persistence operations.
type Storage interface {
	// Building operations
	CreateBuilding(ctx context.Context, b *models.Building) error
	GetBuilding(ctx context.Context, id string) (*models.Building, error)
	DeleteBuilding(ctx context.Context, id string) error
	ListBuildings(ctx context.Context) ([]*models.Building, error)

	// Floor operations
	CreateFloor(ctx context.Context, f *models.Floor) error
	GetFloor(ctx context.Context, id string) (*models.Floor, error)
	DeleteFloor(ctx context.Context, id string) error
	ListFloorsByBuilding(ctx context.Context, buildingID string) ([]*models.Floor, error)

	// Room operations
	CreateRoom(ctx context.Context, r *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListRoomsByFloor(ctx context.Context, floorID string) ([]*models.Room, error)

	// Path operations
	CreatePath(ctx context.Context, p *models.Path) error
	GetPath(ctx context.Context, id string) (*models.Path, error)
	DeletePath(ctx context.Context, id string) error
	ListPathsByFloor(ctx context.Context, floorID string) ([]*models.Path, error)

	// Anchor operations. GetAnchors returns anchors ordered by index
	// ascending, satisfying the segmenter's ordering precondition.
	ReplaceAnchors(ctx context.Context, pathID string, anchors []*models.Anchor) error
	GetAnchors(ctx context.Context, pathID string) ([]*models.Anchor, error)

	// Instruction set operations
	UpsertInstructionSet(ctx context.Context, set *models.InstructionSet) error
	GetInstructionSet(ctx context.Context, pathID string) (*models.InstructionSet, error)

	// Stats
	CountRooms(ctx context.Context) (int64, error)
	CountPaths(ctx context.Context) (int64, error)
	CountInstructionSets(ctx context.Context) (int64, error)

	Close() error
}
