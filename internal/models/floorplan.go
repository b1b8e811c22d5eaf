// Package models defines core data structures for floorplans, paths, and navigation instructions.
package models

import (
	"fmt"
	"time"
)

// Point is a 2D coordinate in floorplan pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box in floorplan pixel space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Validate checks that the rectangle has non-negative dimensions.
func (r Rect) Validate() error {
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("bounding box dimensions must be non-negative, got %gx%g", r.Width, r.Height)
	}
	return nil
}

// Building represents a building with one or more floors.
type Building struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Floor represents one floor of a building.
type Floor struct {
	ID         string    `json:"id" db:"id"`
	BuildingID string    `json:"building_id" db:"building_id"`
	Name       string    `json:"name" db:"name"`
	Level      int       `json:"level" db:"level"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Room represents a room drawn on a floorplan. Only the bounding box is used
// for proximity lookup during segmentation.
type Room struct {
	ID          string    `json:"id" db:"id"`
	FloorID     string    `json:"floor_id" db:"floor_id"`
	Name        string    `json:"name" db:"name"`
	BoundingBox Rect      `json:"bounding_box"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Path represents a manually authored navigation path between two rooms.
type Path struct {
	ID         string    `json:"id" db:"id"`
	FloorID    string    `json:"floor_id" db:"floor_id"`
	FromRoomID string    `json:"from_room_id" db:"from_room_id"`
	ToRoomID   string    `json:"to_room_id" db:"to_room_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Anchor is a persisted waypoint on a path. Index defines traversal order;
// anchors for a path must be supplied to the segmenter sorted by Index ascending.
type Anchor struct {
	PathID string  `json:"path_id" db:"path_id"`
	Index  int     `json:"index" db:"idx"`
	X      float64 `json:"x" db:"x"`
	Y      float64 `json:"y" db:"y"`
}

// Point returns the anchor's coordinates as a Point.
func (a Anchor) Point() Point {
	return Point{X: a.X, Y: a.Y}
}
