// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tactilepath/wayfinder/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// Pragmas go in the DSN so every pooled connection gets them; a plain
	// db.Exec would only configure whichever connection it happened to run
	// on, and cascades would silently stop firing on the others.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS buildings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS floors (
		id TEXT PRIMARY KEY,
		building_id TEXT NOT NULL,
		name TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (building_id) REFERENCES buildings(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_floors_building_id ON floors(building_id);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		floor_id TEXT NOT NULL,
		name TEXT NOT NULL,
		bbox_x REAL NOT NULL,
		bbox_y REAL NOT NULL,
		bbox_width REAL NOT NULL,
		bbox_height REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (floor_id) REFERENCES floors(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_floor_id ON rooms(floor_id);

	CREATE TABLE IF NOT EXISTS paths (
		id TEXT PRIMARY KEY,
		floor_id TEXT NOT NULL,
		from_room_id TEXT NOT NULL,
		to_room_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (floor_id) REFERENCES floors(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_paths_floor_id ON paths(floor_id);

	CREATE TABLE IF NOT EXISTS anchors (
		path_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		PRIMARY KEY (path_id, idx),
		FOREIGN KEY (path_id) REFERENCES paths(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS instruction_sets (
		path_id TEXT PRIMARY KEY,
		descriptive TEXT NOT NULL,
		concise TEXT NOT NULL,
		generated_at TIMESTAMP NOT NULL,
		FOREIGN KEY (path_id) REFERENCES paths(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateBuilding inserts a building.
func (s *SQLiteStorage) CreateBuilding(ctx context.Context, b *models.Building) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO buildings (id, name, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Address, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetBuilding returns a building by ID.
func (s *SQLiteStorage) GetBuilding(ctx context.Context, id string) (*models.Building, error) {
	var b models.Building
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, created_at, updated_at FROM buildings WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("building %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBuilding deletes a building and, via cascade, its floors, rooms,
// paths, anchors, and instruction sets.
func (s *SQLiteStorage) DeleteBuilding(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = ?`, id)
	return err
}

// ListBuildings returns all buildings ordered by name.
func (s *SQLiteStorage) ListBuildings(ctx context.Context) ([]*models.Building, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, created_at, updated_at FROM buildings ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []*models.Building
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		buildings = append(buildings, &b)
	}
	return buildings, rows.Err()
}

// CreateFloor inserts a floor.
func (s *SQLiteStorage) CreateFloor(ctx context.Context, f *models.Floor) error {
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO floors (id, building_id, name, level, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.BuildingID, f.Name, f.Level, f.CreatedAt, f.UpdatedAt,
	)
	return err
}

// GetFloor returns a floor by ID.
func (s *SQLiteStorage) GetFloor(ctx context.Context, id string) (*models.Floor, error) {
	var f models.Floor
	err := s.db.QueryRowContext(ctx,
		`SELECT id, building_id, name, level, created_at, updated_at FROM floors WHERE id = ?`, id,
	).Scan(&f.ID, &f.BuildingID, &f.Name, &f.Level, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("floor %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFloor deletes a floor by ID.
func (s *SQLiteStorage) DeleteFloor(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM floors WHERE id = ?`, id)
	return err
}

// ListFloorsByBuilding returns a building's floors ordered by level.
func (s *SQLiteStorage) ListFloorsByBuilding(ctx context.Context, buildingID string) ([]*models.Floor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, building_id, name, level, created_at, updated_at FROM floors WHERE building_id = ? ORDER BY level`,
		buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var floors []*models.Floor
	for rows.Next() {
		var f models.Floor
		if err := rows.Scan(&f.ID, &f.BuildingID, &f.Name, &f.Level, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		floors = append(floors, &f)
	}
	return floors, rows.Err()
}

// CreateRoom inserts a room after validating its bounding box.
func (s *SQLiteStorage) CreateRoom(ctx context.Context, r *models.Room) error {
	if err := r.BoundingBox.Validate(); err != nil {
		return err
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, floor_id, name, bbox_x, bbox_y, bbox_width, bbox_height, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.FloorID, r.Name,
		r.BoundingBox.X, r.BoundingBox.Y, r.BoundingBox.Width, r.BoundingBox.Height,
		r.CreatedAt, r.UpdatedAt,
	)
	return err
}

// GetRoom returns a room by ID.
func (s *SQLiteStorage) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var r models.Room
	err := s.db.QueryRowContext(ctx,
		`SELECT id, floor_id, name, bbox_x, bbox_y, bbox_width, bbox_height, created_at, updated_at
		 FROM rooms WHERE id = ?`, id,
	).Scan(&r.ID, &r.FloorID, &r.Name,
		&r.BoundingBox.X, &r.BoundingBox.Y, &r.BoundingBox.Width, &r.BoundingBox.Height,
		&r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRoom deletes a room by ID.
func (s *SQLiteStorage) DeleteRoom(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	return err
}

// ListRoomsByFloor returns a floor's rooms in insertion order. The order is
// stable so nearby-room lists come out in a reproducible encounter order.
func (s *SQLiteStorage) ListRoomsByFloor(ctx context.Context, floorID string) ([]*models.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, floor_id, name, bbox_x, bbox_y, bbox_width, bbox_height, created_at, updated_at
		 FROM rooms WHERE floor_id = ? ORDER BY rowid`, floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.FloorID, &r.Name,
			&r.BoundingBox.X, &r.BoundingBox.Y, &r.BoundingBox.Width, &r.BoundingBox.Height,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, &r)
	}
	return rooms, rows.Err()
}

// CreatePath inserts a path.
func (s *SQLiteStorage) CreatePath(ctx context.Context, p *models.Path) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO paths (id, floor_id, from_room_id, to_room_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.FloorID, p.FromRoomID, p.ToRoomID, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetPath returns a path by ID.
func (s *SQLiteStorage) GetPath(ctx context.Context, id string) (*models.Path, error) {
	var p models.Path
	err := s.db.QueryRowContext(ctx,
		`SELECT id, floor_id, from_room_id, to_room_id, created_at, updated_at FROM paths WHERE id = ?`, id,
	).Scan(&p.ID, &p.FloorID, &p.FromRoomID, &p.ToRoomID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("path %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePath deletes a path, its anchors, and its instruction set.
func (s *SQLiteStorage) DeletePath(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM paths WHERE id = ?`, id)
	return err
}

// ListPathsByFloor returns a floor's paths.
func (s *SQLiteStorage) ListPathsByFloor(ctx context.Context, floorID string) ([]*models.Path, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, floor_id, from_room_id, to_room_id, created_at, updated_at
		 FROM paths WHERE floor_id = ? ORDER BY rowid`, floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []*models.Path
	for rows.Next() {
		var p models.Path
		if err := rows.Scan(&p.ID, &p.FloorID, &p.FromRoomID, &p.ToRoomID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		paths = append(paths, &p)
	}
	return paths, rows.Err()
}

// ReplaceAnchors replaces a path's polyline atomically. The editor saves the
// whole anchor list on every change.
func (s *SQLiteStorage) ReplaceAnchors(ctx context.Context, pathID string, anchors []*models.Anchor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM anchors WHERE path_id = ?`, pathID); err != nil {
		return fmt.Errorf("failed to clear anchors: %w", err)
	}
	for _, a := range anchors {
		if a == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO anchors (path_id, idx, x, y) VALUES (?, ?, ?, ?)`,
			pathID, a.Index, a.X, a.Y); err != nil {
			return fmt.Errorf("failed to insert anchor %d: %w", a.Index, err)
		}
	}
	return tx.Commit()
}

// GetAnchors returns a path's anchors ordered by index ascending.
func (s *SQLiteStorage) GetAnchors(ctx context.Context, pathID string) ([]*models.Anchor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path_id, idx, x, y FROM anchors WHERE path_id = ? ORDER BY idx ASC`, pathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var anchors []*models.Anchor
	for rows.Next() {
		var a models.Anchor
		if err := rows.Scan(&a.PathID, &a.Index, &a.X, &a.Y); err != nil {
			return nil, err
		}
		anchors = append(anchors, &a)
	}
	return anchors, rows.Err()
}

// UpsertInstructionSet inserts or replaces the instruction set for a path.
// Last writer wins: generation is user-triggered and two overlapping cycles
// for the same path both produce a complete set, so no version check is done.
func (s *SQLiteStorage) UpsertInstructionSet(ctx context.Context, set *models.InstructionSet) error {
	descriptive, err := json.Marshal(set.DescriptiveInstructions)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptive instructions: %w", err)
	}
	concise, err := json.Marshal(set.ConciseInstructions)
	if err != nil {
		return fmt.Errorf("failed to marshal concise instructions: %w", err)
	}
	if set.GeneratedAt.IsZero() {
		set.GeneratedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO instruction_sets (path_id, descriptive, concise, generated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(path_id) DO UPDATE SET
		   descriptive = excluded.descriptive,
		   concise = excluded.concise,
		   generated_at = excluded.generated_at`,
		set.PathID, string(descriptive), string(concise), set.GeneratedAt,
	)
	return err
}

// GetInstructionSet returns the instruction set for a path.
func (s *SQLiteStorage) GetInstructionSet(ctx context.Context, pathID string) (*models.InstructionSet, error) {
	var set models.InstructionSet
	var descriptive, concise string
	err := s.db.QueryRowContext(ctx,
		`SELECT path_id, descriptive, concise, generated_at FROM instruction_sets WHERE path_id = ?`, pathID,
	).Scan(&set.PathID, &descriptive, &concise, &set.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("instructions for path %s: %w", pathID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(descriptive), &set.DescriptiveInstructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal descriptive instructions: %w", err)
	}
	if err := json.Unmarshal([]byte(concise), &set.ConciseInstructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal concise instructions: %w", err)
	}
	return &set, nil
}

// CountRooms returns the number of rooms.
func (s *SQLiteStorage) CountRooms(ctx context.Context) (int64, error) {
	return s.count(ctx, "rooms")
}

// CountPaths returns the number of paths.
func (s *SQLiteStorage) CountPaths(ctx context.Context) (int64, error) {
	return s.count(ctx, "paths")
}

// CountInstructionSets returns the number of stored instruction sets.
func (s *SQLiteStorage) CountInstructionSets(ctx context.Context) (int64, error) {
	return s.count(ctx, "instruction_sets")
}

func (s *SQLiteStorage) count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
