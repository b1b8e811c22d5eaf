// Package generator orchestrates the geometry-to-instructions pipeline:
// load a path's anchors and rooms, derive relativized segments, prompt the
// generation service, parse the stream incrementally, and persist the result.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tactilepath/wayfinder/internal/directions"
	"github.com/tactilepath/wayfinder/internal/genai"
	"github.com/tactilepath/wayfinder/internal/geometry"
	"github.com/tactilepath/wayfinder/internal/models"
	"github.com/tactilepath/wayfinder/internal/prompt"
	"github.com/tactilepath/wayfinder/internal/storage"
	"github.com/tactilepath/wayfinder/internal/stream"
)

const defaultBatchSize = 10

// ProgressFunc receives the parse state after each stream chunk, for
// incremental rendering.
type ProgressFunc func(stream.Result)

// Generator generates and persists instruction sets for paths.
type Generator struct {
	storage   storage.Storage
	streamer  genai.Streamer
	logger    *zap.Logger
	batchSize int
}

// Option configures a Generator.
type Option func(*Generator)

// WithBatchSize sets how many paths are generated concurrently during bulk
// generation. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(g *Generator) {
		if n >= 1 {
			g.batchSize = n
		}
	}
}

// New creates a generator with the given dependencies.
func New(st storage.Storage, streamer genai.Streamer, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		storage:   st,
		streamer:  streamer,
		logger:    logger,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePath runs the full pipeline for one path and persists the
// resulting instruction set. onProgress, if non-nil, is called with the
// parse state after every chunk. Nothing is persisted on failure or when the
// completed stream yields zero descriptive steps, so a previously stored set
// survives a failed regeneration.
func (g *Generator) GeneratePath(ctx context.Context, pathID string, onProgress ProgressFunc) (*models.InstructionSet, error) {
	path, err := g.storage.GetPath(ctx, pathID)
	if err != nil {
		return nil, fmt.Errorf("failed to load path: %w", err)
	}
	anchors, err := g.storage.GetAnchors(ctx, pathID)
	if err != nil {
		return nil, fmt.Errorf("failed to load anchors: %w", err)
	}
	rooms, err := g.storage.ListRoomsByFloor(ctx, path.FloorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	segments := directions.Relativize(geometry.Segment(anchors, rooms))
	if len(segments) == 0 {
		return nil, fmt.Errorf("path %s has fewer than two anchors, nothing to generate", pathID)
	}

	promptText := prompt.Build(g.roomName(ctx, path.FromRoomID), g.roomName(ctx, path.ToRoomID), segments)

	var buf strings.Builder
	err = g.streamer.Stream(ctx, promptText, func(text string) error {
		buf.WriteString(text)
		if onProgress != nil {
			onProgress(stream.Parse(buf.String()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generation stream failed: %w", err)
	}

	final := stream.Parse(buf.String())
	if len(final.Steps) == 0 {
		return nil, fmt.Errorf("generation for path %s produced no instructions", pathID)
	}

	concise := final.ConciseInstructions
	if len(concise) == 0 {
		// The model omitted the concise block; fall back to the
		// deterministic per-segment lines.
		concise = prompt.ConciseLines(segments)
	}

	set := &models.InstructionSet{
		PathID:                  pathID,
		DescriptiveInstructions: final.Steps,
		ConciseInstructions:     concise,
		GeneratedAt:             time.Now(),
	}
	if err := g.storage.UpsertInstructionSet(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to save instructions: %w", err)
	}

	g.logger.Info("instructions generated",
		zap.String("path_id", pathID),
		zap.Int("descriptive", len(set.DescriptiveInstructions)),
		zap.Int("concise", len(set.ConciseInstructions)),
	)
	return set, nil
}

// roomName resolves a room ID to its display name, falling back to the ID
// when the room is missing (the prompt degrades, generation still works).
func (g *Generator) roomName(ctx context.Context, roomID string) string {
	room, err := g.storage.GetRoom(ctx, roomID)
	if err != nil {
		return roomID
	}
	return room.Name
}
