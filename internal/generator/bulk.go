package generator

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PathError records one path's generation failure during a bulk run.
type PathError struct {
	PathID string `json:"path_id"`
	Err    string `json:"error"`
}

// FloorResult summarizes a bulk generation run over a floor.
type FloorResult struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []PathError `json:"errors,omitempty"`
}

// GenerateFloor generates instructions for every path on a floor. Paths are
// processed in fixed-size batches: batches run sequentially, paths within a
// batch run concurrently with no ordering guarantee, and one path's failure
// never aborts its siblings. All failures are collected into the result.
// Cancelling ctx stops before the next batch; paths already in flight finish
// or fail on their own cancelled streams.
func (g *Generator) GenerateFloor(ctx context.Context, floorID string) (*FloorResult, error) {
	paths, err := g.storage.ListPathsByFloor(ctx, floorID)
	if err != nil {
		return nil, err
	}

	result := &FloorResult{Total: len(paths)}
	var mu sync.Mutex

	for start := 0; start < len(paths); start += g.batchSize {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		end := start + g.batchSize
		if end > len(paths) {
			end = len(paths)
		}

		var wg sync.WaitGroup
		for _, p := range paths[start:end] {
			wg.Add(1)
			go func(pathID string) {
				defer wg.Done()
				_, err := g.GeneratePath(ctx, pathID, nil)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					result.Errors = append(result.Errors, PathError{PathID: pathID, Err: err.Error()})
					g.logger.Warn("bulk generation: path failed", zap.String("path_id", pathID), zap.Error(err))
					return
				}
				result.Succeeded++
			}(p.ID)
		}
		wg.Wait()
	}

	g.logger.Info("bulk generation finished",
		zap.String("floor_id", floorID),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
