// Package roomsearch provides a Bleve index over room names for the editor's
// destination picker.
package roomsearch

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/tactilepath/wayfinder/internal/models"
)

// roomDoc is the shape indexed per room.
type roomDoc struct {
	Name       string `json:"name"`
	FloorID    string `json:"floor_id"`
	BuildingID string `json:"building_id"`
}

// Result is a single room search hit.
type Result struct {
	RoomID  string  `json:"room_id"`
	Name    string  `json:"name"`
	FloorID string  `json:"floor_id"`
	Score   float64 `json:"score"`
}

// Index indexes rooms by name for search.
type Index struct {
	index bleve.Index
}

// NewIndex creates or opens a Bleve room index at path. An existing index is
// reused so restarts do not force a full re-index; remove the directory to
// rebuild after a mapping change.
func NewIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open room index: %w", openErr)
		}
		return &Index{index: idx}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Standard analyzer: room names like "B-204" should match the exact
	// tokens users type, without stemming.
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", nameMapping)

	keywordMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("floor_id", keywordMapping)
	docMapping.AddFieldMappingsAt("building_id", keywordMapping)

	im.AddDocumentMapping("room", docMapping)
	im.DefaultType = "room"
	im.DefaultMapping = docMapping

	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create room index: %w", err)
	}
	return &Index{index: idx}, nil
}

// NewMemIndex creates an in-memory room index, used by tests and the import CLI.
func NewMemIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory room index: %w", err)
	}
	return &Index{index: idx}, nil
}

// Add indexes or re-indexes a room.
func (i *Index) Add(ctx context.Context, room *models.Room, buildingID string) error {
	return i.index.Index(room.ID, roomDoc{
		Name:       room.Name,
		FloorID:    room.FloorID,
		BuildingID: buildingID,
	})
}

// Delete removes a room from the index.
func (i *Index) Delete(ctx context.Context, roomID string) error {
	return i.index.Delete(roomID)
}

// Search runs a match query over room names and returns up to limit hits.
// When fuzzy is true, a fuzziness of 1 tolerates small typos. An optional
// buildingID restricts hits to one building.
func (i *Index) Search(ctx context.Context, queryText string, limit int, fuzzy bool, buildingID string) ([]*Result, error) {
	if limit <= 0 {
		limit = 10
	}
	match := bleve.NewMatchQuery(queryText)
	match.SetField("name")
	if fuzzy {
		match.SetFuzziness(1)
	}

	var q blevequery.Query = match
	if buildingID != "" {
		term := bleve.NewTermQuery(buildingID)
		term.SetField("building_id")
		q = bleve.NewConjunctionQuery(match, term)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"name", "floor_id"}
	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("room search failed: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &Result{RoomID: hit.ID, Score: hit.Score}
		if name, ok := hit.Fields["name"].(string); ok {
			r.Name = name
		}
		if floorID, ok := hit.Fields["floor_id"].(string); ok {
			r.FloorID = floorID
		}
		results = append(results, r)
	}
	return results, nil
}

// Close closes the underlying index.
func (i *Index) Close() error {
	return i.index.Close()
}
