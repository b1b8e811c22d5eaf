package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tactilepath/wayfinder/internal/roomsearch"
	"github.com/tactilepath/wayfinder/internal/storage"
)

const samplePlan = `{
  "building": {"name": "Science Hall", "address": "12 Campus Way"},
  "floors": [
    {
      "name": "Ground",
      "level": 0,
      "rooms": [
        {"name": "Reception", "bounding_box": {"x": 0, "y": 0, "width": 60, "height": 40}},
        {"name": "Chemistry Lab", "bounding_box": {"x": 200, "y": 0, "width": 80, "height": 60}}
      ],
      "paths": [
        {
          "from_room": "Reception",
          "to_room": "Chemistry Lab",
          "anchors": [
            {"index": 0, "x": 30, "y": 20},
            {"index": 1, "x": 240, "y": 20}
          ]
        }
      ]
    }
  ]
}`

func newTestImporter(t *testing.T) (*Importer, *storage.SQLiteStorage, *roomsearch.Index) {
	t.Helper()
	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "import.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	idx, err := roomsearch.NewIndex(filepath.Join(t.TempDir(), "rooms.bleve"))
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return New(st, idx, zap.NewNop()), st, idx
}

func writePlan(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return path
}

func TestImportFile(t *testing.T) {
	im, st, idx := newTestImporter(t)
	ctx := context.Background()
	path := writePlan(t, t.TempDir(), "science-hall.json", samplePlan)

	if err := im.ImportFile(ctx, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	buildingID := BuildingIDForFile(path)
	b, err := st.GetBuilding(ctx, buildingID)
	if err != nil {
		t.Fatalf("GetBuilding: %v", err)
	}
	if b.Name != "Science Hall" {
		t.Errorf("building name = %q", b.Name)
	}

	floors, err := st.ListFloorsByBuilding(ctx, buildingID)
	if err != nil || len(floors) != 1 {
		t.Fatalf("floors = %v, %v", floors, err)
	}
	rooms, err := st.ListRoomsByFloor(ctx, floors[0].ID)
	if err != nil || len(rooms) != 2 {
		t.Fatalf("rooms = %v, %v", rooms, err)
	}
	paths, err := st.ListPathsByFloor(ctx, floors[0].ID)
	if err != nil || len(paths) != 1 {
		t.Fatalf("paths = %v, %v", paths, err)
	}
	anchors, err := st.GetAnchors(ctx, paths[0].ID)
	if err != nil || len(anchors) != 2 {
		t.Fatalf("anchors = %v, %v", anchors, err)
	}

	// Rooms are searchable right after import.
	hits, err := idx.Search(ctx, "chemistry", 10, false, "")
	if err != nil || len(hits) != 1 {
		t.Errorf("search after import = %v, %v", hits, err)
	}
}

func TestImportFile_ReimportReplaces(t *testing.T) {
	im, st, _ := newTestImporter(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writePlan(t, dir, "plan.json", samplePlan)

	if err := im.ImportFile(ctx, path); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if err := im.ImportFile(ctx, path); err != nil {
		t.Fatalf("second import: %v", err)
	}

	buildings, err := st.ListBuildings(ctx)
	if err != nil {
		t.Fatalf("ListBuildings: %v", err)
	}
	if len(buildings) != 1 {
		t.Errorf("re-import duplicated the building: %d buildings", len(buildings))
	}
	if n, _ := st.CountRooms(ctx); n != 2 {
		t.Errorf("re-import duplicated rooms: %d", n)
	}
}

func TestImportFile_UnknownRoomReference(t *testing.T) {
	im, _, _ := newTestImporter(t)
	bad := `{"building": {"name": "X"}, "floors": [{"name": "G", "paths": [{"from_room": "Nowhere", "to_room": "AlsoNowhere"}]}]}`
	path := writePlan(t, t.TempDir(), "bad.json", bad)
	if err := im.ImportFile(context.Background(), path); err == nil {
		t.Error("expected error for path referencing unknown room")
	}
}

func TestImportFile_MalformedJSON(t *testing.T) {
	im, _, _ := newTestImporter(t)
	path := writePlan(t, t.TempDir(), "broken.json", "{not json")
	if err := im.ImportFile(context.Background(), path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestRemoveFile(t *testing.T) {
	im, st, idx := newTestImporter(t)
	ctx := context.Background()
	path := writePlan(t, t.TempDir(), "plan.json", samplePlan)

	if err := im.ImportFile(ctx, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if err := im.RemoveFile(ctx, path); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if buildings, _ := st.ListBuildings(ctx); len(buildings) != 0 {
		t.Errorf("building survived removal: %v", buildings)
	}
	if hits, _ := idx.Search(ctx, "chemistry", 10, false, ""); len(hits) != 0 {
		t.Errorf("index entries survived removal: %v", hits)
	}
}

func TestWatcher_ImportsDroppedFile(t *testing.T) {
	im, st, _ := newTestImporter(t)
	dir := t.TempDir()

	w := NewWatcher(im, []string{dir}, []string{".json"}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writePlan(t, dir, "dropped.json", samplePlan)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if buildings, _ := st.ListBuildings(context.Background()); len(buildings) == 1 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("dropped file was not imported before deadline")
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	im, st, _ := newTestImporter(t)
	dir := t.TempDir()

	w := NewWatcher(im, []string{dir}, []string{".json"}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writePlan(t, dir, "notes.txt", samplePlan)
	time.Sleep(2 * defaultDebounce)
	if buildings, _ := st.ListBuildings(context.Background()); len(buildings) != 0 {
		t.Errorf("non-matching file was imported: %v", buildings)
	}
}

func TestSyncExistingFiles(t *testing.T) {
	im, st, _ := newTestImporter(t)
	dir := t.TempDir()
	writePlan(t, dir, "pre-existing.json", samplePlan)

	w := NewWatcher(im, []string{dir}, []string{".json"}, zap.NewNop())
	w.SyncExistingFiles(context.Background())

	if buildings, _ := st.ListBuildings(context.Background()); len(buildings) != 1 {
		t.Errorf("pre-existing file not synced: %v", buildings)
	}
}
