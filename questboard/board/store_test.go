package board

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func tempStore(t *testing.T, names ...string) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quests.json")
	return NewFileStore(path, names), path
}

func TestFileStore_LoadInitializesMissingFile(t *testing.T) {
	store, path := tempStore(t, "sweet1", "wanted")

	quests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := defaultQuests([]string{"sweet1", "wanted"})
	if !reflect.DeepEqual(quests, want) {
		t.Errorf("Load() = %+v, want %+v", quests, want)
	}

	// The synthesized default must have been persisted.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default store was not written: %v", err)
	}
	var persisted map[string]Quest
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("persisted store is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(persisted, want) {
		t.Errorf("persisted store = %+v, want %+v", persisted, want)
	}
}

func TestFileStore_LoadRepairsCorruptFile(t *testing.T) {
	store, path := tempStore(t, "sweet1")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	quests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(quests, defaultQuests([]string{"sweet1"})) {
		t.Errorf("Load() after corruption = %+v", quests)
	}

	// A second load must see the repaired file, not the corruption.
	again, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if !reflect.DeepEqual(again, quests) {
		t.Errorf("repaired store did not persist: %+v", again)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store, _ := tempStore(t, "sweet1", "wanted", "mines")

	state := map[string]Quest{
		"sweet1": {Status: StatusPending, ClaimerID: "42", ClaimerName: "hunter"},
		"wanted": {Status: StatusCompleted, ClaimerID: "7", ClaimerName: "other"},
		"mines":  {Status: StatusCompletedLegacy},
	}
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, state) {
		t.Errorf("round trip = %+v, want %+v", loaded, state)
	}

	// save(load()) is a no-op on a well-formed store.
	if err := store.Save(context.Background(), loaded); err != nil {
		t.Fatalf("Save(Load()) error = %v", err)
	}
	again, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(again, state) {
		t.Errorf("save(load()) changed the store: %+v", again)
	}
}

func TestFileStore_LoadNormalizesEntries(t *testing.T) {
	store, path := tempStore(t, "sweet1", "wanted", "mines")

	// Hand-written store: one entry with no status, one claimed entry with
	// no claimer, one unknown extra field, and a missing configured quest.
	raw := `{
		"sweet1": {"claimer_id": null, "claimer_name": null},
		"wanted": {"status": "pending"},
		"mines":  {"status": "completed_legacy", "note": "pre-bot data"}
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	quests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]Quest{
		"sweet1": unclaimedQuest(),
		"wanted": unclaimedQuest(),
		"mines":  {Status: StatusCompletedLegacy},
	}
	if !reflect.DeepEqual(quests, want) {
		t.Errorf("Load() = %+v, want %+v", quests, want)
	}
}

func TestFileStore_LoadKeepsUnconfiguredQuests(t *testing.T) {
	store, path := tempStore(t, "sweet1")

	raw := `{
		"sweet1": {"status": "unclaimed"},
		"ghost":  {"status": "completed", "claimer_id": "1", "claimer_name": "old"}
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	quests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// Unconfigured entries are not dropped here; startup validation decides.
	if _, ok := quests["ghost"]; !ok {
		t.Error("Load() silently dropped an unconfigured quest")
	}
}

func TestFileStore_SaveIsAtomic(t *testing.T) {
	store, path := tempStore(t, "sweet1")

	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := store.Save(context.Background(), map[string]Quest{
		"sweet1": {Status: StatusPending, ClaimerID: "42", ClaimerName: "hunter"},
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// No temp files may survive a completed save.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.Name() != filepath.Base(path) {
			t.Errorf("leftover file after save: %s", entry.Name())
		}
	}
}
