package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store is durable whole-board persistence. Load never surfaces a corrupt or
// partial board: an absent or unparseable backing resource is replaced with
// the all-unclaimed default over the configured name set. Save replaces the
// whole mapping atomically. Callers serialize their own read-modify-write
// cycles; the store does no coordination of its own.
type Store interface {
	Load(ctx context.Context) (map[string]Quest, error)
	Save(ctx context.Context, quests map[string]Quest) error
}

// FileStore keeps the board as a single JSON document, written via a
// temporary file and rename so a crash mid-save never mixes old and new
// entries.
type FileStore struct {
	path  string
	names []string
}

func NewFileStore(path string, names []string) *FileStore {
	return &FileStore{path: path, names: names}
}

func (s *FileStore) Load(ctx context.Context) (map[string]Quest, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.reset(ctx, "store file missing")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quest store: %w", err)
	}

	var quests map[string]Quest
	if err := json.Unmarshal(raw, &quests); err != nil {
		slog.Warn("Quest store is corrupt, reinitializing",
			slog.String("type", "db"),
			slog.String("path", s.path),
			slog.Any("error", err))
		return s.reset(ctx, "store file corrupt")
	}
	return repairLoaded(quests, s.names), nil
}

func (s *FileStore) Save(_ context.Context, quests map[string]Quest) error {
	raw, err := json.MarshalIndent(quests, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode quest store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".quests-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace quest store: %w", err)
	}
	return nil
}

func (s *FileStore) reset(ctx context.Context, reason string) (map[string]Quest, error) {
	slog.Warn("Initializing default quest store",
		slog.String("type", "db"),
		slog.String("path", s.path),
		slog.String("reason", reason))
	quests := defaultQuests(s.names)
	if err := s.Save(ctx, quests); err != nil {
		return nil, err
	}
	return quests, nil
}

// repairLoaded normalizes every loaded entry and fills in configured quests
// the stored document does not know about yet. Entries for names outside the
// configured set are kept as loaded; startup validation decides their fate.
func repairLoaded(quests map[string]Quest, names []string) map[string]Quest {
	for name, q := range quests {
		quests[name] = q.normalize()
	}
	for _, name := range names {
		if _, ok := quests[name]; !ok {
			quests[name] = unclaimedQuest()
		}
	}
	return quests
}
