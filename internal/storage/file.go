package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wildlight/questline/pkg/story"
)

// FileAchievementStore implements achieve.Store on a local JSON file,
// the durable-local-storage analogue for single-player hosts like the
// console. The whole list is rewritten on every save.
type FileAchievementStore struct {
	path string
}

// NewFileAchievementStore stores the list at path. Parent directories
// are created on first save.
func NewFileAchievementStore(path string) *FileAchievementStore {
	return &FileAchievementStore{path: path}
}

func (s *FileAchievementStore) Load() ([]story.Achievement, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read achievements file: %w", err)
	}
	var env achievementsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse achievements file %s: %w", s.path, err)
	}
	if env.Version != achievementsVersion {
		return nil, fmt.Errorf("unsupported achievements version %d in %s", env.Version, s.path)
	}
	return env.Achievements, nil
}

func (s *FileAchievementStore) Save(list []story.Achievement) error {
	data, err := json.MarshalIndent(achievementsEnvelope{
		Version:      achievementsVersion,
		Achievements: list,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal achievements: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create achievements dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write achievements file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace achievements file: %w", err)
	}
	return nil
}
