// Package loader reads story content packs: YAML files declaring quest
// and dialogue templates plus achievement seeds.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wildlight/questline/pkg/achieve"
	"github.com/wildlight/questline/pkg/engine"
	"github.com/wildlight/questline/pkg/story"
)

// Pack is one parsed content pack.
type Pack struct {
	Name         string              `yaml:"name"`
	Quests       []story.Quest       `yaml:"quests,omitempty"`
	Dialogues    []story.Dialogue    `yaml:"dialogues,omitempty"`
	Achievements []story.Achievement `yaml:"achievements,omitempty"`
}

// Load parses and validates a single pack file.
func Load(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content pack %s: %w", path, err)
	}
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse content pack %s: %w", path, err)
	}
	if pack.Name == "" {
		pack.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := pack.Validate(); err != nil {
		return nil, fmt.Errorf("content pack %s: %w", path, err)
	}
	return &pack, nil
}

// LoadDir parses every .yaml/.yml file in dir and merges the results
// into one pack, in filename order. Duplicate IDs across files are an
// error.
func LoadDir(dir string) (*Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content dir %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no content pack files in %s", dir)
	}
	sort.Strings(names)

	merged := &Pack{Name: filepath.Base(dir)}
	for _, name := range names {
		pack, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		merged.Quests = append(merged.Quests, pack.Quests...)
		merged.Dialogues = append(merged.Dialogues, pack.Dialogues...)
		merged.Achievements = append(merged.Achievements, pack.Achievements...)
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("content dir %s: %w", dir, err)
	}
	return merged, nil
}

// Validate checks every template and rejects duplicate IDs within each
// kind.
func (p *Pack) Validate() error {
	questIDs := make(map[string]bool, len(p.Quests))
	for i := range p.Quests {
		q := &p.Quests[i]
		if err := q.Validate(); err != nil {
			return err
		}
		if questIDs[q.ID] {
			return fmt.Errorf("duplicate quest id %q", q.ID)
		}
		questIDs[q.ID] = true
	}
	dialogueIDs := make(map[string]bool, len(p.Dialogues))
	for i := range p.Dialogues {
		d := &p.Dialogues[i]
		if err := d.Validate(); err != nil {
			return err
		}
		if dialogueIDs[d.ID] {
			return fmt.Errorf("duplicate dialogue id %q", d.ID)
		}
		dialogueIDs[d.ID] = true
	}
	achievementIDs := make(map[string]bool, len(p.Achievements))
	for i := range p.Achievements {
		a := &p.Achievements[i]
		if a.ID == "" {
			return fmt.Errorf("achievement %d is missing an id", i)
		}
		if achievementIDs[a.ID] {
			return fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		achievementIDs[a.ID] = true
		if a.TargetValue <= 0 {
			return fmt.Errorf("achievement %q must have a positive target value", a.ID)
		}
	}
	return nil
}

// Register loads every template in the pack into the engine.
func (p *Pack) Register(e *engine.Engine) {
	for i := range p.Quests {
		e.RegisterQuest(&p.Quests[i])
	}
	for i := range p.Dialogues {
		e.RegisterDialogue(&p.Dialogues[i])
	}
}

// AchievementSeeds returns the pack's achievement definitions, falling
// back to the built-in defaults for packs that declare none.
func (p *Pack) AchievementSeeds() []story.Achievement {
	if len(p.Achievements) > 0 {
		return p.Achievements
	}
	return achieve.Defaults()
}
