// Package achieve tracks persisted, monotonically progressing
// achievements, decoupled from quest and flag state.
package achieve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/story"
)

// Store is the durable backing for the achievement list. Load returns
// nil with no error when nothing has been persisted yet.
type Store interface {
	Load() ([]story.Achievement, error)
	Save([]story.Achievement) error
}

// Tracker owns the achievement list. Construct one per game session
// owner; there is no package-level singleton.
type Tracker struct {
	store  Store
	bus    *events.Bus
	logger *slog.Logger
	list   []story.Achievement
}

// NewTracker loads the persisted list from the store, seeding it with
// defaults (and persisting immediately) when the store is empty.
func NewTracker(store Store, bus *events.Bus, logger *slog.Logger, defaults []story.Achievement) (*Tracker, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if bus == nil {
		bus = events.NewBus()
	}
	list, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	if list == nil {
		list = make([]story.Achievement, len(defaults))
		copy(list, defaults)
		if err := store.Save(list); err != nil {
			return nil, fmt.Errorf("failed to seed achievements: %w", err)
		}
		logger.Debug("seeded achievement store", "count", len(list))
	}
	return &Tracker{store: store, bus: bus, logger: logger, list: list}, nil
}

// TrackProgress adds amount to every non-unlocked achievement whose ID
// starts with categoryPrefix. Progress is monotonic: amounts of zero or
// less are rejected (false), and accumulation clamps at the target
// value. Unlocking publishes game-achievement-unlocked plus a generic
// game-notification exactly once per achievement. The whole list is
// re-persisted after any change.
func (t *Tracker) TrackProgress(categoryPrefix string, amount int) bool {
	if amount <= 0 {
		t.logger.Debug("ignoring non-positive progress amount",
			"category", categoryPrefix, "amount", amount)
		return false
	}
	changed := false
	for i := range t.list {
		a := &t.list[i]
		if a.Unlocked || !strings.HasPrefix(a.ID, categoryPrefix) {
			continue
		}
		a.CurrentValue += amount
		changed = true
		if a.CurrentValue >= a.TargetValue {
			a.CurrentValue = a.TargetValue
			a.Unlocked = true
			t.bus.Publish(events.Event{
				Type:    events.TypeAchievementUnlocked,
				Payload: events.AchievementUnlocked{Achievement: *a},
			})
			t.bus.Publish(events.Event{
				Type: events.TypeNotification,
				Payload: events.Notification{
					Message: fmt.Sprintf("Achievement unlocked: %s", a.Title),
					Type:    "success",
				},
			})
		}
	}
	if changed {
		if err := t.store.Save(t.list); err != nil {
			t.logger.Error("failed to persist achievements", "error", err)
		}
	}
	return changed
}

// Achievements returns the live list, for read access by observers.
func (t *Tracker) Achievements() []story.Achievement {
	return t.list
}

// Defaults is the seed set used when the store is empty.
func Defaults() []story.Achievement {
	return []story.Achievement{
		{
			ID:          "gather_wood",
			Title:       "Lumberjack",
			Description: "Gather 10 pieces of wood.",
			Icon:        "🪓",
			TargetValue: 10,
			Category:    "gathering",
		},
		{
			ID:          "gather_berries",
			Title:       "Forager",
			Description: "Gather 25 berries.",
			Icon:        "🫐",
			TargetValue: 25,
			Category:    "gathering",
		},
		{
			ID:          "explore_zones",
			Title:       "Wayfinder",
			Description: "Visit 5 distinct map zones.",
			Icon:        "🧭",
			TargetValue: 5,
			Category:    "exploration",
		},
		{
			ID:          "talk_villagers",
			Title:       "Friendly Face",
			Description: "Talk to 3 villagers.",
			Icon:        "💬",
			TargetValue: 3,
			Category:    "social",
		},
		{
			ID:          "quests_completed",
			Title:       "Storyteller",
			Description: "Complete 5 quests.",
			Icon:        "📜",
			TargetValue: 5,
			Category:    "story",
		},
	}
}
