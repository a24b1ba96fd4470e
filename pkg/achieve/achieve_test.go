package achieve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/story"
)

// memStore is an in-memory Store recording save counts.
type memStore struct {
	list    []story.Achievement
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load() ([]story.Achievement, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.list == nil {
		return nil, nil
	}
	out := make([]story.Achievement, len(m.list))
	copy(out, m.list)
	return out, nil
}

func (m *memStore) Save(list []story.Achievement) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.list = make([]story.Achievement, len(list))
	copy(m.list, list)
	return nil
}

func seeds() []story.Achievement {
	return []story.Achievement{
		{ID: "gather_wood", Title: "Lumberjack", TargetValue: 10, Category: "gathering"},
		{ID: "gather_berries", Title: "Forager", TargetValue: 25, Category: "gathering"},
		{ID: "talk_villagers", Title: "Friendly Face", TargetValue: 3, Category: "social"},
	}
}

func TestNewTracker_SeedsEmptyStore(t *testing.T) {
	store := &memStore{}
	tracker, err := NewTracker(store, events.NewBus(), nil, seeds())
	require.NoError(t, err)

	assert.Len(t, tracker.Achievements(), 3)
	assert.Equal(t, 1, store.saves, "seeding should persist immediately")
}

func TestNewTracker_LoadsExistingList(t *testing.T) {
	store := &memStore{list: []story.Achievement{
		{ID: "gather_wood", Title: "Lumberjack", TargetValue: 10, CurrentValue: 7},
	}}
	tracker, err := NewTracker(store, events.NewBus(), nil, seeds())
	require.NoError(t, err)

	require.Len(t, tracker.Achievements(), 1, "persisted list wins over defaults")
	assert.Equal(t, 7, tracker.Achievements()[0].CurrentValue)
	assert.Equal(t, 0, store.saves, "loading must not rewrite the store")
}

func TestNewTracker_LoadError(t *testing.T) {
	store := &memStore{loadErr: errors.New("disk gone")}
	_, err := NewTracker(store, events.NewBus(), nil, seeds())
	assert.Error(t, err)
}

// Scenario: two TrackProgress("gather", 5) calls against a target of 10
// reach exactly the target, unlock once, and fire one unlocked event.
func TestTrackProgress_UnlocksExactlyOnce(t *testing.T) {
	store := &memStore{}
	bus := events.NewBus()

	var unlocked []events.AchievementUnlocked
	var notes []events.Notification
	bus.Subscribe(func(ev events.Event) {
		switch p := ev.Payload.(type) {
		case events.AchievementUnlocked:
			unlocked = append(unlocked, p)
		case events.Notification:
			notes = append(notes, p)
		}
	})

	tracker, err := NewTracker(store, bus, nil, []story.Achievement{
		{ID: "gather_wood", Title: "Lumberjack", TargetValue: 10},
	})
	require.NoError(t, err)

	tracker.TrackProgress("gather", 5)
	tracker.TrackProgress("gather", 5)

	a := tracker.Achievements()[0]
	assert.Equal(t, 10, a.CurrentValue)
	assert.True(t, a.Unlocked)

	require.Len(t, unlocked, 1, "exactly one achievement-unlocked event")
	assert.Equal(t, "gather_wood", unlocked[0].Achievement.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "success", notes[0].Type)
	assert.Contains(t, notes[0].Message, "Lumberjack")

	// Further progress on an unlocked achievement is ignored entirely.
	changed := tracker.TrackProgress("gather_wood", 5)
	assert.False(t, changed)
	assert.Equal(t, 10, tracker.Achievements()[0].CurrentValue)
}

func TestTrackProgress_ClampsAtTarget(t *testing.T) {
	tracker, err := NewTracker(&memStore{}, events.NewBus(), nil, []story.Achievement{
		{ID: "explore_zones", Title: "Wayfinder", TargetValue: 5},
	})
	require.NoError(t, err)

	tracker.TrackProgress("explore", 100)

	a := tracker.Achievements()[0]
	assert.Equal(t, 5, a.CurrentValue, "progress clamps at the target value")
	assert.True(t, a.Unlocked)
}

func TestTrackProgress_RejectsNonPositiveAmounts(t *testing.T) {
	store := &memStore{list: []story.Achievement{
		{ID: "gather_wood", Title: "Lumberjack", TargetValue: 10, CurrentValue: 5},
	}}
	tracker, err := NewTracker(store, events.NewBus(), nil, nil)
	require.NoError(t, err)

	assert.False(t, tracker.TrackProgress("gather", -3))
	assert.Equal(t, 5, tracker.Achievements()[0].CurrentValue,
		"progress never decreases")

	assert.False(t, tracker.TrackProgress("gather", 0))
	assert.Equal(t, 5, tracker.Achievements()[0].CurrentValue)

	assert.Equal(t, 0, store.saves, "rejected amounts must not persist")
}

func TestTrackProgress_PrefixMatching(t *testing.T) {
	store := &memStore{}
	tracker, err := NewTracker(store, events.NewBus(), nil, seeds())
	require.NoError(t, err)
	store.saves = 0

	// "gather" matches both gather_wood and gather_berries, not talk_*.
	changed := tracker.TrackProgress("gather", 1)
	assert.True(t, changed)

	byID := map[string]story.Achievement{}
	for _, a := range tracker.Achievements() {
		byID[a.ID] = a
	}
	assert.Equal(t, 1, byID["gather_wood"].CurrentValue)
	assert.Equal(t, 1, byID["gather_berries"].CurrentValue)
	assert.Equal(t, 0, byID["talk_villagers"].CurrentValue)

	assert.Equal(t, 1, store.saves, "one persist per changing call")

	if tracker.TrackProgress("crafting", 1) {
		t.Error("no-match prefix should not report a change")
	}
	assert.Equal(t, 1, store.saves, "no-op calls must not persist")
}
