package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildlight/questline/internal/loader"
	"github.com/wildlight/questline/internal/storage"
	"github.com/wildlight/questline/pkg/achieve"
	"github.com/wildlight/questline/pkg/engine"
	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/reward"
	"github.com/wildlight/questline/pkg/story"
)

func newTestUI(t *testing.T) *ConsoleUI {
	t.Helper()

	pack := &loader.Pack{
		Name: "test",
		Dialogues: []story.Dialogue{
			{
				ID:         "elder_greeting",
				RootNodeID: "greeting",
				Nodes: map[string]story.DialogueNode{
					"greeting": {Text: "Ah, a new face.", Speaker: "Elder", Options: []story.DialogueOption{
						{Text: "Goodbye."},
					}},
				},
			},
		},
	}

	bus := events.NewBus()
	eng := engine.New(nil, bus, nil)
	pack.Register(eng)

	applier := reward.NewApplier(&reward.Profile{}, eng, nil)
	eng.SetRewardSink(applier)

	tracker, err := achieve.NewTracker(storage.NewMemoryAchievementStore(), bus, nil,
		[]story.Achievement{
			{ID: "talk_villagers", Title: "Friendly Face", TargetValue: 3},
		})
	require.NoError(t, err)

	return NewConsoleUI(pack, eng, tracker, applier, bus)
}

func TestTalkCommand_NoCreditForUnknownDialogue(t *testing.T) {
	ui := newTestUI(t)

	ui.runCommand("talk no_such_dialogue")
	assert.Equal(t, 0, ui.tracker.Achievements()[0].CurrentValue,
		"a conversation that never opened must not count")
	assert.Nil(t, ui.engine.CurrentNode())

	ui.runCommand("talk elder_greeting")
	assert.Equal(t, 1, ui.tracker.Achievements()[0].CurrentValue)
	require.NotNil(t, ui.engine.CurrentNode())
	assert.Equal(t, "Ah, a new face.", ui.engine.CurrentNode().Text)
}
