package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wildlight/questline/internal/loader"
	"github.com/wildlight/questline/pkg/story"
)

func TestLintConditions(t *testing.T) {
	pack := &loader.Pack{
		Quests: []story.Quest{
			{
				ID:            "firewood",
				Title:         "Firewood for Winter",
				Prerequisites: []string{"flag:met_elder", "flags:met_elder"},
				Steps: []story.QuestStep{
					{ID: "s1", Type: story.StepCollect, Target: "wood"},
				},
			},
		},
		Dialogues: []story.Dialogue{
			{
				ID:         "keeper",
				RootNodeID: "counter",
				Nodes: map[string]story.DialogueNode{
					"counter": {Text: "Shelves are bare.", Options: []story.DialogueOption{
						{Text: "What do you need?", Conditions: []string{"!flag:rude"}},
						{Text: "I can help.", Conditions: []string{"met_elder"}},
					}},
				},
			},
		},
	}

	warnings := lintConditions(pack)
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `"flags:met_elder"`)
	assert.Contains(t, warnings[1], `"met_elder"`)
}

func TestLintConditions_CleanPack(t *testing.T) {
	pack := &loader.Pack{
		Quests: []story.Quest{
			{
				ID:            "firewood",
				Title:         "Firewood for Winter",
				Prerequisites: []string{"flag:met_elder", "!flag:rude"},
				Steps: []story.QuestStep{
					{ID: "s1", Type: story.StepCollect, Target: "wood"},
				},
			},
		},
	}
	assert.Empty(t, lintConditions(pack))
}
