package engine

import (
	"testing"

	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/story"
)

func elderDialogue() *story.Dialogue {
	return &story.Dialogue{
		ID:         "elder_intro",
		NPCID:      "elder",
		RootNodeID: "n1",
		Nodes: map[string]story.DialogueNode{
			"n1": {
				Text:    "You're new here, aren't you?",
				Speaker: "Elder",
				Options: []story.DialogueOption{
					{Text: "Who are you?", NextNodeID: "n2"},
					{Text: "Goodbye."},
				},
			},
			"n2": {
				Text:    "I watch over this village.",
				Speaker: "Elder",
				Options: []story.DialogueOption{
					{Text: "I should go."},
				},
			},
		},
	}
}

func TestStartDialogue(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(elderDialogue())

	if e.StartDialogue("missing") {
		t.Error("unknown dialogue should start nothing")
	}
	if len(rec.events) != 0 {
		t.Error("unknown dialogue must fire no events")
	}

	if !e.StartDialogue("elder_intro") {
		t.Fatal("expected dialogue to start")
	}
	starts := rec.ofType(events.TypeDialogueStart)
	if len(starts) != 1 {
		t.Fatalf("expected 1 dialogue-start, got %d", len(starts))
	}
	payload := starts[0].Payload.(events.DialogueEvent)
	if payload.Text != "You're new here, aren't you?" || payload.Speaker != "Elder" {
		t.Errorf("dialogue-start carries wrong node: %+v", payload)
	}
	if len(payload.Options) != 2 {
		t.Errorf("expected 2 options in payload, got %d", len(payload.Options))
	}
}

func TestSelectOption_AdvanceAndEnd(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(elderDialogue())
	e.StartDialogue("elder_intro")

	if !e.SelectOption(0) {
		t.Fatal("expected option 0 to resolve")
	}
	next := rec.ofType(events.TypeDialogueNext)
	if len(next) != 1 {
		t.Fatalf("expected 1 dialogue-next, got %d", len(next))
	}
	if payload := next[0].Payload.(events.DialogueEvent); payload.Text != "I watch over this village." {
		t.Errorf("advanced to wrong node: %+v", payload)
	}

	// The only option on n2 terminates.
	e.SelectOption(0)
	if len(rec.ofType(events.TypeDialogueEnd)) != 1 {
		t.Error("expected dialogue-end after null transition")
	}
	if e.CurrentNode() != nil {
		t.Error("session should be closed")
	}
}

// Scenario: selecting a null-transition option from the root fires
// dialogue-end and no dialogue-next.
func TestSelectOption_NullTransitionEndsImmediately(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(elderDialogue())
	e.StartDialogue("elder_intro")

	e.SelectOption(1)

	if len(rec.ofType(events.TypeDialogueEnd)) != 1 {
		t.Error("expected dialogue-end")
	}
	if len(rec.ofType(events.TypeDialogueNext)) != 0 {
		t.Error("expected no dialogue-next")
	}
}

func TestSelectOption_NoSessionOrBadIndex(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(elderDialogue())

	if e.SelectOption(0) {
		t.Error("selecting with no open dialogue should be a no-op")
	}

	e.StartDialogue("elder_intro")
	before := len(rec.events)
	if e.SelectOption(5) {
		t.Error("out-of-range index should be a no-op")
	}
	if e.SelectOption(-1) {
		t.Error("negative index should be a no-op")
	}
	if len(rec.events) != before {
		t.Error("no-op selections must fire no events")
	}
	if e.CurrentNode() == nil {
		t.Error("session should stay open after a no-op selection")
	}
}

// Scenario: an option carrying a set_flag action applies it through the
// flag store before the transition, so the flag reads true immediately
// and the quest cascade fires.
func TestSelectOption_SetFlagAction(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(&story.Dialogue{
		ID:         "storm_warning",
		RootNodeID: "n1",
		Nodes: map[string]story.DialogueNode{
			"n1": {
				Text:    "The sky darkens.",
				Speaker: "Hermit",
				Options: []story.DialogueOption{
					{Text: "Let it come.", Actions: []string{"set_flag:storm_started=true"}},
				},
			},
		},
	})
	e.StartDialogue("storm_warning")
	e.SelectOption(0)

	if !e.Flag("storm_started") {
		t.Error("set_flag action should apply immediately")
	}
	if len(rec.ofType(events.TypeFlagChange)) != 1 {
		t.Error("set_flag action should broadcast story-flag-change")
	}
}

func TestSelectOption_UnrecognizedActionsIgnored(t *testing.T) {
	e, _ := newTestEngine()
	e.RegisterDialogue(&story.Dialogue{
		ID:         "d",
		RootNodeID: "n1",
		Nodes: map[string]story.DialogueNode{
			"n1": {
				Text: "...",
				Options: []story.DialogueOption{
					{Text: "ok", Actions: []string{
						"give_item:sword",
						"set_flag:",
						"set_flag:x=maybe",
						"set_flag:ok=true",
					}},
				},
			},
		},
	})
	e.StartDialogue("d")
	e.SelectOption(0)

	if e.Flag("x") {
		t.Error("malformed set_flag must not apply")
	}
	if !e.Flag("ok") {
		t.Error("well-formed set_flag among junk should still apply")
	}
}

// Option conditions are schema-only: every option is presented and
// selectable regardless of its condition strings.
func TestOptionConditionsAreNotFiltered(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(&story.Dialogue{
		ID:         "gated",
		RootNodeID: "n1",
		Nodes: map[string]story.DialogueNode{
			"n1": {
				Text: "Speak.",
				Options: []story.DialogueOption{
					{Text: "Secret option", Conditions: []string{"flag:knows_secret"}},
					{Text: "Plain option"},
				},
			},
		},
	})
	e.StartDialogue("gated")

	payload := rec.ofType(events.TypeDialogueStart)[0].Payload.(events.DialogueEvent)
	if len(payload.Options) != 2 {
		t.Fatalf("expected all options presented, got %d", len(payload.Options))
	}
	// The gated option is selectable even though its condition is unmet.
	if !e.SelectOption(0) {
		t.Error("condition-carrying option should still be selectable")
	}
}

// Cyclic graphs are legal; repeatedly choosing the non-terminating
// branch loops, and the terminating branch still closes the session.
func TestCyclicDialogueDoesNotWedge(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(&story.Dialogue{
		ID:         "loop",
		RootNodeID: "a",
		Nodes: map[string]story.DialogueNode{
			"a": {Text: "a", Options: []story.DialogueOption{
				{Text: "again", NextNodeID: "b"},
			}},
			"b": {Text: "b", Options: []story.DialogueOption{
				{Text: "back", NextNodeID: "a"},
				{Text: "done"},
			}},
		},
	})
	e.StartDialogue("loop")

	for i := 0; i < 5; i++ {
		e.SelectOption(0) // a -> b
		if i < 4 {
			e.SelectOption(0) // b -> a
		}
	}
	e.SelectOption(1) // terminate from b

	if len(rec.ofType(events.TypeDialogueEnd)) != 1 {
		t.Error("expected the loop to terminate by caller choice")
	}
}

func TestEndDialogue_Direct(t *testing.T) {
	e, rec := newTestEngine()
	e.RegisterDialogue(elderDialogue())
	e.StartDialogue("elder_intro")

	e.EndDialogue()
	if len(rec.ofType(events.TypeDialogueEnd)) != 1 {
		t.Error("expected dialogue-end")
	}
	if e.CurrentNode() != nil {
		t.Error("session should be closed")
	}
}
