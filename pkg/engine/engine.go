// Package engine implements the narrative core: world flags, the quest
// state machine and the dialogue walker, publishing events to decoupled
// observers through the event bus.
//
// Missing references (unknown quest IDs, unknown dialogue IDs, option
// indexes out of range) are silent no-ops at runtime; operations return
// a bool reporting whether a mutation occurred, and misses are logged at
// debug level so content typos are discoverable during development.
package engine

import (
	"log/slog"
	"sort"

	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/state"
	"github.com/wildlight/questline/pkg/story"
)

// RewardSink receives the rewards of a completed quest. The engine does
// not apply rewards itself; the host supplies the collaborator.
type RewardSink interface {
	Apply(questID string, rewards []story.Reward)
}

// Engine drives one session's narrative state. It is not safe for
// concurrent use; all operations run synchronously on a single logical
// thread of control.
type Engine struct {
	session   *state.Session
	bus       *events.Bus
	logger    *slog.Logger
	quests    map[string]*story.Quest
	dialogues map[string]*story.Dialogue
	rewards   RewardSink
}

// New creates an engine for the given session. A nil bus gets a fresh
// one; a nil logger discards.
func New(session *state.Session, bus *events.Bus, logger *slog.Logger) *Engine {
	if session == nil {
		session = state.NewSession()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		session:   session,
		bus:       bus,
		logger:    logger.With("session_id", session.ID),
		quests:    make(map[string]*story.Quest),
		dialogues: make(map[string]*story.Dialogue),
	}
}

// Session returns the engine's runtime state, for snapshotting.
func (e *Engine) Session() *state.Session {
	return e.session
}

// Bus returns the engine's event bridge, for observer registration.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// SetRewardSink installs the reward-application collaborator. Without
// one, completed-quest rewards are dropped with a debug log.
func (e *Engine) SetRewardSink(sink RewardSink) {
	e.rewards = sink
}

// Flag and value store.

// Flag returns the flag's value, false for unknown IDs.
func (e *Engine) Flag(id string) bool {
	return e.session.Flags.Flag(id)
}

// SetFlag overwrites the flag, publishes story-flag-change and cascades
// into quest progress for flag steps targeting this ID. The returned
// bool reports whether the stored value changed; the broadcast and the
// cascade happen on every call, changed or not.
func (e *Engine) SetFlag(id string, value bool) bool {
	changed := e.session.Flags.SetFlag(id, value)
	e.bus.Publish(events.Event{
		Type:    events.TypeFlagChange,
		Payload: events.FlagChange{ID: id, Value: value},
	})
	e.CheckQuestProgress(story.StepFlag, id)
	return changed
}

// Value returns the numeric value, 0 for unknown IDs.
func (e *Engine) Value(id string) int {
	return e.session.Flags.Value(id)
}

// SetValue overwrites the numeric value. Unlike SetFlag it does not
// cascade into quest progress; there is no numeric-threshold step type.
func (e *Engine) SetValue(id string, value int) bool {
	return e.session.Flags.SetValue(id, value)
}

// Quest engine. Lifecycle per quest is Inactive -> Active -> Completed,
// one-directional and idempotent on repeated accept/complete calls.

// RegisterQuest adds or overwrites a quest template. Already-active
// instances keep the step list and matching semantics they were
// accepted with; the new template applies to future accepts only.
func (e *Engine) RegisterQuest(def *story.Quest) {
	if def == nil || def.ID == "" {
		e.logger.Debug("ignoring quest registration without an id")
		return
	}
	e.quests[def.ID] = def
}

// RegisterDialogue adds or overwrites a dialogue template.
func (e *Engine) RegisterDialogue(def *story.Dialogue) {
	if def == nil || def.ID == "" {
		e.logger.Debug("ignoring dialogue registration without an id")
		return
	}
	e.dialogues[def.ID] = def
}

// Quest returns a registered quest template, nil if unknown.
func (e *Engine) Quest(id string) *story.Quest {
	return e.quests[id]
}

// AcceptQuest activates a registered quest. It is a no-op (false) if the
// quest is unknown, already active or already completed.
func (e *Engine) AcceptQuest(id string) bool {
	def, ok := e.quests[id]
	if !ok {
		e.logger.Debug("accept of unknown quest", "quest_id", id)
		return false
	}
	if !e.session.Quests.Accept(def) {
		return false
	}
	e.bus.Publish(events.Event{
		Type:    events.TypeQuestAccepted,
		Payload: events.QuestEvent{QuestID: id},
	})
	return true
}

// CheckQuestProgress marks complete every incomplete step of every
// active quest whose (type, target) exactly matches the arguments, and
// returns how many steps were newly completed. Step Count values are
// not cumulatively tracked; matching is a single exact-match flip
// against the semantics snapshotted at accept time. Quests whose steps
// are all complete transition to Completed exactly once; quests that
// progressed without finishing emit quest-updated.
func (e *Engine) CheckQuestProgress(stepType story.StepType, target string) int {
	total := 0
	for _, questID := range e.activeQuestIDs() {
		inst := e.session.Quests.Active[questID]
		if inst == nil {
			continue
		}
		progressed := 0
		for i := range inst.Steps {
			step := &inst.Steps[i]
			if step.Done || step.Type != stepType || step.Target != target {
				continue
			}
			step.Done = true
			progressed++
		}
		if progressed == 0 {
			continue
		}
		total += progressed
		if inst.AllDone() {
			e.CompleteQuest(questID)
		} else {
			e.bus.Publish(events.Event{
				Type:    events.TypeQuestUpdated,
				Payload: events.QuestEvent{QuestID: questID},
			})
		}
	}
	return total
}

// CompleteQuest transitions an active quest to Completed, publishes
// quest-completed and hands rewards to the sink. It is idempotent: a
// quest that is not active is a no-op (false), so a quest completes at
// most once.
func (e *Engine) CompleteQuest(id string) bool {
	if !e.session.Quests.Complete(id) {
		e.logger.Debug("complete of quest that is not active", "quest_id", id)
		return false
	}
	e.bus.Publish(events.Event{
		Type:    events.TypeQuestCompleted,
		Payload: events.QuestEvent{QuestID: id},
	})
	if def := e.quests[id]; def != nil && len(def.Rewards) > 0 {
		if e.rewards != nil {
			e.rewards.Apply(id, def.Rewards)
		} else {
			e.logger.Debug("no reward sink installed, dropping rewards", "quest_id", id)
		}
	}
	return true
}

// QuestProgress pairs a quest template with its runtime step state, for
// pull-based observers like the journal.
type QuestProgress struct {
	Quest    *story.Quest
	Instance *state.QuestInstance
}

// ActiveQuests returns active quests with their progress, ordered by
// quest ID.
func (e *Engine) ActiveQuests() []QuestProgress {
	ids := e.activeQuestIDs()
	out := make([]QuestProgress, 0, len(ids))
	for _, id := range ids {
		out = append(out, QuestProgress{
			Quest:    e.quests[id],
			Instance: e.session.Quests.Active[id],
		})
	}
	return out
}

// CompletedQuests returns completed quest IDs in sorted order.
func (e *Engine) CompletedQuests() []string {
	ids := make([]string, 0, len(e.session.Quests.Completed))
	for id := range e.session.Quests.Completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// activeQuestIDs returns active quest IDs sorted, so event order is
// deterministic when one trigger touches several quests.
func (e *Engine) activeQuestIDs() []string {
	ids := make([]string, 0, len(e.session.Quests.Active))
	for id := range e.session.Quests.Active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
