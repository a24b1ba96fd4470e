package state

import "github.com/wildlight/questline/pkg/story"

// StepProgress is the runtime record for one quest step. The matching
// semantics (type, target) are copied from the template at accept time,
// so re-registering a template never changes how an already-accepted
// quest progresses. Only the done bit is mutable.
type StepProgress struct {
	StepID string         `json:"step_id"`
	Type   story.StepType `json:"type"`
	Target string         `json:"target"`
	Done   bool           `json:"done"`
}

// QuestInstance is the runtime record of an accepted quest. Instances
// are indexed by quest ID in the log, separate from the immutable
// template table, so transitions are explicit and the whole log is
// snapshot-serializable.
type QuestInstance struct {
	QuestID string         `json:"quest_id"`
	Steps   []StepProgress `json:"steps"`
}

// AllDone reports whether every step has been marked complete.
func (qi *QuestInstance) AllDone() bool {
	for _, s := range qi.Steps {
		if !s.Done {
			return false
		}
	}
	return true
}

// QuestLog tracks quest lifecycle state. A quest is in exactly one of
// three disjoint states: not started, active, or completed, and only
// moves forward.
type QuestLog struct {
	Active    map[string]*QuestInstance `json:"active,omitempty"`
	Completed map[string]bool           `json:"completed,omitempty"`
}

// NewQuestLog returns an empty log.
func NewQuestLog() *QuestLog {
	return &QuestLog{
		Active:    make(map[string]*QuestInstance),
		Completed: make(map[string]bool),
	}
}

// Accept instantiates runtime state for the quest template. It is a
// no-op (false) if the quest is already active or completed.
func (ql *QuestLog) Accept(def *story.Quest) bool {
	if ql.Active[def.ID] != nil || ql.Completed[def.ID] {
		return false
	}
	inst := &QuestInstance{
		QuestID: def.ID,
		Steps:   make([]StepProgress, len(def.Steps)),
	}
	for i, s := range def.Steps {
		inst.Steps[i] = StepProgress{StepID: s.ID, Type: s.Type, Target: s.Target}
	}
	if ql.Active == nil {
		ql.Active = make(map[string]*QuestInstance)
	}
	ql.Active[def.ID] = inst
	return true
}

// Complete moves an active quest to the completed set. It is a no-op
// (false) if the quest is not active, so repeated calls cannot complete
// a quest twice.
func (ql *QuestLog) Complete(questID string) bool {
	if ql.Active[questID] == nil {
		return false
	}
	delete(ql.Active, questID)
	if ql.Completed == nil {
		ql.Completed = make(map[string]bool)
	}
	ql.Completed[questID] = true
	return true
}

// IsActive reports whether the quest is currently active.
func (ql *QuestLog) IsActive(questID string) bool {
	return ql.Active[questID] != nil
}

// IsCompleted reports whether the quest has been completed.
func (ql *QuestLog) IsCompleted(questID string) bool {
	return ql.Completed[questID]
}
