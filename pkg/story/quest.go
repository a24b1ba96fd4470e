package story

import "fmt"

// StepType describes how a quest step is completed.
type StepType string

const (
	StepFlag    StepType = "flag"    // completed when the matching flag is set
	StepCollect StepType = "collect" // completed when the matching item is collected
	StepVisit   StepType = "visit"   // completed when the matching location is entered
)

// RewardType describes what a quest grants on completion.
type RewardType string

const (
	RewardXP     RewardType = "xp"
	RewardItem   RewardType = "item"
	RewardUnlock RewardType = "unlock"
)

// QuestStep is a single objective within a quest.
type QuestStep struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Type        StepType `json:"type" yaml:"type"`
	Target      string   `json:"target" yaml:"target"`
	// Count is part of the authoring schema but progress is matched on
	// (type, target) only; there is no cumulative counting.
	Count int `json:"count,omitempty" yaml:"count,omitempty"`
}

// Reward defines what the player receives when a quest completes.
type Reward struct {
	Type   RewardType `json:"type" yaml:"type"`
	Target string     `json:"target,omitempty" yaml:"target,omitempty"`
	Amount int        `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// Quest is the immutable template for a unit of narrative progress.
// Runtime progress lives in the quest log, never in the template.
type Quest struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	// Prerequisites lists quest IDs or flag references that gate
	// acceptance. Declared for authoring tools; the engine does not
	// enforce them.
	Prerequisites []string    `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Steps         []QuestStep `json:"steps" yaml:"steps"`
	Rewards       []Reward    `json:"rewards,omitempty" yaml:"rewards,omitempty"`
}

// Validate checks a quest template for authoring mistakes.
func (q *Quest) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quest is missing an id")
	}
	if q.Title == "" {
		return fmt.Errorf("quest %q is missing a title", q.ID)
	}
	if len(q.Steps) == 0 {
		return fmt.Errorf("quest %q has no steps", q.ID)
	}
	seen := make(map[string]bool, len(q.Steps))
	for i, step := range q.Steps {
		if step.ID == "" {
			return fmt.Errorf("quest %q step %d is missing an id", q.ID, i)
		}
		if seen[step.ID] {
			return fmt.Errorf("quest %q has duplicate step id %q", q.ID, step.ID)
		}
		seen[step.ID] = true
		switch step.Type {
		case StepFlag, StepCollect, StepVisit:
		default:
			return fmt.Errorf("quest %q step %q has unknown type %q", q.ID, step.ID, step.Type)
		}
		if step.Target == "" {
			return fmt.Errorf("quest %q step %q is missing a target", q.ID, step.ID)
		}
	}
	for i, r := range q.Rewards {
		switch r.Type {
		case RewardXP, RewardItem, RewardUnlock:
		default:
			return fmt.Errorf("quest %q reward %d has unknown type %q", q.ID, i, r.Type)
		}
	}
	return nil
}
