package story

// Achievement is a persisted, monotonically progressing milestone,
// independent of quest and flag state. Progress tracking matches on an
// ID prefix (for example "gather" matches "gather_wood"), so renaming
// achievement IDs changes which progress calls reach them.
type Achievement struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon         string `json:"icon,omitempty" yaml:"icon,omitempty"`
	TargetValue  int    `json:"target_value" yaml:"target_value"`
	CurrentValue int    `json:"current_value" yaml:"current_value"`
	Unlocked     bool   `json:"unlocked" yaml:"unlocked"`
	Category     string `json:"category,omitempty" yaml:"category,omitempty"`
}
