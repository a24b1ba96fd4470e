package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wildlight/questline/pkg/story"
)

type flagRecorder struct {
	set map[string]bool
}

func (f *flagRecorder) SetFlag(id string, value bool) bool {
	if f.set == nil {
		f.set = make(map[string]bool)
	}
	f.set[id] = value
	return true
}

func TestApply(t *testing.T) {
	flags := &flagRecorder{}
	applier := NewApplier(&Profile{}, flags, nil)

	applier.Apply("q1", []story.Reward{
		{Type: story.RewardXP, Amount: 50},
		{Type: story.RewardItem, Target: "rope", Amount: 2},
		{Type: story.RewardItem, Target: "map_half"},
		{Type: story.RewardUnlock, Target: "east_gate_open"},
		{Type: "favor", Target: "elder"}, // unknown, ignored
	})
	applier.Apply("q2", []story.Reward{
		{Type: story.RewardXP, Amount: 25},
		{Type: story.RewardItem, Target: "rope"},
	})

	p := applier.Profile()
	assert.Equal(t, 75, p.XP)
	assert.Equal(t, 3, p.Items["rope"])
	assert.Equal(t, 1, p.Items["map_half"], "amountless item rewards grant one")
	assert.True(t, flags.set["east_gate_open"], "unlock rewards set the named flag")
	assert.Equal(t, []string{"map_half", "rope"}, p.ItemList())
}

func TestApply_NilFlagSetterDropsUnlocks(t *testing.T) {
	applier := NewApplier(nil, nil, nil)
	applier.Apply("q1", []story.Reward{
		{Type: story.RewardUnlock, Target: "gate"},
		{Type: story.RewardXP, Amount: 10},
	})
	assert.Equal(t, 10, applier.Profile().XP, "other rewards still apply")
}
