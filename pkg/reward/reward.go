// Package reward applies completed-quest rewards to a player profile.
// The engine hands rewards off rather than applying them itself; this
// package is the host-side collaborator that does.
package reward

import (
	"log/slog"
	"sort"

	"github.com/wildlight/questline/pkg/story"
)

// FlagSetter routes unlock rewards back into narrative world-state.
// The engine satisfies this.
type FlagSetter interface {
	SetFlag(id string, value bool) bool
}

// Profile accumulates what the player has earned.
type Profile struct {
	XP    int            `json:"xp"`
	Items map[string]int `json:"items,omitempty"`
}

// Applier grants rewards into a profile. Unlock rewards additionally
// set the named flag so content can gate on it.
type Applier struct {
	profile *Profile
	flags   FlagSetter
	logger  *slog.Logger
}

// NewApplier creates an applier. A nil flag setter drops unlock flags
// with a debug log; a nil logger discards.
func NewApplier(profile *Profile, flags FlagSetter, logger *slog.Logger) *Applier {
	if profile == nil {
		profile = &Profile{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Applier{profile: profile, flags: flags, logger: logger}
}

// Profile returns the live profile.
func (a *Applier) Profile() *Profile {
	return a.profile
}

// Apply grants every reward of a completed quest. Unknown reward types
// are ignored with a debug log.
func (a *Applier) Apply(questID string, rewards []story.Reward) {
	for _, r := range rewards {
		switch r.Type {
		case story.RewardXP:
			a.profile.XP += r.Amount
		case story.RewardItem:
			if a.profile.Items == nil {
				a.profile.Items = make(map[string]int)
			}
			n := r.Amount
			if n <= 0 {
				n = 1
			}
			a.profile.Items[r.Target] += n
		case story.RewardUnlock:
			if a.flags == nil {
				a.logger.Debug("no flag setter, dropping unlock reward",
					"quest_id", questID, "target", r.Target)
				continue
			}
			a.flags.SetFlag(r.Target, true)
		default:
			a.logger.Debug("ignoring unknown reward type",
				"quest_id", questID, "type", string(r.Type))
		}
	}
}

// ItemList returns inventory item IDs in sorted order, for display.
func (p *Profile) ItemList() []string {
	ids := make([]string, 0, len(p.Items))
	for id := range p.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
