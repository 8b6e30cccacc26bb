// Package access decides whether a clue is visible to a player: the octogram
// bypass wins over story gates, story gates win over skill requirements.
package access

import (
	"github.com/door66/lost-souls/internal/message"
	"github.com/door66/lost-souls/internal/skill"
	"github.com/door66/lost-souls/internal/types"
)

// Resolver evaluates clue visibility. It is a pure query and never mutates
// player state; recording a discovery is the caller's job.
type Resolver struct {
	openActs  []string
	templates *types.MessageTemplates
	pick      message.Picker
}

// New builds a resolver. openActs lists the acts visible to every player
// (the prologue and the first narrative act). A nil picker panics: a resolver
// without a way to compose messages is a wiring defect, not bad content.
func New(openActs []string, templates *types.MessageTemplates, pick message.Picker) *Resolver {
	if pick == nil {
		panic("access: resolver requires a message picker")
	}
	return &Resolver{
		openActs:  openActs,
		templates: templates,
		pick:      pick,
	}
}

// Resolve runs the state machine in strict priority order:
//
//  1. puzzle-bypassed clues are UNLOCKED, overriding everything
//  2. clues in a locked act are GATED, regardless of skills
//  3. unmet skill requirements yield SKILL_LOCKED with an explanation
//  4. otherwise UNLOCKED
func (r *Resolver) Resolve(clue *types.Clue, state *types.PlayerState) types.AccessResult {
	if state.HasUnlockedClue(clue.ID) {
		return types.AccessResult{State: types.AccessUnlocked}
	}

	if clue.Act != "" && !r.actOpen(clue.Act) && !state.HasUnlockedAct(clue.Act) {
		return types.AccessResult{State: types.AccessGated}
	}

	if !skill.HasAccess(clue.Skills, state.UserSkills) {
		// The composer always receives the clue's full requirement list:
		// under OR semantics an unsatisfied set means nothing matched.
		suggested := make([]string, len(clue.AccessChars))
		copy(suggested, clue.AccessChars)
		return types.AccessResult{
			State:               types.AccessSkillLocked,
			Message:             message.ComposeLock(clue.Skills, clue.Type, r.templates, r.pick),
			SuggestedCharacters: suggested,
		}
	}

	return types.AccessResult{State: types.AccessUnlocked}
}

func (r *Resolver) actOpen(act string) bool {
	for _, open := range r.openActs {
		if open == act {
			return true
		}
	}
	return false
}
