// Package quest tracks discovery progress: which clues have been revealed,
// which quests they count toward, and which acts they open.
package quest

import (
	"github.com/door66/lost-souls/internal/types"
)

// RecordDiscovery marks a clue as revealed: it joins the all set, every quest
// listed in the clue's is_key set, and, for gate clues, opens the declared
// act. Idempotent, so a second scan of the same prop changes nothing.
// Returns true on the first discovery.
func RecordDiscovery(clue *types.Clue, state *types.PlayerState) bool {
	first := !state.HasScanned(clue.ID)

	state.Scanned[types.ScannedAll] = appendUnique(state.Scanned[types.ScannedAll], clue.ID)
	for _, hashtag := range clue.IsKey {
		state.Scanned[hashtag] = appendUnique(state.Scanned[hashtag], clue.ID)
	}
	if clue.UnlocksAct != "" {
		state.UnlockedActs = appendUnique(state.UnlockedActs, clue.UnlocksAct)
	}

	return first
}

// AdvancedBy reports which quest's counter a revealed clue advances. The main
// quest is checked first: a clue that is key for both the main quest and a
// side quest reports only the main quest. Side quests count only for the
// active character. Returns false when no tracked quest advances.
//
// This is purely a reporting decision; RecordDiscovery always updates every
// quest the clue is key for.
func AdvancedBy(clue *types.Clue, mainQuest string, sideQuests map[string]string, activeCharacter string) (string, bool) {
	for _, hashtag := range clue.IsKey {
		if hashtag == mainQuest {
			return mainQuest, true
		}
	}
	side, ok := sideQuests[activeCharacter]
	if !ok {
		return "", false
	}
	for _, hashtag := range clue.IsKey {
		if hashtag == side {
			return side, true
		}
	}
	return "", false
}

// UnlockBypass records that the clue's octogram puzzle was solved, granting
// permanent access regardless of gates and skills. Idempotent.
func UnlockBypass(clueID string, state *types.PlayerState) {
	state.UnlockedClueIDs = appendUnique(state.UnlockedClueIDs, clueID)
}

// Discovered returns how many clues have been counted toward a quest.
func Discovered(state *types.PlayerState, hashtag string) int {
	return len(state.Scanned[hashtag])
}

func appendUnique(list []string, item string) []string {
	for _, v := range list {
		if v == item {
			return list
		}
	}
	return append(list, item)
}
