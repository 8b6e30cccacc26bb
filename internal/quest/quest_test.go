package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/door66/lost-souls/internal/types"
)

func TestRecordDiscoveryIdempotent(t *testing.T) {
	state := types.NewPlayerState("p1", "Test Player")
	clue := &types.Clue{ID: "C1", IsKey: []string{"main_quest", "alice_side_quest"}}

	// Test case 1: first discovery populates every tracked set
	first := RecordDiscovery(clue, state)
	assert.True(t, first)
	assert.Equal(t, []string{"C1"}, state.Scanned[types.ScannedAll])
	assert.Equal(t, []string{"C1"}, state.Scanned["main_quest"])
	assert.Equal(t, []string{"C1"}, state.Scanned["alice_side_quest"])

	// Test case 2: second call is a no-op
	first = RecordDiscovery(clue, state)
	assert.False(t, first)
	assert.Len(t, state.Scanned[types.ScannedAll], 1)
	assert.Len(t, state.Scanned["main_quest"], 1)
	assert.Len(t, state.Scanned["alice_side_quest"], 1)
}

func TestRecordDiscoveryGateClue(t *testing.T) {
	state := types.NewPlayerState("p1", "Test Player")
	gate := &types.Clue{ID: "G1", UnlocksAct: "act_ii_mystery_emerges"}

	RecordDiscovery(gate, state)
	assert.Equal(t, []string{"act_ii_mystery_emerges"}, state.UnlockedActs)

	// No double unlock on a second scan.
	RecordDiscovery(gate, state)
	assert.Len(t, state.UnlockedActs, 1)
}

func TestRecordDiscoveryNonKeyClue(t *testing.T) {
	state := types.NewPlayerState("p1", "Test Player")
	clue := &types.Clue{ID: "C1"}

	first := RecordDiscovery(clue, state)
	assert.True(t, first)
	assert.Equal(t, []string{"C1"}, state.Scanned[types.ScannedAll])
	assert.Len(t, state.Scanned, 1)
}

func TestAdvancedByMainQuestPriority(t *testing.T) {
	sideQuests := map[string]string{"alice": "alice_side_quest", "bob": "bob_side_quest"}

	// Test case 1: main quest wins even when the side quest also matches
	clue := &types.Clue{ID: "C1", IsKey: []string{"main_quest", "alice_side_quest"}}
	advanced, ok := AdvancedBy(clue, "main_quest", sideQuests, "alice")
	assert.True(t, ok)
	assert.Equal(t, "main_quest", advanced)

	// Test case 2: side quest of the active character
	clue = &types.Clue{ID: "C2", IsKey: []string{"alice_side_quest"}}
	advanced, ok = AdvancedBy(clue, "main_quest", sideQuests, "alice")
	assert.True(t, ok)
	assert.Equal(t, "alice_side_quest", advanced)

	// Test case 3: someone else's side quest does not advance
	advanced, ok = AdvancedBy(clue, "main_quest", sideQuests, "bob")
	assert.False(t, ok)
	assert.Empty(t, advanced)

	// Test case 4: character without a side quest
	advanced, ok = AdvancedBy(clue, "main_quest", sideQuests, "carol")
	assert.False(t, ok)

	// Test case 5: clue that is key for nothing
	clue = &types.Clue{ID: "C3"}
	_, ok = AdvancedBy(clue, "main_quest", sideQuests, "alice")
	assert.False(t, ok)
}

func TestUnlockBypassIdempotent(t *testing.T) {
	state := types.NewPlayerState("p1", "Test Player")

	UnlockBypass("C1", state)
	UnlockBypass("C1", state)
	assert.Equal(t, []string{"C1"}, state.UnlockedClueIDs)
	assert.True(t, state.HasUnlockedClue("C1"))
}

func TestDiscovered(t *testing.T) {
	state := types.NewPlayerState("p1", "Test Player")
	assert.Equal(t, 0, Discovered(state, "main_quest"))

	RecordDiscovery(&types.Clue{ID: "C1", IsKey: []string{"main_quest"}}, state)
	RecordDiscovery(&types.Clue{ID: "C2", IsKey: []string{"main_quest"}}, state)
	assert.Equal(t, 2, Discovered(state, "main_quest"))
}
