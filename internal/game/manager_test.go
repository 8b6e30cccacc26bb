package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door66/lost-souls/config"
	"github.com/door66/lost-souls/internal/content"
	"github.com/door66/lost-souls/internal/state"
	"github.com/door66/lost-souls/internal/types"
)

func testLibrary() *content.Library {
	clues := map[string]*types.Clue{
		"c001": {
			ID:     "c001",
			Title:  "The Torn Ledger",
			Act:    "act_i_setting",
			IsKey:  []string{"main_quest"},
			Skills: []string{},
		},
		"c002": {
			ID:          "c002",
			Title:       "The Sealed Canvas",
			Act:         "act_ii_mystery_emerges",
			Skills:      []string{"art_2"},
			IsKey:       []string{"main_quest", "alice_side_quest"},
			UnlockCode:  "0257",
			AccessChars: []string{"Painter"},
		},
		"g001": {
			ID:         "g001",
			Title:      "The Cellar Door",
			Act:        "act_i_setting",
			UnlocksAct: "act_ii_mystery_emerges",
		},
	}
	quests := map[string]*types.Quest{
		"main_quest":       {ID: "main", Hashtag: "main_quest", Title: "Find the Lost Soul", Total: 2},
		"alice_side_quest": {ID: "alice", Hashtag: "alice_side_quest", Title: "Alice's Secret", Character: "alice", Total: 1},
	}
	return &content.Library{
		Clues:      clues,
		Quests:     quests,
		MainQuest:  "main_quest",
		SideQuests: map[string]string{"alice": "alice_side_quest"},
		Characters: []types.Character{
			{ID: "alice", Title: "The Painter", IsPlayer: true, Skills: types.CharacterSkills{Flat: []string{"art_2"}}},
			{ID: "bob", Title: "The Doctor", IsPlayer: true, Skills: types.CharacterSkills{Expert: []string{"medical"}}},
			{ID: "ghost", Title: "The Ghost", IsPlayer: false},
		},
	}
}

func testManager() *Manager {
	return NewManager(config.DefaultConfig(), testLibrary(), state.NewMemoryStore())
}

func TestRegisterPlayer(t *testing.T) {
	manager := testManager()

	// Test case 1: register new player
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	assert.NotEmpty(t, player.PlayerID)
	assert.Equal(t, "Test Player", player.Name)
	assert.Empty(t, player.UserSkills)
	assert.Empty(t, player.Scanned)

	// Test case 2: get registered player
	loaded, err := manager.GetPlayer(player.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, player.PlayerID, loaded.PlayerID)

	// Test case 3: get unknown player
	_, err = manager.GetPlayer("nope")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestSelectCharacter(t *testing.T) {
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)

	// Test case 1: select a player character
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "alice"))
	loaded, err := manager.GetPlayer(player.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.CharacterID)
	assert.Equal(t, []string{"art_2"}, loaded.UserSkills)

	// Test case 2: switching replaces skills wholesale
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "bob"))
	loaded, err = manager.GetPlayer(player.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"medical_2"}, loaded.UserSkills)

	// Test case 3: non-existent character
	err = manager.SelectCharacter(player.PlayerID, "nobody")
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	// Test case 4: non-player character
	err = manager.SelectCharacter(player.PlayerID, "ghost")
	assert.ErrorIs(t, err, ErrNotPlayable)
}

func TestScanClueFlow(t *testing.T) {
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "alice"))

	// Test case 1: open clue unlocks and advances the main quest
	result, err := manager.ScanClue(player.PlayerID, "c001")
	require.NoError(t, err)
	assert.Equal(t, types.AccessUnlocked, result.Access.State)
	assert.True(t, result.FirstDiscovery)
	assert.Equal(t, "main_quest", result.QuestAdvanced)

	// Test case 2: act II clue is gated despite matching skills
	result, err = manager.ScanClue(player.PlayerID, "c002")
	require.NoError(t, err)
	assert.Equal(t, types.AccessGated, result.Access.State)

	// Test case 3: discovering the gate clue opens act II
	result, err = manager.ScanClue(player.PlayerID, "g001")
	require.NoError(t, err)
	assert.Equal(t, types.AccessUnlocked, result.Access.State)
	assert.Empty(t, result.QuestAdvanced)

	result, err = manager.ScanClue(player.PlayerID, "c002")
	require.NoError(t, err)
	assert.Equal(t, types.AccessUnlocked, result.Access.State)
	assert.True(t, result.FirstDiscovery)
	assert.Equal(t, "main_quest", result.QuestAdvanced)

	// Test case 4: rescanning is not a first discovery
	result, err = manager.ScanClue(player.PlayerID, "c002")
	require.NoError(t, err)
	assert.False(t, result.FirstDiscovery)
	assert.Empty(t, result.QuestAdvanced)

	// Test case 5: unknown clue
	_, err = manager.ScanClue(player.PlayerID, "c999")
	assert.ErrorIs(t, err, ErrClueNotFound)
}

func TestScanClueSkillLock(t *testing.T) {
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "bob"))

	// Open act II first via the gate clue.
	_, err = manager.ScanClue(player.PlayerID, "g001")
	require.NoError(t, err)

	// Bob lacks art_2, so the canvas stays locked with a suggestion.
	result, err := manager.ScanClue(player.PlayerID, "c002")
	require.NoError(t, err)
	assert.Equal(t, types.AccessSkillLocked, result.Access.State)
	assert.NotEmpty(t, result.Access.Message)
	assert.Equal(t, []string{"Painter"}, result.Access.SuggestedCharacters)

	// A locked scan records nothing.
	loaded, err := manager.GetPlayer(player.PlayerID)
	require.NoError(t, err)
	assert.False(t, loaded.HasScanned("c002"))
}

func TestUnlockClue(t *testing.T) {
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "bob"))

	// Test case 1: wrong code
	_, err = manager.UnlockClue(player.PlayerID, "c002", "0134")
	assert.ErrorIs(t, err, ErrWrongCode)

	// Test case 2: correct code in scrambled order
	result, err := manager.UnlockClue(player.PlayerID, "c002", "7520")
	require.NoError(t, err)
	assert.Equal(t, types.AccessUnlocked, result.Access.State)
	assert.True(t, result.FirstDiscovery)
	assert.Equal(t, "main_quest", result.QuestAdvanced)

	// Test case 3: the bypass is permanent, overriding gate and skills
	scan, err := manager.ScanClue(player.PlayerID, "c002")
	require.NoError(t, err)
	assert.Equal(t, types.AccessUnlocked, scan.Access.State)
	assert.False(t, scan.FirstDiscovery)

	// Test case 4: clue without a code cannot be code-unlocked
	_, err = manager.UnlockClue(player.PlayerID, "c001", "0257")
	assert.ErrorIs(t, err, ErrNoUnlockCode)
}

func TestProgress(t *testing.T) {
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "alice"))

	_, err = manager.ScanClue(player.PlayerID, "c001")
	require.NoError(t, err)
	_, err = manager.ScanClue(player.PlayerID, "g001")
	require.NoError(t, err)
	_, err = manager.ScanClue(player.PlayerID, "c002")
	require.NoError(t, err)

	progress, err := manager.Progress(player.PlayerID)
	require.NoError(t, err)
	require.Len(t, progress, 2)

	// Main quest first, both key clues counted.
	assert.Equal(t, "main_quest", progress[0].Hashtag)
	assert.Equal(t, 2, progress[0].Discovered)
	assert.Equal(t, 2, progress[0].Total)

	// The shared key clue also counted toward the side quest.
	assert.Equal(t, "alice_side_quest", progress[1].Hashtag)
	assert.Equal(t, 1, progress[1].Discovered)
	assert.Equal(t, 1, progress[1].Total)
}

func TestResetPlayer(t *testing.T) {
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	_, err = manager.ScanClue(player.PlayerID, "c001")
	require.NoError(t, err)

	require.NoError(t, manager.ResetPlayer(player.PlayerID))
	_, err = manager.GetPlayer(player.PlayerID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestConcurrentScansDoNotDropDiscoveries(t *testing.T) {
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "alice"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.ScanClue(player.PlayerID, "c001")
			assert.NoError(t, err)
			_, err = manager.ScanClue(player.PlayerID, "g001")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := manager.GetPlayer(player.PlayerID)
	require.NoError(t, err)
	assert.Len(t, loaded.Scanned[types.ScannedAll], 2)
	assert.Len(t, loaded.Scanned["main_quest"], 1)
	assert.Len(t, loaded.UnlockedActs, 1)
}

func TestConcurrentScansAndProgressReads(t *testing.T) {
	// Progress reads must never observe a scan's state mutations
	// mid-flight, including in the degraded in-memory mode.
	manager := testManager()
	player, err := manager.RegisterPlayer("Test Player")
	require.NoError(t, err)
	require.NoError(t, manager.SelectCharacter(player.PlayerID, "alice"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.ScanClue(player.PlayerID, "c001")
			assert.NoError(t, err)
			_, err = manager.ScanClue(player.PlayerID, "g001")
			assert.NoError(t, err)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			progress, err := manager.Progress(player.PlayerID)
			assert.NoError(t, err)
			assert.Len(t, progress, 2)
			loaded, err := manager.GetPlayer(player.PlayerID)
			assert.NoError(t, err)
			assert.NotNil(t, loaded)
		}()
	}
	wg.Wait()

	progress, err := manager.Progress(player.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, "main_quest", progress[0].Hashtag)
	assert.Equal(t, 1, progress[0].Discovered)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "0257", normalizeCode("0257"))
	assert.Equal(t, "0257", normalizeCode("7520"))
	assert.Equal(t, "0257", normalizeCode("75200"))
	assert.Equal(t, "0257", normalizeCode("0-2-5-7"))
	assert.Equal(t, "", normalizeCode(""))
}
