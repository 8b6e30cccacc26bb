// Package game coordinates the hunt: it resolves clue access, records
// discoveries, applies octogram bypasses, and reports quest progress, reading
// and writing player state through the persistence store.
package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/door66/lost-souls/config"
	"github.com/door66/lost-souls/internal/access"
	"github.com/door66/lost-souls/internal/content"
	"github.com/door66/lost-souls/internal/interfaces"
	"github.com/door66/lost-souls/internal/message"
	"github.com/door66/lost-souls/internal/quest"
	"github.com/door66/lost-souls/internal/skill"
	"github.com/door66/lost-souls/internal/state"
	"github.com/door66/lost-souls/internal/types"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrClueNotFound      = errors.New("clue not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrNotPlayable       = errors.New("character is not playable")
	ErrNoUnlockCode      = errors.New("clue has no unlock code")
	ErrWrongCode         = errors.New("wrong unlock code")
)

// Manager handles the hunt state and operations.
type Manager struct {
	library  *content.Library
	store    state.Store
	resolver *access.Resolver
	cfg      config.Config
	Logger   *zap.Logger

	// Per-player critical sections: two near-simultaneous scans for the
	// same player must not race and drop a discovery.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Ensure Manager satisfies the interfaces.HuntManager interface
var _ interfaces.HuntManager = (*Manager)(nil)

// NewManager creates a hunt manager over loaded content and a state store.
func NewManager(cfg config.Config, library *content.Library, store state.Store) *Manager {
	return &Manager{
		library:  library,
		store:    store,
		resolver: access.New(cfg.Game.OpenActs, library.Templates, message.RandomPicker()),
		cfg:      cfg,
		Logger:   zap.NewNop(), // Will be set by the server
		locks:    make(map[string]*sync.Mutex),
	}
}

// SetLogger replaces the manager's logger.
func (m *Manager) SetLogger(logger *zap.Logger) {
	m.Logger = logger
}

// RegisterPlayer creates a fresh player record and persists it.
func (m *Manager) RegisterPlayer(name string) (*types.PlayerState, error) {
	playerState := types.NewPlayerState(uuid.New().String(), name)
	if err := m.store.Put(playerState.PlayerID, playerState); err != nil {
		return nil, fmt.Errorf("failed to save player state: %w", err)
	}

	m.Logger.Info("Registered player",
		zap.String("player_id", playerState.PlayerID),
		zap.String("name", name))

	return playerState, nil
}

// GetPlayer retrieves a player's persisted state. Stores hand back private
// copies, so the result is a stable snapshot; the mutating operations acquire
// the player lock around their read-modify-write instead. Also called inside
// already-locked sections, so it must not lock itself.
func (m *Manager) GetPlayer(playerID string) (*types.PlayerState, error) {
	playerState, err := m.store.Get(playerID)
	if err != nil {
		return nil, err
	}
	if playerState == nil {
		return nil, ErrPlayerNotFound
	}
	return playerState, nil
}

// SelectCharacter makes a roster character the player's active identity.
// The player's skill set is replaced wholesale, never merged.
func (m *Manager) SelectCharacter(playerID, characterID string) error {
	unlock := m.lockPlayer(playerID)
	defer unlock()

	playerState, err := m.GetPlayer(playerID)
	if err != nil {
		return err
	}

	character, ok := m.library.Character(characterID)
	if !ok {
		return ErrCharacterNotFound
	}
	if !character.IsPlayer {
		return ErrNotPlayable
	}

	playerState.CharacterID = characterID
	playerState.UserSkills = skill.Flatten(character.Skills)

	if err := m.store.Put(playerID, playerState); err != nil {
		return fmt.Errorf("failed to save player state: %w", err)
	}

	m.Logger.Info("Character selected",
		zap.String("player_id", playerID),
		zap.String("character_id", characterID),
		zap.Strings("skills", playerState.UserSkills))

	return nil
}

// ScanClue resolves a clue for a player and, when it comes back unlocked,
// records the discovery and reports which quest advanced.
func (m *Manager) ScanClue(playerID, clueID string) (*types.ScanResult, error) {
	unlock := m.lockPlayer(playerID)
	defer unlock()

	playerState, err := m.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	clue, ok := m.library.Clue(clueID)
	if !ok {
		return nil, ErrClueNotFound
	}

	result := &types.ScanResult{
		ClueID: clue.ID,
		Title:  clue.Title,
		Access: m.resolver.Resolve(clue, playerState),
	}

	if result.Access.State == types.AccessUnlocked {
		result.FirstDiscovery = quest.RecordDiscovery(clue, playerState)
		if result.FirstDiscovery {
			if advanced, ok := quest.AdvancedBy(clue, m.library.MainQuest, m.library.SideQuests, playerState.CharacterID); ok {
				result.QuestAdvanced = advanced
			}
			if err := m.store.Put(playerID, playerState); err != nil {
				return nil, fmt.Errorf("failed to save player state: %w", err)
			}
		}
	}

	m.Logger.Info("Clue scanned",
		zap.String("player_id", playerID),
		zap.String("clue_id", clueID),
		zap.String("state", string(result.Access.State)),
		zap.Bool("first_discovery", result.FirstDiscovery),
		zap.String("quest_advanced", result.QuestAdvanced))

	return result, nil
}

// UnlockClue applies an octogram bypass: a correct code grants permanent
// access to the clue regardless of gates and skills, and counts as a
// discovery. Submitted codes are normalized before comparison, since players
// pick the four symbols in any order.
func (m *Manager) UnlockClue(playerID, clueID, code string) (*types.ScanResult, error) {
	unlock := m.lockPlayer(playerID)
	defer unlock()

	playerState, err := m.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	clue, ok := m.library.Clue(clueID)
	if !ok {
		return nil, ErrClueNotFound
	}
	if clue.UnlockCode == "" {
		return nil, ErrNoUnlockCode
	}
	if normalizeCode(code) != clue.UnlockCode {
		m.Logger.Info("Wrong unlock code",
			zap.String("player_id", playerID),
			zap.String("clue_id", clueID))
		return nil, ErrWrongCode
	}

	quest.UnlockBypass(clueID, playerState)

	result := &types.ScanResult{
		ClueID: clue.ID,
		Title:  clue.Title,
		Access: types.AccessResult{State: types.AccessUnlocked},
	}
	result.FirstDiscovery = quest.RecordDiscovery(clue, playerState)
	if result.FirstDiscovery {
		if advanced, ok := quest.AdvancedBy(clue, m.library.MainQuest, m.library.SideQuests, playerState.CharacterID); ok {
			result.QuestAdvanced = advanced
		}
	}

	if err := m.store.Put(playerID, playerState); err != nil {
		return nil, fmt.Errorf("failed to save player state: %w", err)
	}

	m.Logger.Info("Clue unlocked by code",
		zap.String("player_id", playerID),
		zap.String("clue_id", clueID),
		zap.Bool("first_discovery", result.FirstDiscovery))

	return result, nil
}

// Progress reports every quest's standing for a player, main quest first.
// Runs inside the player's critical section so the counts come from one
// consistent snapshot, never from a scan in progress.
func (m *Manager) Progress(playerID string) ([]types.QuestProgress, error) {
	unlock := m.lockPlayer(playerID)
	defer unlock()

	playerState, err := m.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	quests := m.library.QuestList()
	progress := make([]types.QuestProgress, 0, len(quests))
	for _, q := range quests {
		progress = append(progress, types.QuestProgress{
			Hashtag:    q.Hashtag,
			Title:      q.Title,
			Objective:  q.Objective,
			Discovered: quest.Discovered(playerState, q.Hashtag),
			Total:      q.Total,
		})
	}
	return progress, nil
}

// ResetPlayer wipes a player's persisted state in one atomic operation.
func (m *Manager) ResetPlayer(playerID string) error {
	unlock := m.lockPlayer(playerID)
	defer unlock()

	if err := m.store.Delete(playerID); err != nil {
		return fmt.Errorf("failed to reset player state: %w", err)
	}

	m.Logger.Info("Player reset", zap.String("player_id", playerID))
	return nil
}

// Library exposes the loaded content, read-only.
func (m *Manager) Library() *content.Library {
	return m.library
}

// lockPlayer acquires the player's critical section and returns its release.
func (m *Manager) lockPlayer(playerID string) func() {
	m.mu.Lock()
	lock, ok := m.locks[playerID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[playerID] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// normalizeCode reduces a submitted octogram selection to the stored form:
// unique digits, ascending. "7520" and "0257" are the same selection.
func normalizeCode(code string) string {
	seen := make(map[rune]bool)
	digits := make([]rune, 0, len(code))
	for _, r := range code {
		if r < '0' || r > '9' || seen[r] {
			continue
		}
		seen[r] = true
		digits = append(digits, r)
	}
	sort.Slice(digits, func(i, j int) bool { return digits[i] < digits[j] })
	var b strings.Builder
	for _, r := range digits {
		b.WriteRune(r)
	}
	return b.String()
}
