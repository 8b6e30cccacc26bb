package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// AccessState is the visibility decision for a clue.
type AccessState string

const (
	// AccessUnlocked means the clue content is visible.
	AccessUnlocked AccessState = "unlocked"
	// AccessGated means the clue belongs to a story act the player has not reached.
	AccessGated AccessState = "gated"
	// AccessSkillLocked means the active character lacks the required expertise.
	AccessSkillLocked AccessState = "skill_locked"
)

// AccessResult is the outcome of resolving a clue against a player's state.
type AccessResult struct {
	State AccessState `json:"state"`

	// Message explains a skill lock to the player. Empty unless skill-locked.
	Message string `json:"message,omitempty"`

	// SuggestedCharacters lists characters able to read the clue. Empty unless skill-locked.
	SuggestedCharacters []string `json:"suggested_characters,omitempty"`
}

// Clue is one unit of discoverable content tied to a physical scannable prop.
// Clues are authored out-of-band and read-only at runtime.
type Clue struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Type     string   `json:"type" yaml:"type"`
	Act      string   `json:"act" yaml:"act"`
	Skills   []string `json:"skills" yaml:"skills"`
	Hashtags []string `json:"hashtags" yaml:"hashtags"`

	// IsKey lists quest hashtags this clue counts toward once revealed.
	IsKey []string `json:"is_key" yaml:"is_key"`

	// UnlockCode is the octogram bypass secret: four distinct symbol
	// indices 0-7, stored sorted ("0257"). Empty means no bypass exists.
	UnlockCode string `json:"unlock_code" yaml:"unlock_code"`

	// UnlocksAct marks a story gate clue: discovering it opens the act.
	// Populated from the story gates reference during content loading.
	UnlocksAct string `json:"unlocks_act" yaml:"unlocks_act"`

	// AccessChars holds the display names of player characters whose
	// skills satisfy this clue's requirements. Computed at load time.
	AccessChars []string `json:"access_chars" yaml:"access_chars"`
}

// CharacterSkills accepts both content shapes: the current flat list of
// suffixed identifiers and the legacy nested expert/basic/personal object.
type CharacterSkills struct {
	Flat     []string `json:"flat,omitempty" yaml:"-"`
	Expert   []string `json:"expert,omitempty" yaml:"expert"`
	Basic    []string `json:"basic,omitempty" yaml:"basic"`
	Personal []string `json:"personal,omitempty" yaml:"personal"`
}

// UnmarshalYAML decodes either a sequence (flat) or a mapping (nested).
func (cs *CharacterSkills) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&cs.Flat)
	case yaml.MappingNode:
		var nested struct {
			Expert   []string `yaml:"expert"`
			Basic    []string `yaml:"basic"`
			Personal []string `yaml:"personal"`
		}
		if err := node.Decode(&nested); err != nil {
			return err
		}
		cs.Expert = nested.Expert
		cs.Basic = nested.Basic
		cs.Personal = nested.Personal
		return nil
	}
	return fmt.Errorf("skills must be a list or an expert/basic/personal object, got %v", node.Kind)
}

// Character is one member of the roster. Only player characters can be
// embodied by guests; the rest exist for the narrative.
type Character struct {
	ID       string          `json:"id" yaml:"id"`
	Title    string          `json:"title" yaml:"title"`
	IsPlayer bool            `json:"is_player" yaml:"is_player"`
	Skills   CharacterSkills `json:"skills" yaml:"skills"`
}

// Quest is a tracked objective. Exactly one quest is the main quest; a quest
// with a Character is that character's private side quest.
type Quest struct {
	ID        string `json:"id" yaml:"id"`
	Hashtag   string `json:"hashtag" yaml:"hashtag"`
	Title     string `json:"title" yaml:"title"`
	Objective string `json:"objective" yaml:"objective"`
	Character string `json:"character" yaml:"character"`

	// Total is the number of key clues counting toward this quest,
	// derived from the loaded clue set.
	Total int `json:"total" yaml:"-"`
}

// PhraseGroup holds the lock-message phrases for one skill category: either
// a flat list (personal, level-0 skills) or per-level lists keyed level_N.
type PhraseGroup struct {
	Flat   []string
	Levels map[int][]string
}

// UnmarshalYAML decodes either a sequence or a level_N mapping.
func (pg *PhraseGroup) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&pg.Flat)
	case yaml.MappingNode:
		var keyed map[string][]string
		if err := node.Decode(&keyed); err != nil {
			return err
		}
		pg.Levels = make(map[int][]string, len(keyed))
		for key, phrases := range keyed {
			var level int
			if _, err := fmt.Sscanf(key, "level_%d", &level); err != nil {
				return fmt.Errorf("phrase key %q is not level_N", key)
			}
			pg.Levels[level] = phrases
		}
		return nil
	}
	return fmt.Errorf("phrases must be a list or a level_N object, got %v", node.Kind)
}

// MessageTemplates is the authored lock-message table: phrases per skill
// category plus wrapper templates per clue type (with a _default entry).
type MessageTemplates struct {
	SkillPhrases map[string]PhraseGroup `json:"skill_phrases" yaml:"skill_phrases"`
	Wrappers     map[string][]string    `json:"wrappers" yaml:"wrappers"`
}

// ScanResult is what a player sees after scanning a clue prop.
type ScanResult struct {
	ClueID string       `json:"clue_id"`
	Title  string       `json:"title"`
	Access AccessResult `json:"access"`

	// FirstDiscovery is true the first time this clue is revealed.
	FirstDiscovery bool `json:"first_discovery"`

	// QuestAdvanced names the quest whose counter this reveal advances
	// (main quest before side quest). Empty when nothing advances.
	QuestAdvanced string `json:"quest_advanced,omitempty"`
}

// QuestProgress is one quest's discovered/total standing for a player.
type QuestProgress struct {
	Hashtag    string `json:"hashtag"`
	Title      string `json:"title"`
	Objective  string `json:"objective"`
	Discovered int    `json:"discovered"`
	Total      int    `json:"total"`
}

// ScannedAll is the Scanned key recording every clue ever revealed,
// regardless of quest membership.
const ScannedAll = "all"

// StateVersion is the current player-state schema version.
const StateVersion = 1

// PlayerState is the one persisted, mutable record per player. Every field
// grows monotonically during play; only Reset wipes it, wholesale.
type PlayerState struct {
	Version     int       `json:"version"`
	PlayerID    string    `json:"player_id"`
	Name        string    `json:"name"`
	CharacterID string    `json:"character_id"`
	CreatedAt   time.Time `json:"created_at"`

	// UserSkills is the flat skill set of the active character. Replaced
	// wholesale on character switch, never merged.
	UserSkills []string `json:"user_skills"`

	// UnlockedClueIDs holds clues bypassed via the octogram puzzle.
	UnlockedClueIDs []string `json:"unlocked_clue_ids"`

	// UnlockedActs holds story acts opened by discovering gate clues.
	UnlockedActs []string `json:"unlocked_acts"`

	// Scanned maps quest hashtag to the clue ids counted toward it,
	// plus the ScannedAll entry.
	Scanned map[string][]string `json:"scanned"`
}

// NewPlayerState returns an empty state for a first visit.
func NewPlayerState(playerID, name string) *PlayerState {
	return &PlayerState{
		Version:         StateVersion,
		PlayerID:        playerID,
		Name:            name,
		CreatedAt:       time.Now(),
		UserSkills:      make([]string, 0),
		UnlockedClueIDs: make([]string, 0),
		UnlockedActs:    make([]string, 0),
		Scanned:         make(map[string][]string),
	}
}

// Normalize repairs nil collections after decoding, so callers never need
// nil checks on a loaded state.
func (ps *PlayerState) Normalize() {
	if ps.Version == 0 {
		ps.Version = StateVersion
	}
	if ps.UserSkills == nil {
		ps.UserSkills = make([]string, 0)
	}
	if ps.UnlockedClueIDs == nil {
		ps.UnlockedClueIDs = make([]string, 0)
	}
	if ps.UnlockedActs == nil {
		ps.UnlockedActs = make([]string, 0)
	}
	if ps.Scanned == nil {
		ps.Scanned = make(map[string][]string)
	}
}

// Clone returns a deep copy sharing no collections with the receiver, so a
// caller's copy cannot be mutated behind its back.
func (ps *PlayerState) Clone() *PlayerState {
	clone := *ps
	clone.UserSkills = append([]string(nil), ps.UserSkills...)
	clone.UnlockedClueIDs = append([]string(nil), ps.UnlockedClueIDs...)
	clone.UnlockedActs = append([]string(nil), ps.UnlockedActs...)
	clone.Scanned = make(map[string][]string, len(ps.Scanned))
	for hashtag, ids := range ps.Scanned {
		clone.Scanned[hashtag] = append([]string(nil), ids...)
	}
	clone.Normalize()
	return &clone
}

// HasUnlockedClue reports whether the clue was bypassed via puzzle solve.
func (ps *PlayerState) HasUnlockedClue(clueID string) bool {
	return contains(ps.UnlockedClueIDs, clueID)
}

// HasUnlockedAct reports whether the act was opened by a gate clue.
func (ps *PlayerState) HasUnlockedAct(act string) bool {
	return contains(ps.UnlockedActs, act)
}

// HasScanned reports whether the clue was ever revealed.
func (ps *PlayerState) HasScanned(clueID string) bool {
	return contains(ps.Scanned[ScannedAll], clueID)
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
