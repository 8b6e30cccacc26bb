// Package content loads the authored game data: clues, quests, the character
// roster, and the lock-message templates. Content is read once at startup and
// immutable afterwards.
package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/door66/lost-souls/internal/skill"
	"github.com/door66/lost-souls/internal/types"
)

// storyGate names the clues whose discovery opens an act.
type storyGate struct {
	Name  string   `yaml:"name"`
	Clues []string `yaml:"clues"`
}

// Library is the loaded content set with its derived indexes.
type Library struct {
	Clues      map[string]*types.Clue
	Quests     map[string]*types.Quest // keyed by hashtag
	Characters []types.Character
	Templates  *types.MessageTemplates

	// MainQuest is the hashtag of the one main quest.
	MainQuest string

	// SideQuests maps character id to that character's side-quest hashtag.
	SideQuests map[string]string
}

// Load reads a content directory laid out as clues/ (recursive), quests/,
// characters/, and refs/ (messages.yaml, story_gates.yaml). Structural
// defects in the content (duplicate ids, hashtag collisions) are errors;
// missing optional files degrade with a warning.
func Load(dir, mainQuest string, logger *zap.Logger) (*Library, error) {
	lib := &Library{
		Clues:      make(map[string]*types.Clue),
		Quests:     make(map[string]*types.Quest),
		SideQuests: make(map[string]string),
		MainQuest:  mainQuest,
	}

	if err := lib.loadClues(filepath.Join(dir, "clues")); err != nil {
		return nil, err
	}
	if err := lib.loadQuests(filepath.Join(dir, "quests")); err != nil {
		return nil, err
	}
	if err := lib.loadCharacters(filepath.Join(dir, "characters")); err != nil {
		return nil, err
	}
	if err := lib.loadTemplates(filepath.Join(dir, "refs", "messages.yaml"), logger); err != nil {
		return nil, err
	}
	if err := lib.applyStoryGates(filepath.Join(dir, "refs", "story_gates.yaml"), logger); err != nil {
		return nil, err
	}

	if _, ok := lib.Quests[mainQuest]; !ok && len(lib.Quests) > 0 {
		return nil, fmt.Errorf("no quest with main hashtag %q", mainQuest)
	}

	lib.deriveQuestTotals()
	lib.deriveAccessChars()

	logger.Info("Loaded content",
		zap.Int("clues", len(lib.Clues)),
		zap.Int("quests", len(lib.Quests)),
		zap.Int("characters", len(lib.Characters)))

	return lib, nil
}

// Clue retrieves a clue by id.
func (lib *Library) Clue(id string) (*types.Clue, bool) {
	clue, ok := lib.Clues[id]
	return clue, ok
}

// QuestList returns all quests, main quest first, then by hashtag.
func (lib *Library) QuestList() []*types.Quest {
	quests := make([]*types.Quest, 0, len(lib.Quests))
	for _, q := range lib.Quests {
		quests = append(quests, q)
	}
	sort.Slice(quests, func(i, j int) bool {
		if (quests[i].Hashtag == lib.MainQuest) != (quests[j].Hashtag == lib.MainQuest) {
			return quests[i].Hashtag == lib.MainQuest
		}
		return quests[i].Hashtag < quests[j].Hashtag
	})
	return quests
}

// Character retrieves a roster member by id.
func (lib *Library) Character(id string) (types.Character, bool) {
	for _, ch := range lib.Characters {
		if ch.ID == id {
			return ch, true
		}
	}
	return types.Character{}, false
}

func (lib *Library) loadClues(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to read clues directory: %w", err)
		}
		if d.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read clue file %s: %w", path, err)
		}
		var clue types.Clue
		if err := yaml.Unmarshal(data, &clue); err != nil {
			return fmt.Errorf("failed to parse clue file %s: %w", path, err)
		}
		if clue.ID == "" {
			return fmt.Errorf("clue file %s has no id", path)
		}
		if _, exists := lib.Clues[clue.ID]; exists {
			return fmt.Errorf("duplicate clue id %q in %s", clue.ID, path)
		}
		lib.Clues[clue.ID] = &clue
		return nil
	})
}

func (lib *Library) loadQuests(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read quests directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read quest file %s: %w", entry.Name(), err)
		}
		var q types.Quest
		if err := yaml.Unmarshal(data, &q); err != nil {
			return fmt.Errorf("failed to parse quest file %s: %w", entry.Name(), err)
		}
		if q.Hashtag == "" {
			q.Hashtag = q.ID
		}
		if _, exists := lib.Quests[q.Hashtag]; exists {
			return fmt.Errorf("duplicate quest hashtag %q in %s", q.Hashtag, entry.Name())
		}
		lib.Quests[q.Hashtag] = &q
		if q.Character != "" {
			lib.SideQuests[q.Character] = q.Hashtag
		}
	}
	return nil
}

func (lib *Library) loadCharacters(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read characters directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read character file %s: %w", entry.Name(), err)
		}
		var ch types.Character
		if err := yaml.Unmarshal(data, &ch); err != nil {
			return fmt.Errorf("failed to parse character file %s: %w", entry.Name(), err)
		}
		if ch.ID == "" {
			return fmt.Errorf("character file %s has no id", entry.Name())
		}
		lib.Characters = append(lib.Characters, ch)
	}
	sort.Slice(lib.Characters, func(i, j int) bool {
		return lib.Characters[i].ID < lib.Characters[j].ID
	})
	return nil
}

func (lib *Library) loadTemplates(path string, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Playable without templates: the composer falls back to its
		// fixed message.
		logger.Warn("No message templates found", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read message templates: %w", err)
	}
	var tmpl types.MessageTemplates
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return fmt.Errorf("failed to parse message templates: %w", err)
	}
	lib.Templates = &tmpl
	return nil
}

// applyStoryGates reverse-maps the gates file (act key to gate clue ids) onto
// the clues, so a gate clue knows which act its discovery opens.
func (lib *Library) applyStoryGates(path string, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Warn("No story gates found", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read story gates: %w", err)
	}
	var gates map[string]storyGate
	if err := yaml.Unmarshal(data, &gates); err != nil {
		return fmt.Errorf("failed to parse story gates: %w", err)
	}
	for act, gate := range gates {
		for _, clueID := range gate.Clues {
			clue, ok := lib.Clues[clueID]
			if !ok {
				logger.Warn("Story gate references unknown clue",
					zap.String("act", act),
					zap.String("gate", gate.Name),
					zap.String("clue_id", clueID))
				continue
			}
			clue.UnlocksAct = act
		}
	}
	return nil
}

func (lib *Library) deriveQuestTotals() {
	for _, clue := range lib.Clues {
		for _, hashtag := range clue.IsKey {
			if q, ok := lib.Quests[hashtag]; ok {
				q.Total++
			}
		}
	}
}

// deriveAccessChars fills in, for every skill-locked clue, the player
// characters able to read it. Uses the same matcher as the runtime resolver,
// so the suggestion list and the actual access decision cannot drift apart.
func (lib *Library) deriveAccessChars() {
	for _, clue := range lib.Clues {
		if len(clue.Skills) == 0 || len(clue.AccessChars) > 0 {
			continue
		}
		clue.AccessChars = skill.CharactersWithAccess(clue.Skills, lib.Characters)
	}
}
