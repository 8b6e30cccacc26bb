// Package message composes the player-facing explanations shown when a clue
// is locked behind missing expertise.
package message

import (
	"math/rand"
	"strings"
	"time"

	"github.com/door66/lost-souls/internal/skill"
	"github.com/door66/lost-souls/internal/types"
)

// Fallback is returned whenever the template table is missing or unusable.
const Fallback = "You don't have the required skills to access this clue."

// fallbackPhrase stands in when no phrase resolves for any missing skill.
const fallbackPhrase = "the required expertise"

// placeholder is the single substitution slot in wrapper templates.
const placeholder = "{skills}"

// defaultWrapper keys the wrapper variants used when a clue type has none.
const defaultWrapper = "_default"

// Picker selects one element from a non-empty list. Injected so message
// composition stays deterministic under test.
type Picker func(options []string) string

// RandomPicker returns a Picker backed by a seeded random source.
func RandomPicker() Picker {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(options []string) string {
		return options[rng.Intn(len(options))]
	}
}

// ComposeLock builds the lock message for a clue of the given type whose
// requirements the player does not meet. Malformed or missing template data
// degrades to the fixed fallback string; this never fails.
func ComposeLock(missing []string, clueType string, tmpl *types.MessageTemplates, pick Picker) string {
	if tmpl == nil || tmpl.SkillPhrases == nil || tmpl.Wrappers == nil || pick == nil {
		return Fallback
	}

	phrases := make([]string, 0, len(missing))
	for _, id := range missing {
		parsed, ok := skill.Parse(id)
		if !ok {
			continue
		}
		options := lookupPhrases(tmpl.SkillPhrases, parsed)
		if len(options) == 0 {
			continue
		}
		phrases = append(phrases, pick(options))
	}
	if len(phrases) == 0 {
		phrases = []string{fallbackPhrase}
	}

	wrappers := tmpl.Wrappers[clueType]
	if len(wrappers) == 0 {
		wrappers = tmpl.Wrappers[defaultWrapper]
	}
	if len(wrappers) == 0 {
		return Fallback
	}

	return strings.ReplaceAll(pick(wrappers), placeholder, JoinWithOr(phrases))
}

func lookupPhrases(table map[string]types.PhraseGroup, parsed skill.Skill) []string {
	group, ok := table[parsed.Category]
	if !ok {
		return nil
	}
	if parsed.Level > 0 {
		return group.Levels[parsed.Level]
	}
	return group.Flat
}

// JoinWithOr joins items as an Oxford-comma alternative list: one item is
// itself, two are "A or B", three or more are "A, B, or C".
func JoinWithOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
	}
}
