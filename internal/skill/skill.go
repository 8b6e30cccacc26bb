// Package skill parses skill identifiers and decides whether a character's
// expertise satisfies a clue's requirements.
package skill

import (
	"strconv"
	"strings"

	"github.com/door66/lost-souls/internal/types"
)

// metaPrefix marks roster-plumbing identifiers that are not real skills.
const metaPrefix = "is_character_"

// Skill is a parsed identifier: a category at a proficiency level.
// Level 0 means unconditional within the category (personal skills).
type Skill struct {
	Category string
	Level    int
}

// Parse splits an identifier of the form category_N into its category and
// level. An identifier without a numeric suffix is level 0. Returns false
// for identifiers that cannot name a skill (empty category).
func Parse(id string) (Skill, bool) {
	if id == "" {
		return Skill{}, false
	}
	idx := strings.LastIndex(id, "_")
	if idx > 0 && idx < len(id)-1 {
		if level, err := strconv.Atoi(id[idx+1:]); err == nil && level >= 0 {
			return Skill{Category: id[:idx], Level: level}, true
		}
	}
	return Skill{Category: id, Level: 0}, true
}

// Satisfies reports whether some skill in candidates has the required
// category at the required level or higher. Comparison is numeric, so a
// level 10 skill satisfies a level 2 requirement.
func Satisfies(required Skill, candidates []string) bool {
	for _, id := range candidates {
		owned, ok := Parse(id)
		if !ok {
			continue
		}
		if owned.Category == required.Category && owned.Level >= required.Level {
			return true
		}
	}
	return false
}

// HasAccess reports whether candidates satisfy at least one of the required
// identifiers. An empty requirement set is open to everyone. Requirements
// that fail to parse match nothing.
func HasAccess(required, candidates []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, id := range required {
		req, ok := Parse(id)
		if !ok {
			continue
		}
		if Satisfies(req, candidates) {
			return true
		}
	}
	return false
}

// Flatten normalizes a character's skills to the flat suffixed form the
// matcher works with: expert entries become _2, basic entries _1, personal
// entries stay bare. Entries that already carry a numeric suffix are kept
// as-is, and meta identifiers are dropped.
func Flatten(cs types.CharacterSkills) []string {
	flat := make([]string, 0, len(cs.Flat)+len(cs.Expert)+len(cs.Basic)+len(cs.Personal))
	appendWithLevel := func(ids []string, level int) {
		for _, id := range ids {
			if id == "" || strings.HasPrefix(id, metaPrefix) {
				continue
			}
			if level > 0 && !hasLevelSuffix(id) {
				id = id + "_" + strconv.Itoa(level)
			}
			flat = append(flat, id)
		}
	}
	appendWithLevel(cs.Flat, 0)
	appendWithLevel(cs.Expert, 2)
	appendWithLevel(cs.Basic, 1)
	appendWithLevel(cs.Personal, 0)
	return flat
}

func hasLevelSuffix(id string) bool {
	idx := strings.LastIndex(id, "_")
	if idx <= 0 || idx == len(id)-1 {
		return false
	}
	_, err := strconv.Atoi(id[idx+1:])
	return err == nil
}

// CharactersWithAccess filters the roster down to player characters whose
// skills satisfy the requirement set, returning display names with a leading
// definite article stripped. Pure reporting query, run at content-load time.
func CharactersWithAccess(required []string, roster []types.Character) []string {
	names := make([]string, 0)
	for _, ch := range roster {
		if !ch.IsPlayer {
			continue
		}
		if !HasAccess(required, Flatten(ch.Skills)) {
			continue
		}
		names = append(names, DisplayName(ch))
	}
	return names
}

// DisplayName strips the leading definite article from a character title.
func DisplayName(ch types.Character) string {
	name := strings.TrimPrefix(ch.Title, "The ")
	return strings.TrimPrefix(name, "the ")
}
