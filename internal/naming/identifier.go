// Package naming turns TFT game identifiers into display names.
//
// Riot identifiers are underscore-delimited:
//
//	identifier := set "_" segment { "_" segment }
//	set        := "TFT" [ digits ]                          e.g. TFT, TFT15
//	champion   := set "_" name                              TFT15_Jhin
//	trait      := set "_" name                              TFT15_StarGuardian
//	item       := set "_" category "_" name { "_" segment } TFT_Item_Deathblade
//
// Champions and traits use the segment right after the set token. Items need
// at least three segments and use the last one, so qualified ids such as
// TFT_Item_Artifact_Deathcap resolve to Deathcap. Segments must be non-empty.
package naming

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned for identifiers that do not follow the grammar
var ErrMalformed = errors.New("malformed identifier")

// Identifier is a parsed TFT identifier
type Identifier struct {
	Raw      string
	Set      string   // leading set token, e.g. TFT15
	Segments []string // everything after the set token
}

// Parse splits an identifier into its set token and segments
func Parse(id string) (Identifier, error) {
	parts := strings.Split(id, "_")
	if len(parts) < 2 {
		return Identifier{}, fmt.Errorf("%w: %q has no set prefix", ErrMalformed, id)
	}
	for _, p := range parts {
		if p == "" {
			return Identifier{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformed, id)
		}
	}
	return Identifier{Raw: id, Set: parts[0], Segments: parts[1:]}, nil
}

// Name returns the segment following the set token
func (i Identifier) Name() string {
	return i.Segments[0]
}

// Last returns the final segment
func (i Identifier) Last() string {
	return i.Segments[len(i.Segments)-1]
}

// ChampionToken extracts the champion name from a character id.
// Malformed ids are returned unchanged with ok=false.
func ChampionToken(characterID string) (token string, ok bool) {
	id, err := Parse(characterID)
	if err != nil {
		return characterID, false
	}
	return id.Name(), true
}

// TraitToken extracts the trait name. Malformed ids are returned unchanged with ok=false.
func TraitToken(traitID string) (token string, ok bool) {
	id, err := Parse(traitID)
	if err != nil {
		return traitID, false
	}
	return id.Name(), true
}

// ItemToken extracts the item name. Ids with fewer than three segments
// yield ok=false and should be left out of item lists.
func ItemToken(itemID string) (token string, ok bool) {
	id, err := Parse(itemID)
	if err != nil || len(id.Segments) < 2 {
		return "", false
	}
	return id.Last(), true
}
