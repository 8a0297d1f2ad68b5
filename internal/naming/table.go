package naming

import (
	"fmt"

	"github.com/Clemtourte/tft-app-project/internal/models"
)

// Table maps parsed tokens to display names. Unmapped tokens pass through.
type Table struct {
	Champions map[string]string
	Items     map[string]string
	Traits    map[string]string
	GameTypes map[string]string
}

// DefaultTable returns a fresh copy of the built-in rename tables
func DefaultTable() *Table {
	return &Table{
		Champions: map[string]string{},
		Items:     copyMap(defaultItems),
		Traits:    copyMap(defaultTraits),
		GameTypes: copyMap(defaultGameTypes),
	}
}

// Internal item names that differ from their in-game names
var defaultItems = map[string]string{
	"MadredsBloodrazor":  "Giant Slayer",
	"PowerGauntlet":      "Striker's Flail",
	"RunaansHurricane":   "Kraken's Fury",
	"SpectralGauntlet":   "Evenshroud",
	"StatikkShiv":        "Void Staff",
	"RapidFireCannon":    "Red Buff",
	"GuardianAngel":      "Edge of Night",
	"FrozenHeart":        "Protector's Vow",
	"Redemption":         "Spirit Visage",
	"UnstableConcoction": "Hand of Justice",
	"NightHarvester":     "Steadfast Heart",
	"Leviathan":          "Nashor's Tooth",
	"Artifact":           "Blighting Jewel",
}

var defaultTraits = map[string]string{
	"ElTigre":        "The Champ",
	"GemForce":       "Crystal Gambit",
	"SentaiRanger":   "Mighty Mech",
	"Spellslinger":   "Sorcerer",
	"OldMentor":      "Mentor",
	"Empyrean":       "Wraith",
	"DragonFist":     "Stance Master",
	"Destroyer":      "Executioner",
	"StarGuardian":   "Star Guardian",
	"SoulFighter":    "Soul Fighter",
	"TheCrew":        "The Crew",
	"BattleAcademia": "Battle Academia",
	"SupremeCells":   "Supreme Cells",
	"ReddBuff":       "Sunfire Cape",
}

var defaultGameTypes = map[string]string{
	"standard": "Ranked",
	"pairs":    "Double Up",
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func lookup(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

// Champion returns the display name for a character id
func (t *Table) Champion(characterID string) string {
	token, _ := ChampionToken(characterID)
	return lookup(t.Champions, token)
}

// Item returns the display name for an item id, ok=false if the id is malformed
func (t *Table) Item(itemID string) (string, bool) {
	token, ok := ItemToken(itemID)
	if !ok {
		return "", false
	}
	return lookup(t.Items, token), true
}

// ItemNames maps a unit's item ids, dropping malformed ones
func (t *Table) ItemNames(itemIDs []string) []string {
	items := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if name, ok := t.Item(id); ok {
			items = append(items, name)
		}
	}
	return items
}

// Trait returns the display name for a trait id
func (t *Table) Trait(traitID string) string {
	token, _ := TraitToken(traitID)
	return lookup(t.Traits, token)
}

// GameType returns the display name for a tft_game_type value
func (t *Table) GameType(gameType string) string {
	return lookup(t.GameTypes, gameType)
}

// TraitDescription formats an active trait as "<num_units> <name>"
func (t *Table) TraitDescription(trait models.Trait) string {
	return fmt.Sprintf("%d %s", trait.NumUnits, t.Trait(trait.Name))
}

// ActiveTraits returns descriptions of all traits with a positive tier
func (t *Table) ActiveTraits(traits []models.Trait) []string {
	var active []string
	for _, trait := range traits {
		if trait.IsActive() {
			active = append(active, t.TraitDescription(trait))
		}
	}
	return active
}
