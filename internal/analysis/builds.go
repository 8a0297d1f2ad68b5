package analysis

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Clemtourte/tft-app-project/internal/models"
)

// MinBuildCount is the number of games a build needs before it is reported
const MinBuildCount = 2

// Build is one item combination played on a champion
type Build struct {
	Items      []string // sorted mapped names; empty for itemless units
	Count      int
	Placements []int
}

// Key identifies the build, e.g. "Deathblade + Infinity Edge"
func (b Build) Key() string {
	return strings.Join(b.Items, " + ")
}

// AveragePlacement of the games the build was played in
func (b Build) AveragePlacement() float64 {
	return ComputePlacementStats(b.Placements).Average
}

// ChampionBuilds are the reported builds of one champion, most played first
type ChampionBuilds struct {
	Champion string
	Builds   []Build
}

// ExplorerData summarizes everything a player fielded
type ExplorerData struct {
	Matches int
	Builds  []ChampionBuilds
	Items   []string // distinct mapped item names, sorted
	Traits  []string // distinct "<units> <trait>" of active traits, sorted
}

// AnalyzeExplorerData groups every unit by champion and sorted item set.
// Only builds played at least MinBuildCount times are reported.
func (a *Analyzer) AnalyzeExplorerData(matches []models.PlayerMatchView) *ExplorerData {
	builds := make(map[string]map[string]*Build)
	items := make(map[string]struct{})
	traits := make(map[string]struct{})

	for _, m := range matches {
		for _, unit := range m.Units {
			champion := a.names.Champion(unit.CharacterID)

			unitItems := a.names.ItemNames(unit.ItemNames)
			for _, item := range unitItems {
				items[item] = struct{}{}
			}
			slices.Sort(unitItems)

			b := Build{Items: unitItems}
			byKey, ok := builds[champion]
			if !ok {
				byKey = make(map[string]*Build)
				builds[champion] = byKey
			}
			existing, ok := byKey[b.Key()]
			if !ok {
				existing = &b
				byKey[b.Key()] = existing
			}
			existing.Count++
			existing.Placements = append(existing.Placements, m.Placement)
		}

		for _, trait := range a.names.ActiveTraits(m.Traits) {
			traits[trait] = struct{}{}
		}
	}

	data := &ExplorerData{
		Matches: len(matches),
		Items:   sortedKeys(items),
		Traits:  sortedKeys(traits),
	}

	for champion, byKey := range builds {
		var reported []Build
		for _, b := range byKey {
			if b.Count >= MinBuildCount {
				reported = append(reported, *b)
			}
		}
		if len(reported) == 0 {
			continue
		}
		slices.SortFunc(reported, func(x, y Build) int {
			return cmp.Or(cmp.Compare(y.Count, x.Count), cmp.Compare(x.Key(), y.Key()))
		})
		data.Builds = append(data.Builds, ChampionBuilds{Champion: champion, Builds: reported})
	}

	// Champions ordered by their most played build
	slices.SortFunc(data.Builds, func(x, y ChampionBuilds) int {
		return cmp.Or(cmp.Compare(y.Builds[0].Count, x.Builds[0].Count), cmp.Compare(x.Champion, y.Champion))
	})

	return data
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
