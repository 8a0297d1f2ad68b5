package analysis

import (
	"cmp"
	"slices"

	"github.com/Clemtourte/tft-app-project/internal/models"
)

// ChampionPerformance is the placement summary of games a champion was fielded in
type ChampionPerformance struct {
	Champion string
	Stats    PlacementStats
}

// AnalyzeChampionPerformance collects placements per champion, most played first.
// A champion fielded twice on one board counts twice.
func (a *Analyzer) AnalyzeChampionPerformance(matches []models.PlayerMatchView) []ChampionPerformance {
	placements := make(map[string][]int)
	for _, m := range matches {
		for _, unit := range m.Units {
			champion := a.names.Champion(unit.CharacterID)
			placements[champion] = append(placements[champion], m.Placement)
		}
	}

	out := make([]ChampionPerformance, 0, len(placements))
	for champion, p := range placements {
		out = append(out, ChampionPerformance{Champion: champion, Stats: ComputePlacementStats(p)})
	}
	slices.SortFunc(out, func(x, y ChampionPerformance) int {
		return cmp.Or(cmp.Compare(y.Stats.Count, x.Stats.Count), cmp.Compare(x.Champion, y.Champion))
	})

	return out
}

// ChampionCount is how many units of a champion a player fielded
type ChampionCount struct {
	Champion string
	Count    int
}

// MostPlayedChampions returns the n most fielded champions. n <= 0 returns all.
func (a *Analyzer) MostPlayedChampions(matches []models.PlayerMatchView, n int) []ChampionCount {
	counts := make(map[string]int)
	for _, m := range matches {
		for _, unit := range m.Units {
			counts[a.names.Champion(unit.CharacterID)]++
		}
	}

	out := make([]ChampionCount, 0, len(counts))
	for champion, c := range counts {
		out = append(out, ChampionCount{Champion: champion, Count: c})
	}
	slices.SortFunc(out, func(x, y ChampionCount) int {
		return cmp.Or(cmp.Compare(y.Count, x.Count), cmp.Compare(x.Champion, y.Champion))
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
