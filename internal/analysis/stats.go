package analysis

import (
	"slices"

	"github.com/Clemtourte/tft-app-project/internal/models"
)

// PlacementStats summarizes a set of placements. Rates are percentages.
type PlacementStats struct {
	Count      int
	Average    float64
	Top4Count  int
	Top4Rate   float64
	WinCount   int
	WinRate    float64
	Placements []int // input order
}

// Sorted returns the placements in ascending order
func (s PlacementStats) Sorted() []int {
	out := slices.Clone(s.Placements)
	slices.Sort(out)
	return out
}

// ComputePlacementStats computes average, top-4 rate (placement <= 4) and
// win rate (placement == 1). An empty input gives zero stats.
func ComputePlacementStats(placements []int) PlacementStats {
	stats := PlacementStats{
		Count:      len(placements),
		Placements: slices.Clone(placements),
	}
	if stats.Count == 0 {
		return stats
	}

	sum := 0
	for _, p := range placements {
		sum += p
		if p <= 4 {
			stats.Top4Count++
		}
		if p == 1 {
			stats.WinCount++
		}
	}

	n := float64(stats.Count)
	stats.Average = float64(sum) / n
	stats.Top4Rate = float64(stats.Top4Count) / n * 100
	stats.WinRate = float64(stats.WinCount) / n * 100

	return stats
}

func placementsOf(matches []models.PlayerMatchView) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Placement
	}
	return out
}

// GameTypeStats is the placement summary of one queue
type GameTypeStats struct {
	GameType string
	Stats    PlacementStats
}

// PlayerStats is the overall and per game type summary of a player
type PlayerStats struct {
	Name       string
	Overall    PlacementStats
	ByGameType []GameTypeStats
}

// UserStats summarizes a player's placements overall and per game type.
// Ranked and Double Up come first, any other queue follows by name.
func UserStats(matches []models.PlayerMatchView) PlayerStats {
	stats := PlayerStats{Overall: ComputePlacementStats(placementsOf(matches))}
	if len(matches) > 0 {
		stats.Name = matches[0].RiotIDGameName
	}

	byType := make(map[string][]int)
	for _, m := range matches {
		byType[m.GameType] = append(byType[m.GameType], m.Placement)
	}

	order := []string{"standard", "pairs"}
	var others []string
	for gameType := range byType {
		if !slices.Contains(order, gameType) {
			others = append(others, gameType)
		}
	}
	slices.Sort(others)

	for _, gameType := range append(order, others...) {
		if placements, ok := byType[gameType]; ok {
			stats.ByGameType = append(stats.ByGameType, GameTypeStats{
				GameType: gameType,
				Stats:    ComputePlacementStats(placements),
			})
		}
	}

	return stats
}
