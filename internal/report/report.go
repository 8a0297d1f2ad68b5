// Package report renders analysis results as plain text.
package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Clemtourte/tft-app-project/internal/analysis"
	"github.com/Clemtourte/tft-app-project/internal/ingest"
	"github.com/Clemtourte/tft-app-project/internal/models"
	"github.com/Clemtourte/tft-app-project/internal/naming"
)

const (
	itemsPerRow  = 5
	traitsPerRow = 3
)

// DefaultMinGames hides champions fielded in fewer games from the performance table
const DefaultMinGames = 3

// Writer prints reports. The first write error is kept and returned by every
// later call.
type Writer struct {
	w     io.Writer
	names *naming.Table
	err   error
}

// New creates a report writer
func New(w io.Writer, names *naming.Table) *Writer {
	if names == nil {
		names = naming.DefaultTable()
	}
	return &Writer{w: w, names: names}
}

func (r *Writer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Players lists tracked players
func (r *Writer) Players(players []models.Player) error {
	if len(players) == 0 {
		r.printf("No tracked players\n")
		return r.err
	}
	r.printf("%-24s %s\n", "Riot ID", "PUUID")
	for _, p := range players {
		r.printf("%-24s %s\n", p.RiotID(), p.PUUID)
	}
	return r.err
}

// SyncResult summarizes one sync run
func (r *Writer) SyncResult(riotID string, res *ingest.Result) error {
	r.printf("Found %d new matches for %s\n", len(res.NewMatchIDs), riotID)
	r.printf("Stored %d matches in %d batches (stopped: %s)\n", res.Stored, res.Batches, res.StopReason)
	r.printf("Update complete\n")
	return r.err
}

// ExplorerResult prints the stats and per match details of a filtered query
func (r *Writer) ExplorerResult(res *analysis.ExplorerResult) error {
	s := res.Stats

	r.printf("\nExplorer Results:\n")
	r.printf(" Matches found: %d\n", s.Count)
	r.printf("Average placement: %.2f\n", s.Average)
	r.printf("Top 4 rate: %.2f%% (%d/%d)\n", s.Top4Rate, s.Top4Count, s.Count)
	r.printf("Win rate: %.2f%% (%d/%d)\n", s.WinRate, s.WinCount, s.Count)
	r.printf("Placements: %s\n", formatInts(s.Sorted()))

	r.printf("\nMatch details:\n")
	for i, m := range res.Matches {
		u := m.MatchedUnit
		r.printf(" %d. %s %d★ (%s) -> Placement %d\n", i+1, u.Champion, u.Stars, joinItems(u.Items), m.Placement)
	}
	return r.err
}

// ExplorerData prints frequent builds and the items and traits a player used
func (r *Writer) ExplorerData(data *analysis.ExplorerData) error {
	r.printf("Explorer data (%d matches)\n", data.Matches)

	r.printf("\nChampion builds\n")
	for _, cb := range data.Builds {
		r.printf("\n%s:\n", cb.Champion)
		for _, b := range cb.Builds {
			r.printf("  %s: %d games, %.2f avg placement\n", joinItems(b.Items), b.Count, b.AveragePlacement())
		}
	}

	r.printf("\nAvailable items (%d):\n", len(data.Items))
	for row := range slices.Chunk(data.Items, itemsPerRow) {
		r.printf(" %s\n", strings.Join(row, ", "))
	}

	r.printf("\nTraits played (%d):\n", len(data.Traits))
	for row := range slices.Chunk(data.Traits, traitsPerRow) {
		r.printf(" %s\n", strings.Join(row, ", "))
	}
	return r.err
}

// ChampionPerformance prints a table of champions fielded in at least minGames games
func (r *Writer) ChampionPerformance(perf []analysis.ChampionPerformance, minGames int) error {
	if len(perf) == 0 {
		r.printf("No champion stats for this player\n")
		return r.err
	}

	r.printf("%-15s %-6s %-10s %-8s %-8s\n", "Champion", "Games", "Avg Place", "Top 4%", "Win %")
	r.printf("%s\n", strings.Repeat("-", 55))
	for _, p := range perf {
		if p.Stats.Count < minGames {
			continue
		}
		r.printf("%-15s %-6d %-10.2f %-8.1f%% %-8.1f%%\n",
			p.Champion, p.Stats.Count, p.Stats.Average, p.Stats.Top4Rate, p.Stats.WinRate)
	}
	return r.err
}

// UserStats prints overall and per queue averages
func (r *Writer) UserStats(stats analysis.PlayerStats) error {
	if stats.Overall.Count == 0 {
		r.printf("No matches found for this player\n")
		return r.err
	}

	r.printf("%s average placement: %.2f (Number of matches: %d)\n", stats.Name, stats.Overall.Average, stats.Overall.Count)
	r.printf("Placements: %s\n", formatInts(stats.Overall.Placements))

	for _, gt := range stats.ByGameType {
		name := r.names.GameType(gt.GameType)
		r.printf("%s average: %.2f (%d matches)\n", name, gt.Stats.Average, gt.Stats.Count)
		r.printf("%s placements: %s\n", name, formatInts(gt.Stats.Placements))
	}
	return r.err
}

// MostPlayed prints champion play counts
func (r *Writer) MostPlayed(counts []analysis.ChampionCount) error {
	r.printf("Most played champions:\n")
	for _, c := range counts {
		r.printf("%s: %d times\n", c.Champion, c.Count)
	}
	return r.err
}

// Match prints every board of a match, winner first
func (r *Writer) Match(number int, payload *models.MatchPayload, costs analysis.CostTable) error {
	r.printf("=== MATCH %d %s ===\n", number, r.names.GameType(payload.Info.TFTGameType))

	participants := slices.Clone(payload.Info.Participants)
	slices.SortStableFunc(participants, func(a, b models.Participant) int {
		return a.Placement - b.Placement
	})

	for _, p := range participants {
		r.printf("%d_%s (%d damage to players):\n", p.Placement, p.RiotIDGameName, p.TotalDamageToPlayers)
		r.printf("Characters (Total board value: %d):\n", costs.BoardValue(p.Units))
		for _, u := range p.Units {
			items := r.names.ItemNames(u.ItemNames)
			if len(items) == 0 {
				r.printf("%s (no items)\n", r.names.Champion(u.CharacterID))
				continue
			}
			r.printf("%s (%s)\n", r.names.Champion(u.CharacterID), strings.Join(items, ", "))
		}

		r.printf("\nTraits:\n")
		for _, t := range r.names.ActiveTraits(p.Traits) {
			r.printf("%s\n", t)
		}
		r.printf("\n")
	}

	r.printf("%s\n\n", strings.Repeat("=", 50))
	return r.err
}

func joinItems(items []string) string {
	if len(items) == 0 {
		return "No items"
	}
	return strings.Join(items, " + ")
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
