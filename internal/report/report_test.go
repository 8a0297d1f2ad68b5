package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Clemtourte/tft-app-project/internal/analysis"
	"github.com/Clemtourte/tft-app-project/internal/ingest"
	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplorerResult(t *testing.T) {
	matches := []models.PlayerMatchView{
		{MatchID: "m1", Placement: 1, Units: []models.Unit{{CharacterID: "TFT_Jhin", ItemNames: []string{"TFT_Item_Deathblade"}, Tier: 2}}},
		{MatchID: "m2", Placement: 5, Units: []models.Unit{{CharacterID: "TFT_Jhin", Tier: 1}}},
	}
	res, err := analysis.New(nil).ExplorerQuery(matches, analysis.Filter{Champion: "Jhin", Items: []string{"Deathblade"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(&buf, nil).ExplorerResult(res))

	out := buf.String()
	assert.Contains(t, out, " Matches found: 1\n")
	assert.Contains(t, out, "Average placement: 1.00\n")
	assert.Contains(t, out, "Top 4 rate: 100.00% (1/1)\n")
	assert.Contains(t, out, "Win rate: 100.00% (1/1)\n")
	assert.Contains(t, out, "Placements: [1]\n")
	assert.Contains(t, out, " 1. Jhin 2★ (Deathblade) -> Placement 1\n")
}

func TestExplorerData_Rows(t *testing.T) {
	data := &analysis.ExplorerData{
		Matches: 4,
		Builds: []analysis.ChampionBuilds{
			{Champion: "Jhin", Builds: []analysis.Build{{Items: []string{"Deathblade", "InfinityEdge"}, Count: 2, Placements: []int{1, 4}}}},
			{Champion: "Jinx", Builds: []analysis.Build{{Items: []string{}, Count: 3, Placements: []int{2, 2, 2}}}},
		},
		Items:  []string{"A", "B", "C", "D", "E", "F", "G"},
		Traits: []string{"1 X", "2 Y", "3 Z", "4 W"},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, nil).ExplorerData(data))

	out := buf.String()
	assert.Contains(t, out, "\nJhin:\n  Deathblade + InfinityEdge: 2 games, 2.50 avg placement\n")
	assert.Contains(t, out, "  No items: 3 games, 2.00 avg placement\n")
	assert.Contains(t, out, "Available items (7):\n A, B, C, D, E\n F, G\n")
	assert.Contains(t, out, "Traits played (4):\n 1 X, 2 Y, 3 Z\n 4 W\n")
}

func TestChampionPerformance(t *testing.T) {
	perf := []analysis.ChampionPerformance{
		{Champion: "Jhin", Stats: analysis.ComputePlacementStats([]int{1, 2, 5})},
		{Champion: "Ahri", Stats: analysis.ComputePlacementStats([]int{1, 2})},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, nil).ChampionPerformance(perf, DefaultMinGames))

	out := buf.String()
	assert.Contains(t, out, "Champion        Games  Avg Place  Top 4%   Win %   \n")
	assert.Contains(t, out, "Jhin            3      2.67       66.7    % 33.3    %\n")
	assert.NotContains(t, out, "Ahri")
}

func TestUserStats(t *testing.T) {
	stats := analysis.UserStats([]models.PlayerMatchView{
		{GameType: "standard", Placement: 2, RiotIDGameName: "Player"},
		{GameType: "pairs", Placement: 1},
		{GameType: "standard", Placement: 6},
	})

	var buf bytes.Buffer
	require.NoError(t, New(&buf, nil).UserStats(stats))

	out := buf.String()
	assert.Contains(t, out, "Player average placement: 3.00 (Number of matches: 3)\n")
	assert.Contains(t, out, "Placements: [2, 1, 6]\n")
	assert.Contains(t, out, "Ranked average: 4.00 (2 matches)\n")
	assert.Contains(t, out, "Double Up placements: [1]\n")

	buf.Reset()
	require.NoError(t, New(&buf, nil).UserStats(analysis.UserStats(nil)))
	assert.Equal(t, "No matches found for this player\n", buf.String())
}

func TestMatch(t *testing.T) {
	payload := &models.MatchPayload{
		Info: models.MatchInfo{
			TFTGameType: "pairs",
			Participants: []models.Participant{
				{PUUID: "b", Placement: 2, RiotIDGameName: "Second", TotalDamageToPlayers: 80,
					Units: []models.Unit{{CharacterID: "TFT15_Ahri", Tier: 1}}},
				{PUUID: "a", Placement: 1, RiotIDGameName: "First", TotalDamageToPlayers: 120,
					Units: []models.Unit{{CharacterID: "TFT15_Jhin", Tier: 2, ItemNames: []string{"TFT_Item_Deathblade", "TFT_Item_StatikkShiv"}}},
					Traits: []models.Trait{{Name: "TFT15_StarGuardian", NumUnits: 3, TierCurrent: 1}}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, nil).Match(1, payload, analysis.CostTable{"Jhin": 4, "Ahri": 3}))

	out := buf.String()
	assert.Contains(t, out, "=== MATCH 1 Double Up ===\n")
	assert.Contains(t, out, "1_First (120 damage to players):\nCharacters (Total board value: 4):\nJhin (Deathblade, Void Staff)\n\nTraits:\n3 Star Guardian\n")
	assert.Contains(t, out, "2_Second (80 damage to players):\nCharacters (Total board value: 3):\nAhri (no items)\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("1_First")), bytes.Index(buf.Bytes(), []byte("2_Second")))
}

func TestPlayersAndSync(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, nil)

	require.NoError(t, w.Players(nil))
	require.NoError(t, w.Players([]models.Player{{PUUID: "p1", Username: "Player", Tag: "EUW"}}))
	require.NoError(t, w.SyncResult("Player#EUW", &ingest.Result{NewMatchIDs: []string{"a", "b"}, Stored: 2, Batches: 1, StopReason: ingest.StopShortPage}))
	require.NoError(t, w.MostPlayed([]analysis.ChampionCount{{Champion: "Jhin", Count: 3}}))

	out := buf.String()
	assert.Contains(t, out, "No tracked players\n")
	assert.Contains(t, out, "Player#EUW")
	assert.Contains(t, out, "Found 2 new matches for Player#EUW\n")
	assert.Contains(t, out, "stopped: short_page")
	assert.Contains(t, out, "Jhin: 3 times\n")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriter_KeepsFirstError(t *testing.T) {
	w := New(failingWriter{}, nil)
	assert.Error(t, w.MostPlayed([]analysis.ChampionCount{{Champion: "Jhin", Count: 1}}))
	assert.Error(t, w.Players(nil))
}
