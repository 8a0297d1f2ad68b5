package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(characterID string, stars int, items ...string) models.Unit {
	return models.Unit{CharacterID: characterID, Tier: stars, ItemNames: items}
}

func match(id string, placement int, units ...models.Unit) models.PlayerMatchView {
	return models.PlayerMatchView{MatchID: id, GameType: "standard", Placement: placement, Units: units}
}

func jhinMatches() []models.PlayerMatchView {
	return []models.PlayerMatchView{
		match("EUW1_1", 1, unit("TFT_Jhin", 2, "TFT_Item_Deathblade")),
		match("EUW1_2", 5, unit("TFT_Jhin", 1)),
	}
}

func TestExplorerQuery_JhinDeathblade(t *testing.T) {
	a := New(nil)

	res, err := a.ExplorerQuery(jhinMatches(), Filter{Champion: "Jhin", Items: []string{"Deathblade"}})
	require.NoError(t, err)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, "EUW1_1", res.Matches[0].MatchID)
	assert.Equal(t, MatchedUnit{Champion: "Jhin", CharacterID: "TFT_Jhin", Items: []string{"Deathblade"}, Stars: 2}, res.Matches[0].MatchedUnit)

	assert.Equal(t, 1, res.Stats.Count)
	assert.Equal(t, "1.00", fmt.Sprintf("%.2f", res.Stats.Average))
	assert.Equal(t, "100.00", fmt.Sprintf("%.2f", res.Stats.Top4Rate))
	assert.Equal(t, "100.00", fmt.Sprintf("%.2f", res.Stats.WinRate))
}

func TestExplorerQuery_EmptyCases(t *testing.T) {
	a := New(nil)

	_, err := a.ExplorerQuery(nil, Filter{Champion: "Jhin"})
	assert.True(t, errors.Is(err, ErrNoMatches))

	_, err = a.ExplorerQuery(jhinMatches(), Filter{Champion: "Ahri"})
	assert.True(t, errors.Is(err, ErrNoFilteredMatches))

	_, err = a.ExplorerQuery(jhinMatches(), Filter{StarLevel: 7})
	assert.Error(t, err)
}

func TestFilterMatches(t *testing.T) {
	a := New(nil)
	matches := []models.PlayerMatchView{
		match("m1", 3,
			unit("TFT15_Ahri", 1, "TFT_Item_GuardianAngel"),
			unit("TFT15_Ahri", 3, "TFT_Item_GuardianAngel", "TFT_Item_InfinityEdge"),
		),
		match("m2", 6, unit("TFT15_Jinx", 2, "TFT_Item_InfinityEdge")),
		match("m3", 2, unit("TFT15_Ahri", 0)),
	}

	tests := []struct {
		name      string
		filter    Filter
		wantIDs   []string
		wantStars []int
	}{
		{"no filter accepts first unit", Filter{}, []string{"m1", "m2", "m3"}, []int{1, 2, 1}},
		{"champion", Filter{Champion: "Ahri"}, []string{"m1", "m3"}, []int{1, 1}},
		{"mapped item name", Filter{Items: []string{"Edge of Night"}}, []string{"m1"}, []int{1}},
		{"items superset picks later unit", Filter{Items: []string{"InfinityEdge", "Edge of Night"}}, []string{"m1"}, []int{3}},
		{"star level", Filter{StarLevel: 2}, []string{"m2"}, []int{2}},
		{"missing tier counts as one star", Filter{Champion: "Ahri", StarLevel: 1}, []string{"m1", "m3"}, []int{1, 1}},
		{"all predicates on one unit", Filter{Champion: "Ahri", Items: []string{"InfinityEdge"}, StarLevel: 3}, []string{"m1"}, []int{3}},
		{"predicates split across units rejected", Filter{Champion: "Ahri", StarLevel: 2}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.FilterMatches(matches, tt.filter)

			var ids []string
			var stars []int
			for _, m := range got {
				ids = append(ids, m.MatchID)
				stars = append(stars, m.MatchedUnit.Stars)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantStars, stars)
		})
	}
}

func TestFilterMatches_EveryResultSatisfiesFilter(t *testing.T) {
	a := New(nil)
	var matches []models.PlayerMatchView
	champions := []string{"TFT15_Ahri", "TFT15_Jhin", "TFT15_Jinx"}
	items := []string{"TFT_Item_Deathblade", "TFT_Item_InfinityEdge", "TFT_Item_GuardianAngel"}
	for i := 0; i < 30; i++ {
		matches = append(matches, match(fmt.Sprintf("m%d", i), i%8+1,
			unit(champions[i%3], i%3+1, items[i%3]),
			unit(champions[(i+1)%3], (i+1)%3+1, items[(i+1)%3], items[(i+2)%3]),
		))
	}

	f := Filter{Champion: "Jhin", Items: []string{"Deathblade"}, StarLevel: 2}
	for _, m := range a.FilterMatches(matches, f) {
		assert.Equal(t, "Jhin", m.MatchedUnit.Champion)
		assert.Contains(t, m.MatchedUnit.Items, "Deathblade")
		assert.Equal(t, 2, m.MatchedUnit.Stars)
	}
}

func TestComputePlacementStats(t *testing.T) {
	stats := ComputePlacementStats([]int{1, 4, 5, 8, 2, 1})

	assert.Equal(t, 6, stats.Count)
	assert.Equal(t, "3.50", fmt.Sprintf("%.2f", stats.Average))
	assert.Equal(t, 4, stats.Top4Count)
	assert.Equal(t, "66.67", fmt.Sprintf("%.2f", stats.Top4Rate))
	assert.Equal(t, 2, stats.WinCount)
	assert.Equal(t, "33.33", fmt.Sprintf("%.2f", stats.WinRate))
	assert.Equal(t, []int{1, 1, 2, 4, 5, 8}, stats.Sorted())
	assert.Equal(t, []int{1, 4, 5, 8, 2, 1}, stats.Placements, "input order kept")

	assert.Equal(t, PlacementStats{Placements: []int{}}, ComputePlacementStats([]int{}))
}

func TestAnalyzeExplorerData(t *testing.T) {
	a := New(nil)
	matches := []models.PlayerMatchView{
		match("m1", 1,
			unit("TFT15_Jhin", 2, "TFT_Item_InfinityEdge", "TFT_Item_Deathblade"),
			unit("TFT15_Ahri", 1, "TFT_Item_StatikkShiv"),
		),
		match("m2", 3,
			unit("TFT15_Jhin", 2, "TFT_Item_Deathblade", "TFT_Item_InfinityEdge"),
			unit("TFT15_Ahri", 1, "TFT_Item_StatikkShiv"),
			unit("TFT15_Jinx", 1, "Broken"),
		),
		match("m3", 6,
			unit("TFT15_Jhin", 1, "TFT_Item_Deathblade", "TFT_Item_InfinityEdge"),
			unit("TFT15_Ahri", 1, "TFT_Item_GuardianAngel"),
			unit("TFT15_Jinx", 1),
		),
	}
	matches[0].Traits = []models.Trait{{Name: "TFT15_StarGuardian", NumUnits: 3, TierCurrent: 1}}
	matches[1].Traits = []models.Trait{{Name: "TFT15_StarGuardian", NumUnits: 3, TierCurrent: 1}, {Name: "TFT15_Bastion", NumUnits: 1}}

	data := a.AnalyzeExplorerData(matches)

	assert.Equal(t, 3, data.Matches)
	require.Len(t, data.Builds, 3)

	assert.Equal(t, "Jhin", data.Builds[0].Champion)
	require.Len(t, data.Builds[0].Builds, 1)
	assert.Equal(t, "Deathblade + InfinityEdge", data.Builds[0].Builds[0].Key())
	assert.Equal(t, 3, data.Builds[0].Builds[0].Count)
	assert.InDelta(t, 3.33, data.Builds[0].Builds[0].AveragePlacement(), 0.01)

	assert.Equal(t, "Ahri", data.Builds[1].Champion)
	assert.Equal(t, []string{"Void Staff"}, data.Builds[1].Builds[0].Items)

	// Malformed item ids are dropped, so both Jinx boards are itemless
	assert.Equal(t, "Jinx", data.Builds[2].Champion)
	assert.Empty(t, data.Builds[2].Builds[0].Items)

	for _, cb := range data.Builds {
		for _, b := range cb.Builds {
			assert.GreaterOrEqual(t, b.Count, MinBuildCount)
		}
	}

	assert.Equal(t, []string{"Deathblade", "Edge of Night", "InfinityEdge", "Void Staff"}, data.Items)
	assert.Equal(t, []string{"3 Star Guardian"}, data.Traits)
}

func TestAnalyzeChampionPerformance(t *testing.T) {
	a := New(nil)
	matches := []models.PlayerMatchView{
		match("m1", 1, unit("TFT15_Jhin", 2), unit("TFT15_Ahri", 1)),
		match("m2", 5, unit("TFT15_Jhin", 2)),
		match("m3", 4, unit("TFT15_Jhin", 1), unit("TFT15_Ahri", 1)),
	}

	perf := a.AnalyzeChampionPerformance(matches)
	require.Len(t, perf, 2)

	assert.Equal(t, "Jhin", perf[0].Champion)
	assert.Equal(t, 3, perf[0].Stats.Count)
	assert.Equal(t, "3.33", fmt.Sprintf("%.2f", perf[0].Stats.Average))
	assert.Equal(t, 2, perf[0].Stats.Top4Count)
	assert.Equal(t, 1, perf[0].Stats.WinCount)

	assert.Equal(t, "Ahri", perf[1].Champion)
	assert.Equal(t, 100.0, perf[1].Stats.Top4Rate)
}

func TestMostPlayedChampions(t *testing.T) {
	a := New(nil)
	matches := []models.PlayerMatchView{
		match("m1", 1, unit("TFT15_Jhin", 2), unit("TFT15_Ahri", 1), unit("TFT15_Zed", 1)),
		match("m2", 5, unit("TFT15_Jhin", 2), unit("TFT15_Ahri", 1)),
		match("m3", 4, unit("TFT15_Jhin", 1)),
	}

	assert.Equal(t, []ChampionCount{{"Jhin", 3}, {"Ahri", 2}}, a.MostPlayedChampions(matches, 2))
	assert.Len(t, a.MostPlayedChampions(matches, 0), 3)
}

func TestUserStats(t *testing.T) {
	matches := []models.PlayerMatchView{
		{MatchID: "m1", GameType: "standard", Placement: 2, RiotIDGameName: "Player"},
		{MatchID: "m2", GameType: "pairs", Placement: 1},
		{MatchID: "m3", GameType: "standard", Placement: 6},
		{MatchID: "m4", GameType: "turbo", Placement: 3},
	}

	stats := UserStats(matches)
	assert.Equal(t, "Player", stats.Name)
	assert.Equal(t, 3.0, stats.Overall.Average)

	require.Len(t, stats.ByGameType, 3)
	assert.Equal(t, "standard", stats.ByGameType[0].GameType)
	assert.Equal(t, []int{2, 6}, stats.ByGameType[0].Stats.Placements)
	assert.Equal(t, "pairs", stats.ByGameType[1].GameType)
	assert.Equal(t, "turbo", stats.ByGameType[2].GameType)
}

const storedMatch = `{
  "metadata": {"match_id": "EUW1_1"},
  "info": {
    "tft_game_type": "standard",
    "participants": [
      {"puuid": "puuid-a", "placement": 3, "riotIdGameName": "Player", "units": [{"character_id": "TFT15_Jhin", "itemNames": ["TFT_Item_Deathblade"], "tier": 2}]},
      {"puuid": "puuid-b", "placement": 1}
    ]
  }
}`

func TestExtractPlayerMatches(t *testing.T) {
	rows := []models.StoredPlayerMatch{
		{MatchID: "EUW1_1", Placement: 3, GameType: "standard", RawData: []byte(storedMatch)},
		{MatchID: "EUW1_2", Placement: 1, RawData: []byte(`not json`)},
		{MatchID: "EUW1_3", Placement: 1, RawData: []byte(`{"metadata":{"match_id":"EUW1_3"},"info":{"participants":[]}}`)},
	}

	views := ExtractPlayerMatches(rows, "puuid-a")
	require.Len(t, views, 1)
	assert.Equal(t, "EUW1_1", views[0].MatchID)
	assert.Equal(t, 3, views[0].Placement)
	assert.Equal(t, "Player", views[0].RiotIDGameName)
	assert.Equal(t, "TFT15_Jhin", views[0].Units[0].CharacterID)
}

func TestExtractUserMatches(t *testing.T) {
	payload, err := models.ParseMatchPayload([]byte(storedMatch))
	require.NoError(t, err)

	views := ExtractUserMatches([]*models.MatchPayload{payload}, "puuid-b")
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Placement)

	assert.Empty(t, ExtractUserMatches([]*models.MatchPayload{payload}, "puuid-z"))
}

type fakeCosts struct {
	costs map[string]int
	err   error
	calls int
}

func (f *fakeCosts) FetchChampionCosts(context.Context, string, string) (map[string]int, error) {
	f.calls++
	return f.costs, f.err
}

type memCache struct {
	data map[string]map[string]int
}

func (m *memCache) GetChampionCosts(_ context.Context, version, prefix string) (map[string]int, bool, error) {
	c, ok := m.data[version+prefix]
	return c, ok, nil
}

func (m *memCache) SetChampionCosts(_ context.Context, version, prefix string, costs map[string]int) error {
	m.data[version+prefix] = costs
	return nil
}

func TestLoadChampionCosts(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeCosts{costs: map[string]int{"Jhin": 4, "Ahri": 3}}
	cache := &memCache{data: map[string]map[string]int{}}

	costs := LoadChampionCosts(ctx, fetcher, cache, "15.17.1", "TFT15")
	assert.Equal(t, CostTable{"Jhin": 4, "Ahri": 3}, costs)

	costs = LoadChampionCosts(ctx, fetcher, cache, "15.17.1", "TFT15")
	assert.Equal(t, 4, costs["Jhin"])
	assert.Equal(t, 1, fetcher.calls, "second load served from cache")

	failing := &fakeCosts{err: errors.New("timeout")}
	assert.Empty(t, LoadChampionCosts(ctx, failing, nil, "15.18.1", "TFT15"))
}

func TestBoardValue(t *testing.T) {
	costs := CostTable{"Jhin": 4, "Ahri": 3}
	units := []models.Unit{unit("TFT15_Jhin", 2), unit("TFT15_Ahri", 1), unit("TFT15_Unknown", 1), unit("Broken", 1)}
	assert.Equal(t, 7, costs.BoardValue(units))
}
