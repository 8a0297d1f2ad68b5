// Package storetest holds behaviour tests every repository.Store backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/Clemtourte/tft-app-project/internal/models"
	"github.com/Clemtourte/tft-app-project/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opener returns an empty store with the schema in place
type Opener func(t *testing.T) repository.Store

// Run runs the shared store tests against a backend
func Run(t *testing.T, open Opener) {
	t.Run("UpsertPlayer", func(t *testing.T) { testUpsertPlayer(t, open(t)) })
	t.Run("PlayerNotFound", func(t *testing.T) { testPlayerNotFound(t, open(t)) })
	t.Run("ListPlayers", func(t *testing.T) { testListPlayers(t, open(t)) })
	t.Run("UpsertMatch", func(t *testing.T) { testUpsertMatch(t, open(t)) })
	t.Run("ListPlayerMatches", func(t *testing.T) { testListPlayerMatches(t, open(t)) })
	t.Run("EnsureSchemaTwice", func(t *testing.T) { testEnsureSchemaTwice(t, open(t)) })
}

func testUpsertPlayer(t *testing.T, store repository.Store) {
	ctx := context.Background()

	player := &models.Player{PUUID: "puuid-a", Username: "Player", Tag: "EUW"}
	require.NoError(t, store.UpsertPlayer(ctx, player))
	assert.False(t, player.CreatedAt.IsZero(), "created_at should be populated")

	// Renamed account keeps its PUUID
	player.Username = "Renamed"
	require.NoError(t, store.UpsertPlayer(ctx, player))

	got, err := store.GetPlayer(ctx, "puuid-a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Username)
	assert.Equal(t, "EUW", got.Tag)

	got, err = store.GetPlayerByRiotID(ctx, "Renamed", "EUW")
	require.NoError(t, err)
	assert.Equal(t, "puuid-a", got.PUUID)

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func testPlayerNotFound(t *testing.T, store repository.Store) {
	ctx := context.Background()

	_, err := store.GetPlayer(ctx, "missing")
	assert.True(t, errors.Is(err, repository.ErrPlayerNotFound))

	_, err = store.GetPlayerByRiotID(ctx, "Nobody", "EUW")
	assert.True(t, errors.Is(err, repository.ErrPlayerNotFound))
}

func testListPlayers(t *testing.T, store repository.Store) {
	ctx := context.Background()

	require.NoError(t, store.UpsertPlayer(ctx, &models.Player{PUUID: "p2", Username: "Zed", Tag: "EUW"}))
	require.NoError(t, store.UpsertPlayer(ctx, &models.Player{PUUID: "p1", Username: "Ahri", Tag: "EUW"}))

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Ahri", players[0].Username)
	assert.Equal(t, "Zed", players[1].Username)
}

func testUpsertMatch(t *testing.T, store repository.Store) {
	ctx := context.Background()

	ids, err := store.ExistingMatchIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	match := &models.Match{
		MatchID:  "EUW1_1",
		RawData:  []byte(`{"metadata":{"match_id":"EUW1_1"},"info":{"tft_game_type":"standard"}}`),
		GameType: "standard",
	}
	require.NoError(t, store.UpsertMatch(ctx, match))
	require.NoError(t, store.UpsertMatch(ctx, match), "upserting the same match twice should not fail")

	ids, err = store.ExistingMatchIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"EUW1_1": {}}, ids)

	n, err := store.CountMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testListPlayerMatches(t *testing.T, store repository.Store) {
	ctx := context.Background()

	require.NoError(t, store.UpsertPlayer(ctx, &models.Player{PUUID: "puuid-a", Username: "Player", Tag: "EUW"}))

	for _, id := range []string{"EUW1_1", "EUW1_3", "EUW1_2"} {
		raw := `{"metadata":{"match_id":"` + id + `"},"info":{"tft_game_type":"pairs"}}`
		require.NoError(t, store.UpsertMatch(ctx, &models.Match{MatchID: id, RawData: []byte(raw), GameType: "pairs"}))
		require.NoError(t, store.UpsertPlayerMatch(ctx, &models.PlayerMatch{PUUID: "puuid-a", MatchID: id, Placement: 4}))
	}
	require.NoError(t, store.UpsertPlayerMatch(ctx, &models.PlayerMatch{PUUID: "puuid-a", MatchID: "EUW1_2", Placement: 1}))

	rows, err := store.ListPlayerMatches(ctx, "puuid-a")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "EUW1_3", rows[0].MatchID)
	assert.Equal(t, "EUW1_2", rows[1].MatchID)
	assert.Equal(t, 1, rows[1].Placement)
	assert.Equal(t, "pairs", rows[1].GameType)
	assert.JSONEq(t, `{"metadata":{"match_id":"EUW1_2"},"info":{"tft_game_type":"pairs"}}`, string(rows[1].RawData))

	rows, err = store.ListPlayerMatches(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func testEnsureSchemaTwice(t *testing.T, store repository.Store) {
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Health(ctx))
}
