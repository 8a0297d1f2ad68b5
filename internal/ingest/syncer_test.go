package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/config"
	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userPUUID = "puuid-user"

type fakeAPI struct {
	puuids     map[string]string // "name#tag" -> puuid
	matchIDs   []string          // newest first
	payloads   map[string]*models.MatchPayload
	failMatch  string
	failIDs    bool
	idCalls    [][2]int
	matchCalls [][]string
}

func (f *fakeAPI) FetchPUUID(_ context.Context, username, tag string) (string, error) {
	if p, ok := f.puuids[username+"#"+tag]; ok {
		return p, nil
	}
	return "", errors.New("account not found")
}

func (f *fakeAPI) FetchMatchIDs(_ context.Context, _ string, start, count int) ([]string, error) {
	f.idCalls = append(f.idCalls, [2]int{start, count})
	if f.failIDs {
		return nil, errors.New("status 500")
	}
	if start >= len(f.matchIDs) {
		return []string{}, nil
	}
	end := min(start+count, len(f.matchIDs))
	return f.matchIDs[start:end], nil
}

func (f *fakeAPI) FetchMatches(_ context.Context, ids []string) ([]*models.MatchPayload, error) {
	f.matchCalls = append(f.matchCalls, ids)
	var out []*models.MatchPayload
	for _, id := range ids {
		if id == f.failMatch {
			return nil, fmt.Errorf("match %s: status 429", id)
		}
		out = append(out, f.payloads[id])
	}
	return out, nil
}

type fakeStore struct {
	players       map[string]models.Player
	matches       map[string]*models.Match
	playerMatches map[[2]string]int
	failMatch     string
	failIDs       bool
	failPlayer    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players:       map[string]models.Player{},
		matches:       map[string]*models.Match{},
		playerMatches: map[[2]string]int{},
	}
}

func (f *fakeStore) UpsertPlayer(_ context.Context, p *models.Player) error {
	if f.failPlayer {
		return errors.New("connection refused")
	}
	f.players[p.PUUID] = *p
	return nil
}

func (f *fakeStore) ListPlayers(context.Context) ([]models.Player, error) {
	var out []models.Player
	for _, p := range f.players {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ExistingMatchIDs(context.Context) (map[string]struct{}, error) {
	if f.failIDs {
		return nil, errors.New("connection refused")
	}
	ids := make(map[string]struct{}, len(f.matches))
	for id := range f.matches {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (f *fakeStore) UpsertMatch(_ context.Context, m *models.Match) error {
	if m.MatchID == f.failMatch {
		return errors.New("disk full")
	}
	f.matches[m.MatchID] = m
	return nil
}

func (f *fakeStore) UpsertPlayerMatch(_ context.Context, pm *models.PlayerMatch) error {
	f.playerMatches[[2]string{pm.PUUID, pm.MatchID}] = pm.Placement
	return nil
}

func newPayload(id string, participants ...models.Participant) *models.MatchPayload {
	return &models.MatchPayload{
		Metadata: models.MatchMetadata{MatchID: id},
		Info: models.MatchInfo{
			TFTGameType:  "standard",
			Participants: participants,
		},
	}
}

// upstream builds n matches EUW1_n..EUW1_1 (newest first) where the user places 1..8
func upstream(n int) *fakeAPI {
	api := &fakeAPI{
		puuids:   map[string]string{"Player#EUW": userPUUID},
		payloads: map[string]*models.MatchPayload{},
	}
	for i := n; i >= 1; i-- {
		id := fmt.Sprintf("EUW1_%d", i)
		api.matchIDs = append(api.matchIDs, id)
		api.payloads[id] = newPayload(id,
			models.Participant{PUUID: userPUUID, Placement: (i-1)%8 + 1},
			models.Participant{PUUID: "puuid-stranger", Placement: 8 - (i-1)%8},
		)
	}
	return api
}

func newTestSyncer(api API, store Store) (*Syncer, *int) {
	s := NewSyncer(api, store)
	sleeps := 0
	s.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return s, &sleeps
}

func opts(maxMatches, batch int) Options {
	return Options{MaxMatches: maxMatches, BatchSize: batch, BatchDelay: time.Second}
}

func TestUpdatePlayerData_StoresNewMatchesInBatches(t *testing.T) {
	api := upstream(5)
	store := newFakeStore()
	s, sleeps := newTestSyncer(api, store)

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(5, 2))
	require.NoError(t, err)

	assert.Equal(t, userPUUID, res.PUUID)
	assert.Equal(t, 5, res.Stored)
	assert.Equal(t, 5, res.Fetched)
	assert.Equal(t, 3, res.Batches)
	assert.Equal(t, StopMaxMatches, res.StopReason)
	assert.Equal(t, [][2]int{{0, 2}, {2, 2}, {4, 1}}, api.idCalls)
	assert.Equal(t, 2, *sleeps, "no sleep after the last batch")

	assert.Len(t, store.matches, 5)
	assert.Contains(t, store.players, userPUUID)
}

func TestUpdatePlayerData_RerunIsIdempotent(t *testing.T) {
	api := upstream(4)
	store := newFakeStore()
	s, _ := newTestSyncer(api, store)

	_, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(4, 4))
	require.NoError(t, err)
	api.matchCalls = nil

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(4, 4))
	require.NoError(t, err)

	assert.Zero(t, res.Stored)
	assert.Empty(t, res.NewMatchIDs)
	assert.Equal(t, StopNoNewMatches, res.StopReason)
	assert.Empty(t, api.matchCalls, "no match bodies fetched when nothing is new")
	assert.Len(t, store.matches, 4)
}

func TestUpdatePlayerData_StopsOnShortPage(t *testing.T) {
	api := upstream(3)
	s, sleeps := newTestSyncer(api, newFakeStore())

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(10, 2))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stored)
	assert.Equal(t, 2, res.Batches)
	assert.Equal(t, StopShortPage, res.StopReason)
	assert.Equal(t, 1, *sleeps)
}

func TestUpdatePlayerData_StopsOnEmptyPage(t *testing.T) {
	api := upstream(2)
	s, _ := newTestSyncer(api, newFakeStore())

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(10, 2))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, StopEmptyPage, res.StopReason)
}

func TestUpdatePlayerData_StopsAtFirstKnownPage(t *testing.T) {
	api := upstream(6)
	store := newFakeStore()
	// Older history already stored
	for _, id := range []string{"EUW1_4", "EUW1_3", "EUW1_2", "EUW1_1"} {
		store.matches[id] = &models.Match{MatchID: id}
	}
	s, _ := newTestSyncer(api, store)

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(6, 2))
	require.NoError(t, err)

	assert.Equal(t, []string{"EUW1_6", "EUW1_5"}, res.NewMatchIDs)
	assert.Equal(t, 2, res.Batches)
	assert.Equal(t, StopNoNewMatches, res.StopReason)
}

func TestUpdatePlayerData_PlacementsOnlyForTrackedPlayers(t *testing.T) {
	api := upstream(0)
	api.matchIDs = []string{"EUW1_9"}
	api.payloads["EUW1_9"] = newPayload("EUW1_9",
		models.Participant{PUUID: userPUUID, Placement: 2},
		models.Participant{PUUID: "puuid-friend", Placement: 5},
		models.Participant{PUUID: "puuid-stranger", Placement: 1},
	)

	store := newFakeStore()
	store.players["puuid-friend"] = models.Player{PUUID: "puuid-friend", Username: "Friend", Tag: "EUW"}
	s, _ := newTestSyncer(api, store)

	_, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(20, 20))
	require.NoError(t, err)

	assert.Equal(t, map[[2]string]int{
		{userPUUID, "EUW1_9"}:      2,
		{"puuid-friend", "EUW1_9"}: 5,
	}, store.playerMatches)
}

func TestUpdatePlayerData_NoPlacementsWhenPlayerNotStored(t *testing.T) {
	api := upstream(1)
	store := newFakeStore()
	store.failPlayer = true
	s, _ := newTestSyncer(api, store)

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(20, 20))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stored)
	assert.Empty(t, store.playerMatches)
}

func TestUpdatePlayerData_MatchFetchFailureAborts(t *testing.T) {
	api := upstream(4)
	api.failMatch = "EUW1_1"
	store := newFakeStore()
	s, _ := newTestSyncer(api, store)

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(4, 2))
	require.Error(t, err)

	assert.Equal(t, StopFetchFailed, res.StopReason)
	assert.Equal(t, 2, res.Stored)
	assert.Len(t, store.matches, 2, "nothing from the failed batch is persisted")
	assert.NotContains(t, store.matches, "EUW1_2")
}

func TestUpdatePlayerData_IDFetchFailureAborts(t *testing.T) {
	api := upstream(4)
	api.failIDs = true
	store := newFakeStore()
	s, _ := newTestSyncer(api, store)

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(4, 2))
	require.Error(t, err)
	assert.Equal(t, StopFetchFailed, res.StopReason)
	assert.Empty(t, store.matches)
}

func TestUpdatePlayerData_UnknownPlayer(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestSyncer(upstream(3), store)

	res, err := s.UpdatePlayerData(context.Background(), "Nobody", "EUW", opts(4, 2))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, store.players)
	assert.Empty(t, store.matches)
}

func TestUpdatePlayerData_StoreErrorSkipsMatch(t *testing.T) {
	api := upstream(3)
	store := newFakeStore()
	store.failMatch = "EUW1_2"
	s, _ := newTestSyncer(api, store)

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(3, 3))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 2, res.Stored)
	assert.NotContains(t, store.playerMatches, [2]string{userPUUID, "EUW1_2"})
}

func TestUpdatePlayerData_ExistingIDsFailureTreatedAsEmpty(t *testing.T) {
	api := upstream(2)
	store := newFakeStore()
	store.failIDs = true
	s, _ := newTestSyncer(api, store)

	res, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", opts(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stored)
}

func TestUpdatePlayerData_CancelledDuringSleep(t *testing.T) {
	api := upstream(4)
	s := NewSyncer(api, newFakeStore())

	ctx, cancel := context.WithCancel(context.Background())
	s.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	res, err := s.UpdatePlayerData(ctx, "Player", "EUW", opts(4, 2))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StopCancelled, res.StopReason)
	assert.Equal(t, 2, res.Stored)
}

func TestUpdatePlayerData_InvalidOptions(t *testing.T) {
	s, _ := newTestSyncer(upstream(1), newFakeStore())

	for _, o := range []Options{
		{MaxMatches: 0, BatchSize: 1},
		{MaxMatches: 10, BatchSize: 0},
		{MaxMatches: 10, BatchSize: 201},
		{MaxMatches: 10, BatchSize: 10, BatchDelay: -time.Second},
	} {
		_, err := s.UpdatePlayerData(context.Background(), "Player", "EUW", o)
		assert.Error(t, err, "options %+v", o)
	}
}

func TestSyncTracked_ContinuesAfterFailure(t *testing.T) {
	api := upstream(2)
	api.puuids["Friend#EUW"] = "puuid-friend"
	store := newFakeStore()
	s, _ := newTestSyncer(api, store)

	err := s.SyncTracked(context.Background(), []config.RiotID{
		{Name: "Nobody", Tag: "EUW"},
		{Name: "Player", Tag: "EUW"},
		{Name: "Friend", Tag: "EUW"},
	}, opts(2, 2))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nobody#EUW")
	assert.Contains(t, store.players, userPUUID)
	assert.Contains(t, store.players, "puuid-friend")
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
