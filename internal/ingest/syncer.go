// Package ingest pulls a player's match history from the Riot API into the store.
//
// Match ids are read newest first in fixed-size pages. A page whose ids are all
// already known ends the run, since everything older is assumed stored too.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/config"
	"github.com/Clemtourte/tft-app-project/internal/metrics"
	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/rs/zerolog/log"
)

// API is the subset of the Riot client the syncer needs
type API interface {
	FetchPUUID(ctx context.Context, username, tag string) (string, error)
	FetchMatchIDs(ctx context.Context, puuid string, start, count int) ([]string, error)
	FetchMatches(ctx context.Context, matchIDs []string) ([]*models.MatchPayload, error)
}

// Store is the subset of the repository the syncer writes to
type Store interface {
	UpsertPlayer(ctx context.Context, player *models.Player) error
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ExistingMatchIDs(ctx context.Context) (map[string]struct{}, error)
	UpsertMatch(ctx context.Context, match *models.Match) error
	UpsertPlayerMatch(ctx context.Context, pm *models.PlayerMatch) error
}

// StopReason says why a sync run ended
type StopReason string

const (
	StopEmptyPage    StopReason = "empty_page"
	StopNoNewMatches StopReason = "no_new_matches"
	StopShortPage    StopReason = "short_page"
	StopMaxMatches   StopReason = "max_matches"
	StopFetchFailed  StopReason = "fetch_failed"
	StopCancelled    StopReason = "cancelled"
)

// Result describes what a run persisted. It is returned even when the run aborts.
type Result struct {
	PUUID       string
	Fetched     int
	NewMatchIDs []string
	Stored      int
	Batches     int
	StopReason  StopReason
}

// Syncer runs incremental syncs. It is not safe for concurrent use; one writer at a time.
type Syncer struct {
	api   API
	store Store
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSyncer creates a syncer
func NewSyncer(api API, store Store) *Syncer {
	return &Syncer{
		api:   api,
		store: store,
		sleep: sleepContext,
	}
}

// UpdatePlayerData resolves a Riot ID, records the player and stores any of
// their matches not yet in the store.
func (s *Syncer) UpdatePlayerData(ctx context.Context, username, tag string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.run(ctx, username, tag, opts)

	metrics.RecordSync("player", metrics.StatusLabel(err), time.Since(start).Seconds())
	if res != nil {
		metrics.RecordMatchesIngested(res.Stored)
	}
	if err != nil {
		metrics.RecordError("ingest", string(stopReasonOf(res)))
	}

	return res, err
}

func stopReasonOf(res *Result) StopReason {
	if res == nil || res.StopReason == "" {
		return StopFetchFailed
	}
	return res.StopReason
}

func (s *Syncer) run(ctx context.Context, username, tag string, opts Options) (*Result, error) {
	puuid, err := s.api.FetchPUUID(ctx, username, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s#%s: %w", username, tag, err)
	}

	res := &Result{PUUID: puuid}
	logger := log.With().Str("riot_id", username+"#"+tag).Str("puuid", puuid).Logger()

	playerStored := true
	if err := s.store.UpsertPlayer(ctx, &models.Player{PUUID: puuid, Username: username, Tag: tag}); err != nil {
		playerStored = false
		logger.Error().Err(err).Msg("Failed to store player")
	} else {
		logger.Info().Msg("Player added")
	}

	tracked := s.trackedPUUIDs(ctx, puuid, playerStored)

	known, err := s.store.ExistingMatchIDs(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load existing match ids, treating store as empty")
		known = make(map[string]struct{})
	}

	for offset := 0; offset < opts.MaxMatches; offset += opts.BatchSize {
		count := min(opts.BatchSize, opts.MaxMatches-offset)
		res.Batches++

		ids, err := s.api.FetchMatchIDs(ctx, puuid, offset, count)
		if err != nil {
			res.StopReason = StopFetchFailed
			return res, fmt.Errorf("failed to fetch match ids at offset %d: %w", offset, err)
		}
		if len(ids) == 0 {
			res.StopReason = StopEmptyPage
			break
		}

		var newIDs []string
		for _, id := range ids {
			if _, ok := known[id]; ok {
				continue
			}
			known[id] = struct{}{}
			newIDs = append(newIDs, id)
		}

		logger.Info().
			Int("batch", res.Batches).
			Int("new", len(newIDs)).
			Int("total", len(ids)).
			Msg("Found new matches")

		if len(newIDs) == 0 {
			res.StopReason = StopNoNewMatches
			break
		}

		payloads, err := s.api.FetchMatches(ctx, newIDs)
		if err != nil {
			res.StopReason = StopFetchFailed
			return res, fmt.Errorf("failed to fetch matches: %w", err)
		}

		res.Fetched += len(payloads)
		res.NewMatchIDs = append(res.NewMatchIDs, newIDs...)
		for _, payload := range payloads {
			if s.persist(ctx, payload, tracked) {
				res.Stored++
			}
		}

		if len(ids) < count {
			res.StopReason = StopShortPage
			break
		}
		if offset+count >= opts.MaxMatches {
			res.StopReason = StopMaxMatches
			break
		}

		if err := s.sleep(ctx, opts.BatchDelay); err != nil {
			res.StopReason = StopCancelled
			return res, err
		}
	}

	logger.Info().
		Int("stored", res.Stored).
		Int("batches", res.Batches).
		Str("stop_reason", string(res.StopReason)).
		Msg("Update complete")

	return res, nil
}

// trackedPUUIDs returns the players whose placements get recorded
func (s *Syncer) trackedPUUIDs(ctx context.Context, puuid string, playerStored bool) map[string]struct{} {
	tracked := make(map[string]struct{})
	if playerStored {
		tracked[puuid] = struct{}{}
	}

	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load tracked players")
		return tracked
	}
	for _, p := range players {
		tracked[p.PUUID] = struct{}{}
	}

	return tracked
}

// persist stores one match and the placements of its tracked participants.
// Store failures are logged and the match is skipped.
func (s *Syncer) persist(ctx context.Context, payload *models.MatchPayload, tracked map[string]struct{}) bool {
	match := payload.ToMatch()
	if err := s.store.UpsertMatch(ctx, match); err != nil {
		log.Error().Err(err).Str("match_id", match.MatchID).Msg("Error storing match")
		metrics.RecordError("ingest", "store_match")
		return false
	}

	for _, p := range payload.Info.Participants {
		if _, ok := tracked[p.PUUID]; !ok {
			continue
		}
		pm := &models.PlayerMatch{PUUID: p.PUUID, MatchID: match.MatchID, Placement: p.Placement}
		if err := s.store.UpsertPlayerMatch(ctx, pm); err != nil {
			log.Error().Err(err).
				Str("match_id", match.MatchID).
				Str("puuid", p.PUUID).
				Msg("Error storing placement")
			metrics.RecordError("ingest", "store_placement")
		}
	}

	return true
}

// SyncTracked syncs each configured player in turn. A failure for one player
// does not stop the others; all failures are returned joined.
func (s *Syncer) SyncTracked(ctx context.Context, players []config.RiotID, opts Options) error {
	var errs []error
	for _, p := range players {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.UpdatePlayerData(ctx, p.Name, p.Tag, opts); err != nil {
			log.Error().Err(err).Str("riot_id", p.String()).Msg("Player sync failed")
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
