package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/rs/zerolog/log"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

// Upsert inserts or replaces a match keyed by match_id
func (r *MatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	start := time.Now()

	query := `
		INSERT INTO matches (match_id, raw_data, game_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id) DO UPDATE SET
			raw_data = EXCLUDED.raw_data,
			game_type = EXCLUDED.game_type
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, match.MatchID, match.RawData, match.GameType).
		Scan(&match.CreatedAt)
	observe("upsert", "matches", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.MatchID, err)
	}

	log.Info().
		Str("match_id", match.MatchID).
		Str("game_type", match.GameType).
		Msg("Match stored")

	return nil
}

// ExistingIDs returns the set of stored match ids
func (r *MatchRepository) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	start := time.Now()

	rows, err := r.db.Pool.Query(ctx, `SELECT match_id FROM matches`)
	if err != nil {
		observe("select", "matches", start, err)
		return nil, fmt.Errorf("failed to query match ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		ids[id] = struct{}{}
	}
	err = rows.Err()
	observe("select", "matches", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate match ids: %w", err)
	}

	return ids, nil
}

// Count returns the number of stored matches
func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	start := time.Now()

	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n)
	observe("count", "matches", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return n, nil
}
