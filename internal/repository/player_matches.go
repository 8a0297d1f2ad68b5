package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/models"
)

// PlayerMatchRepository handles the player -> match placement relation
type PlayerMatchRepository struct {
	db *Database
}

// Upsert records a tracked player's placement in a match
func (r *PlayerMatchRepository) Upsert(ctx context.Context, pm *models.PlayerMatch) error {
	start := time.Now()

	query := `
		INSERT INTO player_matches (puuid, match_id, placement)
		VALUES ($1, $2, $3)
		ON CONFLICT (puuid, match_id) DO UPDATE SET
			placement = EXCLUDED.placement
	`

	_, err := r.db.Pool.Exec(ctx, query, pm.PUUID, pm.MatchID, pm.Placement)
	observe("upsert", "player_matches", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert player match %s/%s: %w", pm.PUUID, pm.MatchID, err)
	}

	return nil
}

// ListByPUUID returns a player's matches joined with their payloads, newest match id first
func (r *PlayerMatchRepository) ListByPUUID(ctx context.Context, puuid string) ([]models.StoredPlayerMatch, error) {
	start := time.Now()

	query := `
		SELECT pm.match_id, pm.placement, m.game_type, m.raw_data
		FROM player_matches pm
		JOIN matches m ON m.match_id = pm.match_id
		WHERE pm.puuid = $1
		ORDER BY pm.match_id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, puuid)
	if err != nil {
		observe("select", "player_matches", start, err)
		return nil, fmt.Errorf("failed to query player matches: %w", err)
	}
	defer rows.Close()

	var matches []models.StoredPlayerMatch
	for rows.Next() {
		var m models.StoredPlayerMatch
		if err := rows.Scan(&m.MatchID, &m.Placement, &m.GameType, &m.RawData); err != nil {
			return nil, fmt.Errorf("failed to scan player match: %w", err)
		}
		matches = append(matches, m)
	}
	err = rows.Err()
	observe("select", "player_matches", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate player matches: %w", err)
	}

	return matches, nil
}
