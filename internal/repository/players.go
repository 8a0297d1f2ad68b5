package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a player keyed by PUUID
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	start := time.Now()

	query := `
		INSERT INTO players (puuid, username, tag)
		VALUES ($1, $2, $3)
		ON CONFLICT (puuid) DO UPDATE SET
			username = EXCLUDED.username,
			tag = EXCLUDED.tag,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, player.PUUID, player.Username, player.Tag).
		Scan(&player.CreatedAt, &player.UpdatedAt)
	observe("upsert", "players", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	log.Debug().
		Str("puuid", player.PUUID).
		Str("riot_id", player.RiotID()).
		Msg("Player upserted")

	return nil
}

// GetByPUUID retrieves a player by PUUID
func (r *PlayerRepository) GetByPUUID(ctx context.Context, puuid string) (*models.Player, error) {
	query := `
		SELECT puuid, username, tag, created_at, updated_at
		FROM players
		WHERE puuid = $1
	`

	return r.getOne(ctx, query, puuid)
}

// GetByRiotID retrieves a player by game name and tag
func (r *PlayerRepository) GetByRiotID(ctx context.Context, username, tag string) (*models.Player, error) {
	query := `
		SELECT puuid, username, tag, created_at, updated_at
		FROM players
		WHERE username = $1 AND tag = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`

	return r.getOne(ctx, query, username, tag)
}

func (r *PlayerRepository) getOne(ctx context.Context, query string, args ...any) (*models.Player, error) {
	start := time.Now()

	var p models.Player
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&p.PUUID, &p.Username, &p.Tag, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		observe("select", "players", start, nil)
		return nil, ErrPlayerNotFound
	}
	observe("select", "players", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &p, nil
}

// List returns all tracked players ordered by Riot ID
func (r *PlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	start := time.Now()

	query := `
		SELECT puuid, username, tag, created_at, updated_at
		FROM players
		ORDER BY username, tag
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		observe("select", "players", start, err)
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.PUUID, &p.Username, &p.Tag, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	err = rows.Err()
	observe("select", "players", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}
