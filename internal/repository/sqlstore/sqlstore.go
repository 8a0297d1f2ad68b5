// Package sqlstore persists players and matches through database/sql, for a
// local SQLite file (modernc.org/sqlite) or a remote Turso database (libsql).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/metrics"
	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/rs/zerolog/log"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// DB is a database/sql backed store
type DB struct {
	db     *sql.DB
	driver string
}

// OpenSQLite opens a local SQLite database. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection keeps writes serialized and an in-memory database shared
	db.SetMaxOpenConns(1)

	return connect(ctx, db, "sqlite")
}

// OpenLibSQL opens a remote Turso database
func OpenLibSQL(ctx context.Context, url, authToken string) (*DB, error) {
	connStr := url
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Turso: %w", err)
	}

	return connect(ctx, db, "libsql")
}

func connect(ctx context.Context, db *sql.DB, driver string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	log.Info().Str("driver", driver).Msg("Successfully connected to database")
	return &DB{db: db, driver: driver}, nil
}

// EnsureSchema creates the tables if they do not exist yet
func (s *DB) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS players (
			puuid      TEXT PRIMARY KEY,
			username   TEXT NOT NULL,
			tag        TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			match_id   TEXT PRIMARY KEY,
			raw_data   TEXT NOT NULL,
			game_type  TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS player_matches (
			puuid     TEXT NOT NULL REFERENCES players (puuid),
			match_id  TEXT NOT NULL REFERENCES matches (match_id),
			placement INTEGER NOT NULL,
			PRIMARY KEY (puuid, match_id)
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Close closes the underlying connection pool
func (s *DB) Close() {
	if err := s.db.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
		return
	}
	log.Info().Str("driver", s.driver).Msg("Database closed")
}

// Health pings the database
func (s *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// UpsertPlayer inserts or updates a player keyed by PUUID
func (s *DB) UpsertPlayer(ctx context.Context, player *models.Player) error {
	start := time.Now()
	now := formatTime(time.Now())

	query := `
		INSERT INTO players (puuid, username, tag, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (puuid) DO UPDATE SET
			username = excluded.username,
			tag = excluded.tag,
			updated_at = excluded.updated_at
		RETURNING created_at, updated_at
	`

	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, query, player.PUUID, player.Username, player.Tag, now, now).
		Scan(&createdAt, &updatedAt)
	observe("upsert", "players", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	player.CreatedAt = parseTime(createdAt)
	player.UpdatedAt = parseTime(updatedAt)
	return nil
}

// GetPlayer retrieves a player by PUUID
func (s *DB) GetPlayer(ctx context.Context, puuid string) (*models.Player, error) {
	return s.getPlayer(ctx, `
		SELECT puuid, username, tag, created_at, updated_at
		FROM players WHERE puuid = ?`, puuid)
}

// GetPlayerByRiotID retrieves a player by game name and tag
func (s *DB) GetPlayerByRiotID(ctx context.Context, username, tag string) (*models.Player, error) {
	return s.getPlayer(ctx, `
		SELECT puuid, username, tag, created_at, updated_at
		FROM players WHERE username = ? AND tag = ?
		ORDER BY updated_at DESC LIMIT 1`, username, tag)
}

func (s *DB) getPlayer(ctx context.Context, query string, args ...any) (*models.Player, error) {
	start := time.Now()

	var (
		p                    models.Player
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.PUUID, &p.Username, &p.Tag, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "players", start, nil)
		return nil, models.ErrPlayerNotFound
	}
	observe("select", "players", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// ListPlayers returns all tracked players ordered by Riot ID
func (s *DB) ListPlayers(ctx context.Context) ([]models.Player, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT puuid, username, tag, created_at, updated_at
		FROM players ORDER BY username, tag`)
	if err != nil {
		observe("select", "players", start, err)
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var (
			p                    models.Player
			createdAt, updatedAt string
		)
		if err := rows.Scan(&p.PUUID, &p.Username, &p.Tag, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		players = append(players, p)
	}
	err = rows.Err()
	observe("select", "players", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}

// ExistingMatchIDs returns the set of stored match ids
func (s *DB) ExistingMatchIDs(ctx context.Context) (map[string]struct{}, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `SELECT match_id FROM matches`)
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

// UpsertMatch inserts or replaces a match keyed by match_id
func (s *DB) UpsertMatch(ctx context.Context, match *models.Match) error {
	start := time.Now()
	now := time.Now()

	query := `
		INSERT INTO matches (match_id, raw_data, game_type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (match_id) DO UPDATE SET
			raw_data = excluded.raw_data,
			game_type = excluded.game_type
	`

	_, err := s.db.ExecContext(ctx, query, match.MatchID, string(match.RawData), match.GameType, formatTime(now))
	observe("upsert", "matches", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.MatchID, err)
	}

	if match.CreatedAt.IsZero() {
		match.CreatedAt = now
	}

	log.Info().
		Str("match_id", match.MatchID).
		Str("game_type", match.GameType).
		Msg("Match stored")

	return nil
}

// CountMatches returns the number of stored matches
func (s *DB) CountMatches(ctx context.Context) (int, error) {
	start := time.Now()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n)
	observe("count", "matches", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}

// UpsertPlayerMatch records a tracked player's placement in a match
func (s *DB) UpsertPlayerMatch(ctx context.Context, pm *models.PlayerMatch) error {
	start := time.Now()

	query := `
		INSERT INTO player_matches (puuid, match_id, placement)
		VALUES (?, ?, ?)
		ON CONFLICT (puuid, match_id) DO UPDATE SET
			placement = excluded.placement
	`

	_, err := s.db.ExecContext(ctx, query, pm.PUUID, pm.MatchID, pm.Placement)
	observe("upsert", "player_matches", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert player match %s/%s: %w", pm.PUUID, pm.MatchID, err)
	}
	return nil
}

// ListPlayerMatches returns a player's matches joined with their payloads, newest match id first
func (s *DB) ListPlayerMatches(ctx context.Context, puuid string) ([]models.StoredPlayerMatch, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT pm.match_id, pm.placement, m.game_type, m.raw_data
		FROM player_matches pm
		JOIN matches m ON m.match_id = pm.match_id
		WHERE pm.puuid = ?
		ORDER BY pm.match_id DESC`, puuid)
	if err != nil {
		observe("select", "player_matches", start, err)
		return nil, fmt.Errorf("failed to query player matches: %w", err)
	}
	defer rows.Close()

	var matches []models.StoredPlayerMatch
	for rows.Next() {
		var (
			m   models.StoredPlayerMatch
			raw string
		)
		if err := rows.Scan(&m.MatchID, &m.Placement, &m.GameType, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan player match: %w", err)
		}
		m.RawData = []byte(raw)
		matches = append(matches, m)
	}
	err = rows.Err()
	observe("select", "player_matches", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate player matches: %w", err)
	}

	return matches, nil
}

func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, metrics.StatusLabel(err), time.Since(start).Seconds())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
