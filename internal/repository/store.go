package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Clemtourte/tft-app-project/internal/config"
	"github.com/Clemtourte/tft-app-project/internal/models"
	"github.com/Clemtourte/tft-app-project/internal/repository/sqlstore"

	"github.com/rs/zerolog/log"
)

// ErrPlayerNotFound is returned when no player row matches a lookup
var ErrPlayerNotFound = models.ErrPlayerNotFound

// Store is the persistence surface shared by every backend
type Store interface {
	EnsureSchema(ctx context.Context) error

	UpsertPlayer(ctx context.Context, player *models.Player) error
	GetPlayer(ctx context.Context, puuid string) (*models.Player, error)
	GetPlayerByRiotID(ctx context.Context, username, tag string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)

	ExistingMatchIDs(ctx context.Context) (map[string]struct{}, error)
	UpsertMatch(ctx context.Context, match *models.Match) error
	CountMatches(ctx context.Context) (int, error)

	UpsertPlayerMatch(ctx context.Context, pm *models.PlayerMatch) error
	ListPlayerMatches(ctx context.Context, puuid string) ([]models.StoredPlayerMatch, error)

	Health(ctx context.Context) error
	Close()
}

var (
	_ Store = (*Database)(nil)
	_ Store = (*sqlstore.DB)(nil)
)

func (db *Database) UpsertPlayer(ctx context.Context, player *models.Player) error {
	return db.Players.Upsert(ctx, player)
}

func (db *Database) GetPlayer(ctx context.Context, puuid string) (*models.Player, error) {
	return db.Players.GetByPUUID(ctx, puuid)
}

func (db *Database) GetPlayerByRiotID(ctx context.Context, username, tag string) (*models.Player, error) {
	return db.Players.GetByRiotID(ctx, username, tag)
}

func (db *Database) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return db.Players.List(ctx)
}

func (db *Database) ExistingMatchIDs(ctx context.Context) (map[string]struct{}, error) {
	return db.Matches.ExistingIDs(ctx)
}

func (db *Database) UpsertMatch(ctx context.Context, match *models.Match) error {
	return db.Matches.Upsert(ctx, match)
}

func (db *Database) CountMatches(ctx context.Context) (int, error) {
	return db.Matches.Count(ctx)
}

func (db *Database) UpsertPlayerMatch(ctx context.Context, pm *models.PlayerMatch) error {
	return db.PlayerMatches.Upsert(ctx, pm)
}

func (db *Database) ListPlayerMatches(ctx context.Context, puuid string) ([]models.StoredPlayerMatch, error) {
	return db.PlayerMatches.ListByPUUID(ctx, puuid)
}

// Open connects to the backend selected by DATABASE_DRIVER and bootstraps the schema
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		store, err = NewDatabase(ctx, Config{
			Host:     cfg.DatabaseHost,
			Port:     strconv.Itoa(cfg.DatabasePort),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
	case config.DriverSQLite:
		store, err = sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverLibSQL:
		store, err = sqlstore.OpenLibSQL(ctx, cfg.TursoURL, cfg.TursoAuthToken)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	log.Debug().Str("driver", cfg.DatabaseDriver).Msg("Store ready")
	return store, nil
}
