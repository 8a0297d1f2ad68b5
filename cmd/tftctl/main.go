// Command tftctl syncs a player's TFT matches and prints reports from the stored data.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/analysis"
	"github.com/Clemtourte/tft-app-project/internal/cache"
	"github.com/Clemtourte/tft-app-project/internal/client"
	"github.com/Clemtourte/tft-app-project/internal/config"
	"github.com/Clemtourte/tft-app-project/internal/models"
	"github.com/Clemtourte/tft-app-project/internal/report"
	"github.com/Clemtourte/tft-app-project/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tftctl",
	Short: "Track and analyze Teamfight Tactics matches",
	Long: `A command-line interface that pulls match history from the Riot API
into the configured database and prints placement, champion and build reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// setupLogger sends logs to stderr so reports on stdout stay clean
func setupLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	})

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	} else if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

// app bundles the dependencies one command invocation needs
type app struct {
	store repository.Store
	riot  *client.Client
	costs analysis.CostCache
	redis *cache.RedisCache
}

func openApp(ctx context.Context) (*app, error) {
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		store: store,
		riot:  client.NewClient(cfg.RiotRegionURL, cfg.DDragonBaseURL, cfg.RiotAPIKey, cfg.RiotTimeout),
	}

	// Redis is optional; without it champion costs come from Data Dragon each run
	rc, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL(),
	})
	if err != nil {
		log.Debug().Err(err).Msg("Redis unavailable, champion costs will not be cached")
	} else {
		a.redis = rc
		a.costs = rc
	}

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.store.Close()
}

// playerMatches loads every stored match of a tracked player
func (a *app) playerMatches(ctx context.Context, name, tag string) (*models.Player, []models.StoredPlayerMatch, error) {
	player, err := a.store.GetPlayerByRiotID(ctx, name, tag)
	if err != nil {
		return nil, nil, fmt.Errorf("%s#%s: %w (run sync first)", name, tag, err)
	}
	rows, err := a.store.ListPlayerMatches(ctx, player.PUUID)
	if err != nil {
		return nil, nil, err
	}
	return player, rows, nil
}

func (a *app) views(ctx context.Context, name, tag string) ([]models.PlayerMatchView, error) {
	player, rows, err := a.playerMatches(ctx, name, tag)
	if err != nil {
		return nil, err
	}
	return analysis.ExtractPlayerMatches(rows, player.PUUID), nil
}

func newReport() *report.Writer {
	return report.New(os.Stdout, nil)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
