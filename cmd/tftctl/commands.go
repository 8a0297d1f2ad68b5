package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/analysis"
	"github.com/Clemtourte/tft-app-project/internal/ingest"
	"github.com/Clemtourte/tft-app-project/internal/models"
	"github.com/Clemtourte/tft-app-project/internal/report"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	syncMaxMatches int
	syncBatchSize  int
	syncDelay      time.Duration

	exploreChampion string
	exploreItems    []string
	exploreStars    int

	minGames   int
	topN       int
	matchLimit int
)

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(buildsCmd)
	rootCmd.AddCommand(championsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(matchesCmd)

	defaults := ingest.DefaultOptions()
	syncCmd.Flags().IntVar(&syncMaxMatches, "max-matches", defaults.MaxMatches, "Stop after this many match ids")
	syncCmd.Flags().IntVar(&syncBatchSize, "batch-size", defaults.BatchSize, "Match ids requested per page")
	syncCmd.Flags().DurationVar(&syncDelay, "delay", defaults.BatchDelay, "Pause between pages")

	exploreCmd.Flags().StringVar(&exploreChampion, "champion", "", "Champion display name, e.g. Jhin")
	exploreCmd.Flags().StringSliceVar(&exploreItems, "item", nil, "Item display name the unit must hold (repeatable)")
	exploreCmd.Flags().IntVar(&exploreStars, "stars", 0, "Exact star level, 0 for any")

	championsCmd.Flags().IntVar(&minGames, "min-games", report.DefaultMinGames, "Hide champions fielded in fewer games")
	statsCmd.Flags().IntVar(&topN, "top", 10, "Number of most played champions to list")
	matchesCmd.Flags().IntVar(&matchLimit, "limit", 5, "Number of recent matches to print, 0 for all")
}

var syncCmd = &cobra.Command{
	Use:   "sync NAME TAG",
	Short: "Fetch new matches for a player from the Riot API",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := ingest.Options{MaxMatches: syncMaxMatches, BatchSize: syncBatchSize, BatchDelay: syncDelay}
		res, err := ingest.NewSyncer(a.riot, a.store).UpdatePlayerData(ctx, args[0], args[1], opts)
		if res != nil {
			if werr := newReport().SyncResult(args[0]+"#"+args[1], res); werr != nil {
				return werr
			}
		}
		return err
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List tracked players",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		players, err := a.store.ListPlayers(cmd.Context())
		if err != nil {
			return err
		}
		return newReport().Players(players)
	},
}

var exploreCmd = &cobra.Command{
	Use:   "explore NAME TAG",
	Short: "Filter a player's matches by champion, items and star level",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := loadViews(cmd.Context(), args)
		if err != nil {
			return err
		}

		f := analysis.Filter{Champion: exploreChampion, Items: exploreItems, StarLevel: exploreStars}
		res, err := analysis.New(nil).ExplorerQuery(matches, f)
		if errors.Is(err, analysis.ErrNoMatches) || errors.Is(err, analysis.ErrNoFilteredMatches) {
			fmt.Println(err)
			return nil
		}
		if err != nil {
			return err
		}
		return newReport().ExplorerResult(res)
	},
}

var buildsCmd = &cobra.Command{
	Use:   "builds NAME TAG",
	Short: "Show frequent item builds per champion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := loadViews(cmd.Context(), args)
		if err != nil {
			return err
		}
		return newReport().ExplorerData(analysis.New(nil).AnalyzeExplorerData(matches))
	},
}

var championsCmd = &cobra.Command{
	Use:   "champions NAME TAG",
	Short: "Show placement stats per champion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := loadViews(cmd.Context(), args)
		if err != nil {
			return err
		}
		return newReport().ChampionPerformance(analysis.New(nil).AnalyzeChampionPerformance(matches), minGames)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats NAME TAG",
	Short: "Show average placements and most played champions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := loadViews(cmd.Context(), args)
		if err != nil {
			return err
		}

		w := newReport()
		if err := w.UserStats(analysis.UserStats(matches)); err != nil {
			return err
		}
		if len(matches) == 0 {
			return nil
		}
		return w.MostPlayed(analysis.New(nil).MostPlayedChampions(matches, topN))
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches NAME TAG",
	Short: "Print every board of a player's recent matches",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		_, rows, err := a.playerMatches(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if matchLimit > 0 && len(rows) > matchLimit {
			rows = rows[:matchLimit]
		}

		costs := analysis.LoadChampionCosts(ctx, a.riot, a.costs, cfg.DDragonVersion, cfg.TFTSetPrefix)
		w := newReport()
		for i, row := range rows {
			payload, err := models.ParseMatchPayload(row.RawData)
			if err != nil {
				log.Warn().Err(err).Str("match_id", row.MatchID).Msg("Skipping unreadable match payload")
				continue
			}
			if err := w.Match(i+1, payload, costs); err != nil {
				return err
			}
		}
		return nil
	},
}

func loadViews(ctx context.Context, args []string) ([]models.PlayerMatchView, error) {
	a, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.views(ctx, args[0], args[1])
}
