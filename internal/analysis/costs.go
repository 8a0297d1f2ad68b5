package analysis

import (
	"context"

	"github.com/Clemtourte/tft-app-project/internal/models"
	"github.com/Clemtourte/tft-app-project/internal/naming"

	"github.com/rs/zerolog/log"
)

// CostTable maps a champion token (Jhin) to its shop cost
type CostTable map[string]int

// BoardValue sums the shop cost of every unit. Unknown champions cost 0.
func (c CostTable) BoardValue(units []models.Unit) int {
	total := 0
	for _, u := range units {
		token, _ := naming.ChampionToken(u.CharacterID)
		total += c[token]
	}
	return total
}

// CostFetcher loads the cost table from Data Dragon
type CostFetcher interface {
	FetchChampionCosts(ctx context.Context, version, setPrefix string) (map[string]int, error)
}

// CostCache stores cost tables between runs
type CostCache interface {
	GetChampionCosts(ctx context.Context, version, setPrefix string) (map[string]int, bool, error)
	SetChampionCosts(ctx context.Context, version, setPrefix string, costs map[string]int) error
}

// LoadChampionCosts returns the cost table from the cache when present,
// otherwise from Data Dragon, filling the cache. cache may be nil.
// On failure it logs and returns an empty table so board values read 0.
func LoadChampionCosts(ctx context.Context, fetcher CostFetcher, cache CostCache, version, setPrefix string) CostTable {
	if cache != nil {
		costs, ok, err := cache.GetChampionCosts(ctx, version, setPrefix)
		if err != nil {
			log.Warn().Err(err).Msg("Champion cost cache unavailable")
		}
		if ok {
			return costs
		}
	}

	costs, err := fetcher.FetchChampionCosts(ctx, version, setPrefix)
	if err != nil {
		log.Error().Err(err).Str("version", version).Msg("Failed to load champion costs")
		return CostTable{}
	}

	if cache != nil {
		if err := cache.SetChampionCosts(ctx, version, setPrefix, costs); err != nil {
			log.Warn().Err(err).Msg("Failed to cache champion costs")
		}
	}

	log.Debug().Int("champions", len(costs)).Str("version", version).Msg("Champion costs loaded")
	return costs
}
