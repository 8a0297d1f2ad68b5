package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Clemtourte/tft-app-project/internal/naming"
)

// ddragonChampions is the body of tft-champion.json
type ddragonChampions struct {
	Version string                     `json:"version"`
	Data    map[string]ddragonChampion `json:"data"`
}

type ddragonChampion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier int    `json:"tier"` // shop cost
}

// FetchChampionCosts returns the shop cost of every champion of a set,
// keyed by champion token (TFT15_Jhin -> Jhin)
func (c *Client) FetchChampionCosts(ctx context.Context, version, setPrefix string) (map[string]int, error) {
	u := fmt.Sprintf("%s/%s/data/en_US/tft-champion.json", c.ddragonURL, version)

	body, err := c.get(ctx, "ddragon_champions", u, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch champion data: %w", err)
	}

	var data ddragonChampions
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal champion data: %w", err)
	}

	costs := make(map[string]int)
	for key, champion := range data.Data {
		id := champion.ID
		if id == "" {
			id = key
		}
		// Recent versions key entries by asset path (.../Shop/TFT15_Jhin)
		if i := strings.LastIndex(id, "/"); i >= 0 {
			id = id[i+1:]
		}
		if !strings.HasPrefix(id, setPrefix+"_") {
			continue
		}
		token, ok := naming.ChampionToken(id)
		if !ok {
			continue
		}
		costs[token] = champion.Tier
	}

	return costs, nil
}
