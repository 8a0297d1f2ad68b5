package analysis

import (
	"github.com/Clemtourte/tft-app-project/internal/models"

	"github.com/rs/zerolog/log"
)

// ExtractPlayerMatches rebuilds a player's side of each stored match.
// Rows whose payload cannot be decoded or lacks the player are skipped.
func ExtractPlayerMatches(rows []models.StoredPlayerMatch, puuid string) []models.PlayerMatchView {
	views := make([]models.PlayerMatchView, 0, len(rows))
	for _, row := range rows {
		payload, err := models.ParseMatchPayload(row.RawData)
		if err != nil {
			log.Warn().Err(err).Str("match_id", row.MatchID).Msg("Skipping unreadable match")
			continue
		}

		participant, ok := payload.Participant(puuid)
		if !ok {
			log.Debug().Str("match_id", row.MatchID).Str("puuid", puuid).Msg("Player not in match")
			continue
		}

		view := models.NewPlayerMatchView(payload, participant)
		view.Placement = row.Placement
		if row.GameType != "" {
			view.GameType = row.GameType
		}
		views = append(views, view)
	}
	return views
}

// ExtractUserMatches does the same from freshly fetched payloads
func ExtractUserMatches(payloads []*models.MatchPayload, puuid string) []models.PlayerMatchView {
	views := make([]models.PlayerMatchView, 0, len(payloads))
	for _, payload := range payloads {
		if participant, ok := payload.Participant(puuid); ok {
			views = append(views, models.NewPlayerMatchView(payload, participant))
		}
	}
	return views
}
