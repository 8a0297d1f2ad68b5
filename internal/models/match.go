package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Match is a stored TFT match. RawData holds the full upstream payload.
type Match struct {
	MatchID   string    `db:"match_id"`
	RawData   []byte    `db:"raw_data"`
	GameType  string    `db:"game_type"`
	CreatedAt time.Time `db:"created_at"`
}

// MatchPayload is the response of /tft/match/v1/matches/{matchId}
type MatchPayload struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`

	// Raw is the exact body received from the API
	Raw json.RawMessage `json:"-"`
}

type MatchMetadata struct {
	DataVersion  string   `json:"data_version"`
	MatchID      string   `json:"match_id"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameDatetime   int64         `json:"game_datetime"`
	GameLength     float64       `json:"game_length"`
	GameVersion    string        `json:"game_version"`
	QueueID        int           `json:"queue_id"`
	TFTGameType    string        `json:"tft_game_type"`
	TFTSetCoreName string        `json:"tft_set_core_name"`
	TFTSetNumber   int           `json:"tft_set_number"`
	Participants   []Participant `json:"participants"`
}

// Participant is one of the eight players of a match
type Participant struct {
	PUUID                string  `json:"puuid"`
	RiotIDGameName       string  `json:"riotIdGameName"`
	RiotIDTagline        string  `json:"riotIdTagline"`
	Placement            int     `json:"placement"`
	Level                int     `json:"level"`
	GoldLeft             int     `json:"gold_left"`
	LastRound            int     `json:"last_round"`
	TimeEliminated       float64 `json:"time_eliminated"`
	TotalDamageToPlayers int     `json:"total_damage_to_players"`
	Win                  bool    `json:"win"`
	Traits               []Trait `json:"traits"`
	Units                []Unit  `json:"units"`
}

// Unit is a champion on a participant's final board
type Unit struct {
	CharacterID string   `json:"character_id"` // e.g. TFT15_Jhin
	ItemNames   []string `json:"itemNames"`    // e.g. TFT_Item_Deathblade
	Name        string   `json:"name"`
	Rarity      int      `json:"rarity"`
	Tier        int      `json:"tier"` // star level
}

// Stars returns the unit's star level, treating a missing tier as 1
func (u Unit) Stars() int {
	if u.Tier <= 0 {
		return 1
	}
	return u.Tier
}

// Trait is a synergy on a participant's final board
type Trait struct {
	Name        string `json:"name"` // e.g. TFT15_StarGuardian
	NumUnits    int    `json:"num_units"`
	Style       int    `json:"style"`
	TierCurrent int    `json:"tier_current"`
	TierTotal   int    `json:"tier_total"`
}

// IsActive returns true if the trait reached at least its first breakpoint
func (t Trait) IsActive() bool {
	return t.TierCurrent > 0
}

// ParseMatchPayload decodes a match body and keeps the original bytes
func ParseMatchPayload(raw []byte) (*MatchPayload, error) {
	var payload MatchPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	if payload.Metadata.MatchID == "" {
		return nil, fmt.Errorf("match payload has no metadata.match_id")
	}
	payload.Raw = append(json.RawMessage(nil), raw...)
	return &payload, nil
}

// ToMatch converts the payload (from API) to the stored Match model
func (p *MatchPayload) ToMatch() *Match {
	raw := p.Raw
	if len(raw) == 0 {
		// Payloads built in code have no original bytes; re-encode them
		raw, _ = json.Marshal(p)
	}
	return &Match{
		MatchID:  p.Metadata.MatchID,
		RawData:  raw,
		GameType: p.Info.TFTGameType,
	}
}

// Participant returns the participant with the given PUUID
func (p *MatchPayload) Participant(puuid string) (*Participant, bool) {
	for i := range p.Info.Participants {
		if p.Info.Participants[i].PUUID == puuid {
			return &p.Info.Participants[i], true
		}
	}
	return nil, false
}

// PlayerMatchView is one tracked player's side of a match, reconstructed from the payload
type PlayerMatchView struct {
	MatchID              string
	GameType             string
	GameDatetime         int64
	Placement            int
	Level                int
	RiotIDGameName       string
	TotalDamageToPlayers int
	Units                []Unit
	Traits               []Trait
}

// NewPlayerMatchView builds a view from a payload participant
func NewPlayerMatchView(p *MatchPayload, participant *Participant) PlayerMatchView {
	return PlayerMatchView{
		MatchID:              p.Metadata.MatchID,
		GameType:             p.Info.TFTGameType,
		GameDatetime:         p.Info.GameDatetime,
		Placement:            participant.Placement,
		Level:                participant.Level,
		RiotIDGameName:       participant.RiotIDGameName,
		TotalDamageToPlayers: participant.TotalDamageToPlayers,
		Units:                participant.Units,
		Traits:               participant.Traits,
	}
}
