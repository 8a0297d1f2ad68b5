package models

import (
	"errors"
	"time"
)

// ErrPlayerNotFound is returned by stores when no player row matches
var ErrPlayerNotFound = errors.New("player not found")

// Player is a tracked player, keyed by PUUID
type Player struct {
	PUUID     string    `db:"puuid"`
	Username  string    `db:"username"`
	Tag       string    `db:"tag"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RiotID returns the display form name#tag
func (p *Player) RiotID() string {
	return p.Username + "#" + p.Tag
}

// PlayerMatch links a tracked player to a stored match with their placement
type PlayerMatch struct {
	PUUID     string `db:"puuid"`
	MatchID   string `db:"match_id"`
	Placement int    `db:"placement"`
}

// StoredPlayerMatch is a player_matches row joined with its match payload
type StoredPlayerMatch struct {
	MatchID   string `db:"match_id"`
	Placement int    `db:"placement"`
	GameType  string `db:"game_type"`
	RawData   []byte `db:"raw_data"`
}
