package entity

import "time"

// GameResult is the archived outcome of one finished game. An empty Winner
// means the game was drawn.
type GameResult struct {
	RoomID      string         `json:"room_id"`
	Players     []string       `json:"players"`
	Winner      string         `json:"winner,omitempty"`
	Score       map[string]int `json:"score"`
	GamesPlayed int            `json:"games_played"`
	FinishedAt  time.Time      `json:"finished_at"`
}
