package entity

import "time"

const (
	PhaseWaiting    = "waiting"
	PhaseInProgress = "in_progress"
	PhaseWon        = "won"
	PhaseDrawn      = "drawn"

	SymbolX = "X"
	SymbolO = "O"

	EmptyCell = ""

	MaxPlayers = 2
)

// Room is one isolated two-player game session. The room store owns every
// Room and performs all mutations; everyone else works on snapshots.
type Room struct {
	ID           string            `json:"id"`
	Passphrase   string            `json:"-"`
	Players      []string          `json:"players"`
	Symbols      map[string]string `json:"symbols"`
	Board        [9]string         `json:"board"`
	Turn         string            `json:"turn"`
	Phase        string            `json:"phase"`
	Winner       string            `json:"winner,omitempty"`
	Creator      string            `json:"creator"`
	CreatedAt    time.Time         `json:"created_at"`
	RematchVotes []string          `json:"rematch_votes"`
	Score        map[string]int    `json:"score"`
	GamesPlayed  int               `json:"games_played"`
}

func NewRoom(id, passphrase, creator string, createdAt time.Time) *Room {
	return &Room{
		ID:           id,
		Passphrase:   passphrase,
		Players:      []string{creator},
		Symbols:      map[string]string{creator: SymbolX},
		Turn:         SymbolX,
		Phase:        PhaseWaiting,
		Creator:      creator,
		CreatedAt:    createdAt,
		RematchVotes: []string{},
		Score:        map[string]int{creator: 0},
	}
}

func (that *Room) IsWaiting() bool {
	return that.Phase == PhaseWaiting
}

func (that *Room) IsInProgress() bool {
	return that.Phase == PhaseInProgress
}

// IsOver reports whether the current game ended, by win or by draw.
func (that *Room) IsOver() bool {
	return that.Phase == PhaseWon || that.Phase == PhaseDrawn
}

func (that *Room) HasPlayer(player string) bool {
	for _, p := range that.Players {
		if p == player {
			return true
		}
	}
	return false
}

func (that *Room) SymbolOf(player string) string {
	return that.Symbols[player]
}

// Opponent returns the other occupant, or "" for a half-empty room.
func (that *Room) Opponent(player string) string {
	for _, p := range that.Players {
		if p != player {
			return p
		}
	}
	return ""
}

func (that *Room) HasVotedRematch(player string) bool {
	for _, p := range that.RematchVotes {
		if p == player {
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy safe to hand out beyond the store's lock.
func (that *Room) Snapshot() *Room {
	clone := *that

	clone.Players = append([]string{}, that.Players...)
	clone.RematchVotes = append([]string{}, that.RematchVotes...)

	clone.Symbols = make(map[string]string, len(that.Symbols))
	for player, symbol := range that.Symbols {
		clone.Symbols[player] = symbol
	}

	clone.Score = make(map[string]int, len(that.Score))
	for player, wins := range that.Score {
		clone.Score[player] = wins
	}

	return &clone
}
