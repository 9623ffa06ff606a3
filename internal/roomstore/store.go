package roomstore

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/tresenraya/tresenraya-backend/internal/apperror"
	"github.com/tresenraya/tresenraya-backend/internal/entity"
	"github.com/tresenraya/tresenraya-backend/internal/pkg"
	"github.com/tresenraya/tresenraya-backend/internal/tictactoe"
)

const (
	// listMaxAge - rooms older than this are hidden from public listings.
	listMaxAge = 10 * time.Minute

	// staleAfter - rooms older than this are reclaimed by EvictStale.
	staleAfter = 30 * time.Minute
)

// room pairs a record with its own lock, held for the duration of a single
// operation. Lock order is always map lock before room lock.
type room struct {
	mu     sync.Mutex
	record *entity.Room
}

// Store owns every live room. All operations are atomic: they either apply
// fully or leave the room untouched, and every returned *entity.Room is a
// snapshot detached from the store's own state.
type Store struct {
	logger *slog.Logger
	now    func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	rooms map[string]*room
}

func New(logger *slog.Logger) *Store {
	return NewSeeded(logger, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewSeeded - builds a store with an explicit random source and clock, so
// tests can force deterministic symbol assignment and room ages.
func NewSeeded(logger *slog.Logger, rnd *rand.Rand, now func() time.Time) *Store {
	return &Store{
		logger: logger.With("component", "roomstore"),
		now:    now,
		rnd:    rnd,
		rooms:  make(map[string]*room),
	}
}

// Summary is the public-listing view of a half-empty room.
type Summary struct {
	ID          string   `json:"id"`
	Players     []string `json:"players"`
	Creator     string   `json:"creator"`
	PlayerCount int      `json:"player_count"`
}

// RematchResult reports the outcome of a rematch request.
type RematchResult struct {
	Reset     bool
	Room      *entity.Room
	WaitingOn string
	Votes     []string
}

// Create - allocates a fresh room with the creator as sole participant,
// playing X. Never fails.
func (that *Store) Create(passphrase, creator string) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := pkg.GenerateRoomID()
	for {
		if _, taken := that.rooms[id]; !taken {
			break
		}
		id = pkg.GenerateRoomID()
	}

	record := entity.NewRoom(id, passphrase, creator, that.now())
	that.rooms[id] = &room{record: record}

	that.logger.Info("room created", "roomID", id, "creator", creator)

	return record.Snapshot()
}

// Get - returns a snapshot of a room.
func (that *Store) Get(roomID string) (*entity.Room, error) {
	current, err := that.lookup(roomID)
	if err != nil {
		return nil, err
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	return current.record.Snapshot(), nil
}

// Join - adds the second participant, playing O. Once two participants are
// present the opening turn is drawn with a fair coin and play begins.
func (that *Store) Join(roomID, passphrase, joiner string) (*entity.Room, error) {
	current, err := that.lookup(roomID)
	if err != nil {
		return nil, err
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	record := current.record

	if record.Passphrase != passphrase {
		return nil, apperror.ErrBadPassphrase
	}

	if len(record.Players) >= entity.MaxPlayers {
		return nil, apperror.ErrRoomFull
	}

	if record.HasPlayer(joiner) {
		return nil, apperror.ErrAlreadyJoined
	}

	record.Players = append(record.Players, joiner)
	record.Symbols[joiner] = entity.SymbolO
	record.Score[joiner] = 0

	if len(record.Players) == entity.MaxPlayers {
		record.Turn = that.randomSymbol()
		record.Phase = entity.PhaseInProgress

		that.logger.Info("room is full, game starts", "roomID", roomID, "openingTurn", record.Turn)
	}

	return record.Snapshot(), nil
}

// Move - writes the mover's symbol into the cell and advances the game. Any
// validation failure leaves the room byte-for-byte unchanged.
func (that *Store) Move(roomID string, position int, player string) (*entity.Room, error) {
	current, err := that.lookup(roomID)
	if err != nil {
		return nil, err
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	record := current.record

	if !record.IsInProgress() {
		return nil, apperror.ErrGameNotStarted
	}

	mark := record.SymbolOf(player)
	if mark == "" {
		return nil, apperror.ErrNotInRoom
	}

	if record.Turn != mark {
		return nil, fmt.Errorf("%w: current turn is %s, you play %s", apperror.ErrNotYourTurn, record.Turn, mark)
	}

	if position < 0 || position >= len(record.Board) {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidPosition, position)
	}

	if record.Board[position] != entity.EmptyCell {
		return nil, apperror.ErrCellOccupied
	}

	record.Board[position] = mark

	switch {
	case tictactoe.IsWinningLine(record.Board, mark):
		record.Phase = entity.PhaseWon
		record.Winner = player
		record.Score[player]++
		record.GamesPlayed++

		that.logger.Info("game won", "roomID", roomID, "winner", player, "score", record.Score)
	case tictactoe.IsFull(record.Board):
		record.Phase = entity.PhaseDrawn
		record.GamesPlayed++

		that.logger.Info("game drawn", "roomID", roomID)
	default:
		record.Turn = toggleSymbol(mark)
	}

	return record.Snapshot(), nil
}

// RequestRematch - registers a participant's vote to replay. The board only
// resets once both current participants have voted; after a win the loser
// takes X and moves first, after a draw symbols are redrawn at random.
func (that *Store) RequestRematch(roomID, player string) (*RematchResult, error) {
	current, err := that.lookup(roomID)
	if err != nil {
		return nil, err
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	record := current.record

	if !record.IsOver() {
		return nil, apperror.ErrGameNotOver
	}

	if !record.HasPlayer(player) {
		return nil, apperror.ErrNotInRoom
	}

	if !record.HasVotedRematch(player) {
		record.RematchVotes = append(record.RematchVotes, player)
	}

	if len(record.RematchVotes) < entity.MaxPlayers {
		result := &RematchResult{
			Room:  record.Snapshot(),
			Votes: append([]string{}, record.RematchVotes...),
		}
		for _, p := range record.Players {
			if !record.HasVotedRematch(p) {
				result.WaitingOn = p
				break
			}
		}

		return result, nil
	}

	that.resetGame(record)

	that.logger.Info("game reset", "roomID", roomID, "symbols", record.Symbols, "turn", record.Turn)

	return &RematchResult{Reset: true, Room: record.Snapshot()}, nil
}

// resetGame wipes the board and reassigns symbols. Caller holds the room lock.
func (that *Store) resetGame(record *entity.Room) {
	record.Board = [9]string{}
	record.RematchVotes = []string{}

	if record.Winner != "" && len(record.Players) == entity.MaxPlayers {
		// catch-up rule: the previous winner concedes X to the loser
		loser := record.Opponent(record.Winner)
		record.Symbols[record.Winner] = entity.SymbolO
		record.Symbols[loser] = entity.SymbolX
	} else {
		first := that.randomSymbol()
		for i, p := range record.Players {
			if i == 0 {
				record.Symbols[p] = first
			} else {
				record.Symbols[p] = toggleSymbol(first)
			}
		}
	}

	record.Turn = entity.SymbolX
	record.Phase = entity.PhaseInProgress
	record.Winner = ""
}

// ListPublic - returns joinable rooms: still waiting, not full, and younger
// than the listing cutoff.
func (that *Store) ListPublic() []Summary {
	that.mu.RLock()
	defer that.mu.RUnlock()

	cutoff := that.now().Add(-listMaxAge)

	summaries := make([]Summary, 0)
	for _, current := range that.rooms {
		current.mu.Lock()
		record := current.record
		if record.IsWaiting() && len(record.Players) < entity.MaxPlayers && record.CreatedAt.After(cutoff) {
			summaries = append(summaries, Summary{
				ID:          record.ID,
				Players:     append([]string{}, record.Players...),
				Creator:     record.Creator,
				PlayerCount: len(record.Players),
			})
		}
		current.mu.Unlock()
	}

	return summaries
}

// Remove - deletes a room unconditionally.
func (that *Store) Remove(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, roomID)
}

// RemoveParticipant - strips a participant from the room's records. If the
// room becomes empty it is removed and (nil, true) is returned; otherwise a
// snapshot with the remaining participant is returned.
func (that *Store) RemoveParticipant(roomID, player string) (*entity.Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.rooms[roomID]
	if !ok {
		return nil, false
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	record := current.record

	players := record.Players[:0]
	for _, p := range record.Players {
		if p != player {
			players = append(players, p)
		}
	}
	record.Players = players

	delete(record.Symbols, player)
	delete(record.Score, player)

	votes := record.RematchVotes[:0]
	for _, p := range record.RematchVotes {
		if p != player {
			votes = append(votes, p)
		}
	}
	record.RematchVotes = votes

	if len(record.Players) == 0 {
		delete(that.rooms, roomID)
		that.logger.Info("empty room removed", "roomID", roomID)
		return nil, true
	}

	return record.Snapshot(), false
}

// EvictStale - removes every room older than the staleness cutoff,
// regardless of state. Returns the number of rooms reclaimed.
func (that *Store) EvictStale() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	cutoff := that.now().Add(-staleAfter)

	evicted := 0
	for id, current := range that.rooms {
		current.mu.Lock()
		stale := current.record.CreatedAt.Before(cutoff)
		current.mu.Unlock()

		if stale {
			delete(that.rooms, id)
			evicted++
		}
	}

	if evicted > 0 {
		that.logger.Info("stale rooms evicted", "count", evicted)
	}

	return evicted
}

func (that *Store) lookup(roomID string) (*room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	current, ok := that.rooms[roomID]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return current, nil
}

// randomSymbol draws X or O with a fair coin.
func (that *Store) randomSymbol() string {
	that.rndMu.Lock()
	defer that.rndMu.Unlock()

	if that.rnd.Intn(2) == 0 {
		return entity.SymbolX
	}

	return entity.SymbolO
}

func toggleSymbol(mark string) string {
	if mark == entity.SymbolX {
		return entity.SymbolO
	}

	return entity.SymbolX
}
