package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tresenraya/tresenraya-backend/internal/apperror"
	"github.com/tresenraya/tresenraya-backend/internal/entity"
	"github.com/tresenraya/tresenraya-backend/internal/registry"
	"github.com/tresenraya/tresenraya-backend/internal/roomstore"
)

// resultRepo archives finished games. Optional: a nil repo disables archiving.
type resultRepo interface {
	Save(ctx context.Context, result *entity.GameResult) error
}

// Router is the message-dispatch layer: it resolves the sender's
// authoritative room through the registry, invokes the matching store
// operation and fans the resulting snapshot out to every participant. It
// never mutates a room itself.
type Router struct {
	logger   *slog.Logger
	store    *roomstore.Store
	registry *registry.Registry
	results  resultRepo

	handlers map[string]func(ctx context.Context, sender, pathRoomID string, event *Event)
}

func New(logger *slog.Logger, store *roomstore.Store, reg *registry.Registry, results resultRepo) *Router {
	that := &Router{
		logger:   logger.With("component", "router"),
		store:    store,
		registry: reg,
		results:  results,

		handlers: make(map[string]func(context.Context, string, string, *Event)),
	}

	that.handlers[EventCreateRoom] = that.handleCreateRoom
	that.handlers[EventJoinRoom] = that.handleJoinRoom
	that.handlers[EventMove] = that.handleMove
	that.handlers[EventRequestRematch] = that.handleRequestRematch
	that.handlers[EventGetState] = that.handleGetState
	that.handlers[EventListRooms] = that.handleListRooms

	return that
}

// Connect - registers a live connection for an identity. A later connect for
// the same identity replaces the former handle.
func (that *Router) Connect(identity string, conn registry.Conn) {
	that.registry.Register(identity, conn)

	that.logger.Info("participant connected", "identity", identity)
}

// HandleEvent - single entry point for inbound events. pathRoomID is the
// room id the connection was opened against; only join_room uses it, every
// other room-bound event resolves the sender's room through the registry.
func (that *Router) HandleEvent(ctx context.Context, sender, pathRoomID string, event *Event) {
	handler, ok := that.handlers[event.Type]
	if !ok {
		that.logger.Warn("unknown event type", "type", event.Type, "sender", sender)
		that.registry.Send(sender, errorMessage{Type: msgError, Message: fmt.Sprintf("unknown message type: %s", event.Type)})
		return
	}

	handler(ctx, sender, pathRoomID, event)
}

// Disconnect - transport-level disconnect: drop the handle, strip the
// identity from its room and either remove the empty room or tell the
// remaining participant their peer left.
func (that *Router) Disconnect(identity string) {
	log := that.logger.With("method", "Disconnect", "identity", identity)

	that.registry.Unregister(identity)

	roomID, ok := that.registry.CurrentRoom(identity)
	if !ok {
		log.Info("participant disconnected")
		return
	}

	that.registry.ClearCurrentRoom(identity)

	remaining, removed := that.store.RemoveParticipant(roomID, identity)
	if removed || remaining == nil {
		log.Info("participant disconnected", "roomID", roomID)
		return
	}

	notice := peerDisconnectedMessage{
		Type:    msgPeerDisconnected,
		Message: fmt.Sprintf("player %s has disconnected", identity),
	}
	that.broadcast(remaining, notice)

	log.Info("participant disconnected, peer notified", "roomID", roomID)
}

func (that *Router) handleCreateRoom(_ context.Context, sender, _ string, event *Event) {
	log := that.logger.With("method", "handleCreateRoom")

	creator := event.Name
	if creator == "" {
		creator = sender
	}

	room := that.store.Create(event.Passphrase, creator)
	that.registry.SetCurrentRoom(creator, room.ID)

	that.registry.Send(sender, roomCreatedMessage{Type: msgRoomCreated, RoomID: room.ID})

	log.Info("room created", "roomID", room.ID, "creator", creator)
}

func (that *Router) handleJoinRoom(_ context.Context, sender, pathRoomID string, event *Event) {
	log := that.logger.With("method", "handleJoinRoom", "roomID", pathRoomID)

	joiner := event.Name
	if joiner == "" {
		joiner = sender
	}

	room, err := that.store.Join(pathRoomID, event.Passphrase, joiner)
	if err != nil {
		log.Error("failed to join room", "joiner", joiner, "error", err)
		that.sendError(sender, err)
		return
	}

	that.registry.SetCurrentRoom(joiner, room.ID)

	that.registry.Send(sender, joinedMessage{
		Type:       msgJoined,
		Room:       room,
		YourSymbol: room.SymbolOf(joiner),
	})

	that.broadcast(room, stateUpdatedMessage{Type: msgStateUpdated, Room: room})

	log.Info("participant joined", "joiner", joiner, "phase", room.Phase)
}

func (that *Router) handleMove(ctx context.Context, sender, _ string, event *Event) {
	log := that.logger.With("method", "handleMove", "sender", sender)

	roomID, ok := that.registry.CurrentRoom(sender)
	if !ok {
		that.sendError(sender, apperror.ErrNotInRoom)
		return
	}

	if event.Position == nil {
		that.sendError(sender, apperror.ErrInvalidPosition)
		return
	}

	room, err := that.store.Move(roomID, *event.Position, sender)
	if err != nil {
		log.Error("invalid move", "roomID", roomID, "position", *event.Position, "error", err)
		that.sendError(sender, err)
		return
	}

	that.broadcast(room, boardUpdatedMessage{
		Type:        msgBoardUpdated,
		Board:       room.Board,
		Turn:        room.Turn,
		Phase:       room.Phase,
		Winner:      room.Winner,
		Score:       room.Score,
		GamesPlayed: room.GamesPlayed,
	})

	if room.IsOver() {
		that.archiveResult(ctx, room)
	}
}

func (that *Router) handleRequestRematch(_ context.Context, sender, _ string, event *Event) {
	log := that.logger.With("method", "handleRequestRematch", "sender", sender)

	roomID, ok := that.registry.CurrentRoom(sender)
	if !ok {
		that.sendError(sender, apperror.ErrNotInRoom)
		return
	}

	result, err := that.store.RequestRematch(roomID, sender)
	if err != nil {
		log.Error("rematch request rejected", "roomID", roomID, "error", err)
		that.sendError(sender, err)
		return
	}

	if result.Reset {
		that.broadcast(result.Room, gameResetMessage{
			Type:  msgGameReset,
			Room:  result.Room,
			Score: result.Room.Score,
		})

		log.Info("game reset", "roomID", roomID)
		return
	}

	that.broadcast(result.Room, rematchPendingMessage{
		Type:        msgRematchPending,
		RequestedBy: sender,
		WaitingOn:   result.WaitingOn,
		Votes:       result.Votes,
	})
}

func (that *Router) handleGetState(_ context.Context, sender, _ string, _ *Event) {
	roomID, ok := that.registry.CurrentRoom(sender)
	if !ok {
		that.sendError(sender, apperror.ErrNotInRoom)
		return
	}

	room, err := that.store.Get(roomID)
	if err != nil {
		that.sendError(sender, err)
		return
	}

	that.registry.Send(sender, currentStateMessage{
		Type:        msgCurrentState,
		Room:        room,
		YourSymbol:  room.SymbolOf(sender),
		Score:       room.Score,
		GamesPlayed: room.GamesPlayed,
	})
}

func (that *Router) handleListRooms(_ context.Context, sender, _ string, _ *Event) {
	that.store.EvictStale()

	that.registry.Send(sender, roomListMessage{
		Type:  msgRoomList,
		Rooms: that.store.ListPublic(),
	})
}

// broadcast fans a message out to every participant of the room snapshot.
// Each send is independent; a dead connection never aborts the loop.
func (that *Router) broadcast(room *entity.Room, message any) {
	for _, player := range room.Players {
		that.registry.Send(player, message)
	}
}

func (that *Router) sendError(identity string, err error) {
	that.registry.Send(identity, errorMessage{Type: msgError, Message: err.Error()})
}

// archiveResult records a finished game. Best effort: a storage outage must
// never affect gameplay.
func (that *Router) archiveResult(ctx context.Context, room *entity.Room) {
	if that.results == nil {
		return
	}

	result := &entity.GameResult{
		RoomID:      room.ID,
		Players:     room.Players,
		Winner:      room.Winner,
		Score:       room.Score,
		GamesPlayed: room.GamesPlayed,
		FinishedAt:  time.Now(),
	}

	if err := that.results.Save(ctx, result); err != nil {
		that.logger.Error("failed to archive game result", "roomID", room.ID, "error", err)
	}
}
