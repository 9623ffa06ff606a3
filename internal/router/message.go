package router

import (
	"github.com/tresenraya/tresenraya-backend/internal/entity"
	"github.com/tresenraya/tresenraya-backend/internal/roomstore"
)

// Inbound event types.
const (
	EventCreateRoom     = "create_room"
	EventJoinRoom       = "join_room"
	EventMove           = "move"
	EventRequestRematch = "request_rematch"
	EventGetState       = "get_state"
	EventListRooms      = "list_rooms"
)

// Outbound message types.
const (
	msgRoomCreated      = "room_created"
	msgJoined           = "joined"
	msgStateUpdated     = "state_updated"
	msgBoardUpdated     = "board_updated"
	msgGameReset        = "game_reset"
	msgRematchPending   = "rematch_pending"
	msgCurrentState     = "current_state"
	msgRoomList         = "room_list"
	msgPeerDisconnected = "peer_disconnected"
	msgError            = "error"
)

// Event is one inbound message, tagged by type. Fields not used by a given
// type are left empty; the transport validates nothing beyond the JSON shape.
type Event struct {
	Type       string `json:"type"`
	Passphrase string `json:"passphrase,omitempty"`
	Name       string `json:"name,omitempty"`
	Position   *int   `json:"position,omitempty"`
}

type roomCreatedMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type joinedMessage struct {
	Type       string       `json:"type"`
	Room       *entity.Room `json:"room"`
	YourSymbol string       `json:"your_symbol"`
}

type stateUpdatedMessage struct {
	Type string       `json:"type"`
	Room *entity.Room `json:"room"`
}

type boardUpdatedMessage struct {
	Type        string         `json:"type"`
	Board       [9]string      `json:"board"`
	Turn        string         `json:"turn"`
	Phase       string         `json:"phase"`
	Winner      string         `json:"winner,omitempty"`
	Score       map[string]int `json:"score"`
	GamesPlayed int            `json:"games_played"`
}

type gameResetMessage struct {
	Type  string         `json:"type"`
	Room  *entity.Room   `json:"room"`
	Score map[string]int `json:"score"`
}

type rematchPendingMessage struct {
	Type        string   `json:"type"`
	RequestedBy string   `json:"requested_by"`
	WaitingOn   string   `json:"waiting_on,omitempty"`
	Votes       []string `json:"votes"`
}

type currentStateMessage struct {
	Type        string         `json:"type"`
	Room        *entity.Room   `json:"room"`
	YourSymbol  string         `json:"your_symbol"`
	Score       map[string]int `json:"score"`
	GamesPlayed int            `json:"games_played"`
}

type roomListMessage struct {
	Type  string              `json:"type"`
	Rooms []roomstore.Summary `json:"rooms"`
}

type peerDisconnectedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
