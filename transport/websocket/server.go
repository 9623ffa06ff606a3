package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tresenraya/tresenraya-backend/internal/registry"
	"github.com/tresenraya/tresenraya-backend/internal/router"
)

// sessionRouter is the core the transport hands parsed events to.
type sessionRouter interface {
	Connect(identity string, conn registry.Conn)
	HandleEvent(ctx context.Context, sender, pathRoomID string, event *router.Event)
	Disconnect(identity string)
}

type Server struct {
	logger *slog.Logger
	router sessionRouter

	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, sessionRouter sessionRouter) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		router: sessionRouter,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Start - starts the WebSocket server. Connections are path-addressed by
// room id and participant identity, both chosen by the client.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/{room}/{player}", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	pathRoomID := r.PathValue("room")
	player := r.PathValue("player")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer func() {
		that.router.Disconnect(player)
		conn.Close()
	}()

	log = log.With("player", player, "roomID", pathRoomID)
	log.Info("WebSocket connection established")

	that.router.Connect(player, &wsConn{conn: conn})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var event router.Event
		if err = json.Unmarshal(raw, &event); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		that.router.HandleEvent(ctx, player, pathRoomID, &event)
	}
}

// wsConn adapts a gorilla connection to the registry handle. Gorilla allows
// a single concurrent writer, hence the mutex.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (that *wsConn) SendJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
