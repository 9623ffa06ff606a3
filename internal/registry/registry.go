package registry

import (
	"log/slog"
	"sync"
)

// Conn is a live transport handle for one participant. The transport shell
// owns the underlying connection; the registry only writes to it.
type Conn interface {
	SendJSON(v any) error
}

// Registry maps participant identity to its live connection and to its
// current room. It is touched by every connection handler, so it carries its
// own lock.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]Conn
	rooms map[string]string
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With("component", "registry"),
		conns:  make(map[string]Conn),
		rooms:  make(map[string]string),
	}
}

// Register - binds a connection to an identity, replacing any prior handle.
func (that *Registry) Register(identity string, conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[identity] = conn
}

// Unregister - drops the identity's handle. Idempotent.
func (that *Registry) Unregister(identity string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, identity)
}

// CurrentRoom - returns the identity's authoritative room, if any.
func (that *Registry) CurrentRoom(identity string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	roomID, ok := that.rooms[identity]

	return roomID, ok
}

func (that *Registry) SetCurrentRoom(identity, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[identity] = roomID
}

func (that *Registry) ClearCurrentRoom(identity string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, identity)
}

// Send - best-effort delivery to one participant. A stale or closed handle
// is logged and swallowed so a broadcast never aborts on one bad connection.
func (that *Registry) Send(identity string, message any) {
	that.mu.RLock()
	conn, ok := that.conns[identity]
	that.mu.RUnlock()

	if !ok {
		that.logger.Warn("connection not found", "identity", identity)
		return
	}

	if err := conn.SendJSON(message); err != nil {
		that.logger.Error("failed to send message", "identity", identity, "error", err)
	}
}
