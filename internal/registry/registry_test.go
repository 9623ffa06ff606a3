package registry

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnClosed = errors.New("connection closed")

type fakeConn struct {
	sent   []any
	failed bool
}

func (that *fakeConn) SendJSON(v any) error {
	if that.failed {
		return errConnClosed
	}

	that.sent = append(that.sent, v)

	return nil
}

func newTestRegistry() *Registry {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_Register(t *testing.T) {
	t.Run("Send reaches the registered connection", func(t *testing.T) {
		reg := newTestRegistry()
		conn := &fakeConn{}

		reg.Register("alice", conn)
		reg.Send("alice", "hello")

		require.Len(t, conn.sent, 1)
		assert.Equal(t, "hello", conn.sent[0])
	})

	t.Run("A later connect replaces the former handle", func(t *testing.T) {
		reg := newTestRegistry()
		stale := &fakeConn{}
		fresh := &fakeConn{}

		reg.Register("alice", stale)
		reg.Register("alice", fresh)
		reg.Send("alice", "hello")

		assert.Empty(t, stale.sent)
		assert.Len(t, fresh.sent, 1)
	})
}

func TestRegistry_Unregister(t *testing.T) {
	reg := newTestRegistry()
	conn := &fakeConn{}
	reg.Register("alice", conn)

	reg.Unregister("alice")
	reg.Send("alice", "hello")

	// Then: nothing delivered, and a second unregister does not panic
	assert.Empty(t, conn.sent)
	reg.Unregister("alice")
}

func TestRegistry_Send(t *testing.T) {
	t.Run("Delivery failure is swallowed", func(t *testing.T) {
		reg := newTestRegistry()
		reg.Register("alice", &fakeConn{failed: true})

		// Then: sending to a dead connection must not panic or propagate
		reg.Send("alice", "hello")
	})

	t.Run("Unknown identity is swallowed", func(t *testing.T) {
		reg := newTestRegistry()

		reg.Send("ghost", "hello")
	})
}

func TestRegistry_CurrentRoom(t *testing.T) {
	reg := newTestRegistry()

	// Given: no room assigned yet
	_, ok := reg.CurrentRoom("alice")
	assert.False(t, ok)

	// When: a room is assigned
	reg.SetCurrentRoom("alice", "room-1")

	roomID, ok := reg.CurrentRoom("alice")
	require.True(t, ok)
	assert.Equal(t, "room-1", roomID)

	// When: the assignment is cleared
	reg.ClearCurrentRoom("alice")

	_, ok = reg.CurrentRoom("alice")
	assert.False(t, ok)
}
