package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tonpocket/internal/events"
)

func TestNotifier_EmitAndExpire(t *testing.T) {
	n := New(50*time.Millisecond, nil, zap.NewNop())
	defer n.Close()

	n.Emit("deposit committed")

	cur, ok := n.Current()
	require.True(t, ok)
	assert.True(t, cur.Visible)
	assert.Equal(t, "deposit committed", cur.Message)

	assert.Eventually(t, func() bool {
		cur, ok := n.Current()
		return ok && !cur.Visible
	}, time.Second, 10*time.Millisecond, "notification must auto-hide after the TTL")
}

func TestNotifier_ReplaceResetsTimer(t *testing.T) {
	n := New(80*time.Millisecond, nil, zap.NewNop())
	defer n.Close()

	n.Emit("first")
	time.Sleep(50 * time.Millisecond)
	n.Emit("second")

	// the first notification's expiry must not hide the second
	time.Sleep(50 * time.Millisecond)
	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "second", cur.Message)
	assert.True(t, cur.Visible, "replacement must get a full TTL of its own")

	assert.Eventually(t, func() bool {
		cur, ok := n.Current()
		return ok && !cur.Visible
	}, time.Second, 10*time.Millisecond)
}

func TestNotifier_SingleActive(t *testing.T) {
	n := New(time.Minute, nil, zap.NewNop())
	defer n.Close()

	n.Emit("one")
	n.Emit("two")

	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "two", cur.Message)
}

func TestNotifier_PublishesEvents(t *testing.T) {
	b := events.NewNotificationBroadcaster(8)
	n := New(30*time.Millisecond, b, zap.NewNop())
	defer n.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	n.Emit("swap committed")

	select {
	case e := <-ch:
		assert.True(t, e.Visible)
		assert.Equal(t, "swap committed", e.Message)
	case <-time.After(time.Second):
		t.Fatal("no visible event published")
	}

	select {
	case e := <-ch:
		assert.False(t, e.Visible, "expiry must publish an invisible event")
	case <-time.After(time.Second):
		t.Fatal("no expiry event published")
	}
}

func TestNotifier_CloseStopsEmit(t *testing.T) {
	n := New(time.Minute, nil, zap.NewNop())
	n.Close()
	n.Emit("after close")

	_, ok := n.Current()
	assert.False(t, ok)
}
