package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mirrorCall struct {
	op             string // "online" / "offline"
	userID         string
	conversationID string
}

// fakeMirror records calls and signals on a channel so tests can wait
// for the background mirror goroutine.
type fakeMirror struct {
	mu    sync.Mutex
	calls []mirrorCall
	seen  chan mirrorCall
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{seen: make(chan mirrorCall, 8)}
}

func (f *fakeMirror) Online(_ context.Context, userID, conversationID string) error {
	call := mirrorCall{op: "online", userID: userID, conversationID: conversationID}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	f.seen <- call
	return nil
}

func (f *fakeMirror) Offline(_ context.Context, userID string) error {
	call := mirrorCall{op: "offline", userID: userID}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	f.seen <- call
	return nil
}

func (f *fakeMirror) wait(t *testing.T) mirrorCall {
	t.Helper()
	select {
	case call := <-f.seen:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mirror call")
		return mirrorCall{}
	}
}

// drainFrames decodes every frame currently queued on the client.
func drainFrames(t *testing.T, c *Client) []Frame {
	t.Helper()
	var out []Frame
	for {
		select {
		case raw := <-c.Outbox():
			var f Frame
			require.NoError(t, json.Unmarshal(raw, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func statusFrames(frames []Frame) []Frame {
	var out []Frame
	for _, f := range frames {
		if f.Event == EventUserStatusUpdate {
			out = append(out, f)
		}
	}
	return out
}

func TestOnlineAnnouncedToRoomIncludingJoiner(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(nil)
	a := testClient("c1", "u1")
	b := testClient("c2", "u2")

	reg.Join(a, "42")
	p.OnTransition(reg.Join(b, "42"))

	for _, c := range []*Client{a, b} {
		frames := statusFrames(drainFrames(t, c))
		require.Len(t, frames, 1, "conn %s", c.ConnID)
		assert.Equal(t, "u2", frames[0].Data["userId"])
		assert.Equal(t, "42", frames[0].Data["conversationId"])
		assert.Equal(t, StatusOnline, frames[0].Data["status"])
	}
}

func TestOfflineAnnouncedToRemainingMembers(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(nil)
	a := testClient("c1", "u1")
	b := testClient("c2", "u2")

	reg.Join(a, "42")
	reg.Join(b, "42")
	drainFrames(t, a)
	drainFrames(t, b)

	p.OnTransition(reg.Leave(a))

	frames := statusFrames(drainFrames(t, b))
	require.Len(t, frames, 1)
	assert.Equal(t, "u1", frames[0].Data["userId"])
	assert.Equal(t, StatusOffline, frames[0].Data["status"])

	// the leaver gets nothing
	assert.Empty(t, drainFrames(t, a))
}

func TestRoomSwitchAnnouncesBothSides(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(nil)
	a := testClient("c1", "u1")
	b := testClient("c2", "u2")
	c := testClient("c3", "u3")

	reg.Join(b, "old")
	reg.Join(c, "new")
	reg.Join(a, "old")
	drainFrames(t, a)
	drainFrames(t, b)
	drainFrames(t, c)

	p.OnTransition(reg.Join(a, "new"))

	old := statusFrames(drainFrames(t, b))
	require.Len(t, old, 1)
	assert.Equal(t, StatusOffline, old[0].Data["status"])
	assert.Equal(t, "old", old[0].Data["conversationId"])

	fresh := statusFrames(drainFrames(t, c))
	require.Len(t, fresh, 1)
	assert.Equal(t, StatusOnline, fresh[0].Data["status"])
	assert.Equal(t, "new", fresh[0].Data["conversationId"])
}

func TestMultiDeviceSuppressesFlapping(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(nil)
	d1 := testClient("c1", "u1")
	d2 := testClient("c2", "u1")
	peer := testClient("c3", "u2")

	reg.Join(peer, "42")
	p.OnTransition(reg.Join(d1, "42"))
	drainFrames(t, peer)

	// second device of an already-online user: silent
	p.OnTransition(reg.Join(d2, "42"))
	assert.Empty(t, statusFrames(drainFrames(t, peer)))

	// first device leaves, user still online via d2: silent
	p.OnTransition(reg.Leave(d1))
	assert.Empty(t, statusFrames(drainFrames(t, peer)))

	// last device leaves: offline
	p.OnTransition(reg.Leave(d2))
	frames := statusFrames(drainFrames(t, peer))
	require.Len(t, frames, 1)
	assert.Equal(t, StatusOffline, frames[0].Data["status"])
}

func TestRejoinSameRoomIsSilent(t *testing.T) {
	reg := NewRegistry()
	p := NewPresence(nil)
	a := testClient("c1", "u1")
	b := testClient("c2", "u2")

	reg.Join(a, "42")
	reg.Join(b, "42")
	drainFrames(t, a)
	drainFrames(t, b)

	p.OnTransition(reg.Join(a, "42"))
	assert.Empty(t, statusFrames(drainFrames(t, a)))
	assert.Empty(t, statusFrames(drainFrames(t, b)))
}

func TestMirrorRecordsTransitions(t *testing.T) {
	reg := NewRegistry()
	mirror := newFakeMirror()
	p := NewPresence(mirror)
	a := testClient("c1", "u1")

	p.OnTransition(reg.Join(a, "42"))
	call := mirror.wait(t)
	assert.Equal(t, mirrorCall{op: "online", userID: "u1", conversationID: "42"}, call)

	p.OnTransition(reg.Leave(a))
	call = mirror.wait(t)
	assert.Equal(t, mirrorCall{op: "offline", userID: "u1"}, call)
}
