package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/roomrelay/roomrelay-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func joinCmd(name, room string) *Command {
	return &Command{Kind: CommandJoinRoom, User: name, Room: room}
}

// drainJoin consumes the welcome, history, and roster events the hub
// delivers to a joining connection.
func drainJoin(t *testing.T, c *Client) {
	t.Helper()
	mustEvent(t, c.Events, EventMessage)
	mustEvent(t, c.Events, EventHistory)
	mustEvent(t, c.Events, EventRoomUsers)
}

// fakeStore is an in-memory store.MessageStore that counts writes.
type fakeStore struct {
	mu       sync.Mutex
	messages []*store.Message
	inserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) InsertMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, copyMessage(msg))
	f.inserts++
	return nil
}

func (f *fakeStore) ListRoomMessages(_ context.Context, room string) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*store.Message, 0)
	for _, m := range f.messages {
		if m.Room == room && !m.IsPrivate {
			out = append(out, copyMessage(m))
		}
	}
	return out, nil
}

func (f *fakeStore) GetMessage(_ context.Context, id, room string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.ID == id && m.Room == room {
			return copyMessage(m), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) AppendReadBy(_ context.Context, id, room, readerID string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.ID != id || m.Room != room {
			continue
		}
		for _, r := range m.ReadBy {
			if r == readerID {
				return nil, nil
			}
		}
		m.ReadBy = append(m.ReadBy, readerID)
		return copyMessage(m), nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts
}

func (f *fakeStore) lastMessage() *store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return nil
	}
	return copyMessage(f.messages[len(f.messages)-1])
}

func copyMessage(m *store.Message) *store.Message {
	cp := *m
	cp.ReadBy = append([]string(nil), m.ReadBy...)
	return &cp
}
