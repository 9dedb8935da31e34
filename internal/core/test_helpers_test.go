package core

import (
	"context"
	"testing"
	"time"

	"github.com/pinchat/pinchat-server/internal/files"
	"github.com/pinchat/pinchat-server/internal/log"
	"github.com/pinchat/pinchat-server/internal/store"
	"github.com/pinchat/pinchat-server/internal/store/sqlite"
)

// newTestHub builds a hub on an in-memory store with one seeded user per
// name and a "lobby" room. Returns the hub and the backing store.
func newTestHub(t *testing.T, usernames ...string) (*Hub, store.Store) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	var creator int64 = 1
	for i, name := range usernames {
		u, err := st.CreateUser(ctx, name, "hash")
		if err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
		if i == 0 {
			creator = u.ID
		}
	}
	if _, err := st.CreateRoom(ctx, "lobby", "pinhash", creator); err != nil {
		t.Fatalf("seed room: %v", err)
	}

	fs, err := files.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create file store: %v", err)
	}

	return NewHub(st, fs, 50, log.Disabled()), st
}

// mustEvent drains ch until an event of the wanted kind arrives.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for kind %v", kind)
			}
			if ev != nil && ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
		}
	}
}

// noEvent asserts nothing is pending on ch.
func noEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

// failingStore wraps a store and fails every message append.
type failingStore struct {
	store.Store
}

func (f *failingStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	return context.DeadlineExceeded
}
