package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pinchat/pinchat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.CreateUser(ctx, "alice", "hash123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == 0 || created.Username != "alice" || created.PasswordHash != "hash123" {
		t.Fatalf("unexpected user: %+v", created)
	}

	byName, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("ID mismatch: %d vs %d", byName.ID, created.ID)
	}

	byID, err := st.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("unexpected username: %q", byID.Username)
	}
}

func TestUserNotFound(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.GetUserByUsername(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetUserByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateUsername(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "alice", "h1"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := st.CreateUser(ctx, "alice", "h2"); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestCreateAndListRooms(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	room, err := st.CreateRoom(ctx, "lobby", "pinhash", user.ID)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.Name != "lobby" || room.PINHash != "pinhash" || room.CreatorID != user.ID || !room.Active {
		t.Fatalf("unexpected room: %+v", room)
	}

	if _, err := st.CreateRoom(ctx, "den", "pinhash2", user.ID); err != nil {
		t.Fatalf("CreateRoom second: %v", err)
	}

	rooms, err := st.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}

	byName, err := st.GetRoomByName(ctx, "lobby")
	if err != nil {
		t.Fatalf("GetRoomByName: %v", err)
	}
	if byName.ID != room.ID {
		t.Fatalf("ID mismatch: %d vs %d", byName.ID, room.ID)
	}
}

func TestRoomNotFoundAndDuplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.GetRoomByName(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user, err := st.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := st.CreateRoom(ctx, "lobby", "p1", user.ID); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, err := st.CreateRoom(ctx, "lobby", "p2", user.ID); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestAppendAndListMessages(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	room, err := st.CreateRoom(ctx, "lobby", "pinhash", user.ID)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second", "third"} {
		msg := &store.Message{
			RoomID:    room.ID,
			UserID:    user.ID,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := st.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage %q: %v", content, err)
		}
		if msg.ID == 0 {
			t.Fatalf("AppendMessage did not fill ID for %q", content)
		}
	}

	all, err := st.ListMessages(ctx, room.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}
	for i, want := range []string{"first", "second", "third"} {
		if all[i].Content != want {
			t.Errorf("message %d: got %q, want %q", i, all[i].Content, want)
		}
		if all[i].Username != "alice" {
			t.Errorf("message %d: username %q", i, all[i].Username)
		}
	}

	// A limited query returns the most recent messages, still ascending.
	recent, err := st.ListMessages(ctx, room.ID, 2)
	if err != nil {
		t.Fatalf("ListMessages limited: %v", err)
	}
	if len(recent) != 2 || recent[0].Content != "second" || recent[1].Content != "third" {
		t.Fatalf("unexpected limited history: %+v", recent)
	}
}

func TestMessageTiesBreakByInsertionOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	room, err := st.CreateRoom(ctx, "lobby", "pinhash", user.ID)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, content := range []string{"a", "b", "c"} {
		msg := &store.Message{RoomID: room.ID, UserID: user.ID, Content: content, CreatedAt: ts}
		if err := st.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	all, err := st.ListMessages(ctx, room.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].Content != want {
			t.Fatalf("tie order broken at %d: got %q, want %q", i, all[i].Content, want)
		}
	}
}

func TestFileAttachmentRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	room, err := st.CreateRoom(ctx, "lobby", "pinhash", user.ID)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	withFile := &store.Message{
		RoomID:         room.ID,
		UserID:         user.ID,
		Content:        "Shared file: report.pdf",
		FileAttachment: "report.pdf",
		CreatedAt:      time.Now().UTC(),
	}
	if err := st.AppendMessage(ctx, withFile); err != nil {
		t.Fatalf("AppendMessage with file: %v", err)
	}

	plain := &store.Message{
		RoomID:    room.ID,
		UserID:    user.ID,
		Content:   "just text",
		CreatedAt: time.Now().UTC(),
	}
	if err := st.AppendMessage(ctx, plain); err != nil {
		t.Fatalf("AppendMessage plain: %v", err)
	}

	all, err := st.ListMessages(ctx, room.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(all))
	}
	if all[0].FileAttachment != "report.pdf" {
		t.Errorf("expected attachment on first message, got %q", all[0].FileAttachment)
	}
	if all[1].FileAttachment != "" {
		t.Errorf("expected no attachment on second message, got %q", all[1].FileAttachment)
	}
}
