package lobby

import (
	"testing"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

func TestCreateRoomAllocatesIncreasingIDs(t *testing.T) {
	ch := NewChannel(0, "main")
	r1 := ch.CreateRoom("room one", codec.DefaultRoomSettings())
	r2 := ch.CreateRoom("room two", codec.DefaultRoomSettings())

	if r1.ID != 1 || r2.ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", r1.ID, r2.ID)
	}
}

func TestRemoveRoomIfEmptyOnlyRemovesEmptyRooms(t *testing.T) {
	ch := NewChannel(0, "main")
	r := ch.CreateRoom("room", codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")

	if ch.RemoveRoomIfEmpty(r.ID) {
		t.Fatal("should not remove a non-empty room")
	}

	r.RemoveUser(1)
	if !ch.RemoveRoomIfEmpty(r.ID) {
		t.Fatal("should remove an empty room")
	}
	if _, ok := ch.GetRoom(r.ID); ok {
		t.Fatal("room should no longer be retrievable")
	}
}

func TestListRoomsReflectsOpenRooms(t *testing.T) {
	ch := NewChannel(0, "main")
	ch.CreateRoom("room one", codec.DefaultRoomSettings())
	ch.CreateRoom("room two", codec.DefaultRoomSettings())

	summaries := ch.ListRooms()
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
}

func TestDirectoryChannelListEnumeratesEveryChannel(t *testing.T) {
	dir := NewDirectory()
	srv := dir.AddServer("main")
	srv.AddChannel("lobby")
	srv.AddChannel("ranked")

	list := dir.ChannelList()
	if len(list.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(list.Entries))
	}
	if list.Entries[0].Name != "lobby" || list.Entries[1].Name != "ranked" {
		t.Fatalf("entries = %+v", list.Entries)
	}
}
