package telemetry

import (
	"testing"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/session"
)

type fakeSender struct{ userID uint32 }

func (f *fakeSender) Send(codec.PacketType, []byte) error { return nil }
func (f *fakeSender) UserID() uint32                      { return f.userID }

func TestSnapshotCountsRoomsAndSessions(t *testing.T) {
	directory := lobby.NewDirectory()
	srv := directory.AddServer("Main")
	ch := srv.AddChannel("General")
	r1 := ch.CreateRoom("room one", codec.DefaultRoomSettings())
	r1.AddUser(&fakeSender{userID: 1}, 1, "alice")
	r2 := ch.CreateRoom("room two", codec.DefaultRoomSettings())
	r2.AddUser(&fakeSender{userID: 2}, 2, "bob")
	r2.ToggleReady(2)
	if err := r2.StartGame(); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	sessions := session.NewRegistry()
	sessions.Bind(session.New(1, "alice"))
	sessions.Bind(session.New(2, "bob"))

	p := NewPublisher("tcp://localhost:1883", "test", directory, sessions, 0)
	snap := p.snapshot()

	if snap.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", snap.TotalSessions)
	}
	if snap.TotalRooms != 2 {
		t.Errorf("TotalRooms = %d, want 2", snap.TotalRooms)
	}
	if snap.RoomsInGame != 1 {
		t.Errorf("RoomsInGame = %d, want 1", snap.RoomsInGame)
	}
	if snap.ChannelServerRooms["Main"] != 2 {
		t.Errorf("ChannelServerRooms[Main] = %d, want 2", snap.ChannelServerRooms["Main"])
	}
}
