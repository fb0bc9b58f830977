package lobby

import (
	"errors"
	"testing"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

type fakeSender struct {
	userID  uint32
	failing bool
	sent    int
}

func (f *fakeSender) Send(ptype codec.PacketType, payload []byte) error {
	if f.failing {
		return errors.New("send failed")
	}
	f.sent++
	return nil
}

func (f *fakeSender) UserID() uint32 { return f.userID }

func newTestRoom(settings codec.RoomSettings) *Room {
	return NewRoom(1, 0, "test room", settings)
}

func TestFirstMemberBecomesHost(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	if err := r.AddUser(&fakeSender{userID: 1}, 1, "alice"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if !r.IsHost(1) {
		t.Fatal("expected first member to be host")
	}
}

func TestHostPresenceInvariantAcrossDepartures(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")
	r.AddUser(&fakeSender{userID: 2}, 2, "bob")
	r.AddUser(&fakeSender{userID: 3}, 3, "carol")

	empty, hostChanged, err := r.RemoveUser(1)
	if err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if empty {
		t.Fatal("room should not be empty yet")
	}
	if !hostChanged {
		t.Fatal("expected a new host to be elected when the host leaves")
	}
	if !r.HasMember(2) || !r.HasMember(3) {
		t.Fatal("remaining members missing")
	}
	host := r.HostUserID()
	if host != 2 && host != 3 {
		t.Fatalf("host = %d, want one of the remaining members", host)
	}
}

func TestRemoveUserReportsNoHostChangeForNonHostDeparture(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")
	r.AddUser(&fakeSender{userID: 2}, 2, "bob")

	_, hostChanged, err := r.RemoveUser(2)
	if err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if hostChanged {
		t.Fatal("removing a non-host member must not report a host change")
	}
	if r.HostUserID() != 1 {
		t.Fatalf("host = %d, want 1 (unchanged)", r.HostUserID())
	}
}

func TestHostElectionIsFIFOByJoinOrder(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")
	r.AddUser(&fakeSender{userID: 2}, 2, "bob")
	r.AddUser(&fakeSender{userID: 3}, 3, "carol")

	// alice (host, joined first) leaves -> bob (joined second) must become host.
	r.RemoveUser(1)
	if got := r.HostUserID(); got != 2 {
		t.Fatalf("host after alice leaves = %d, want 2 (bob)", got)
	}

	r.RemoveUser(2)
	if got := r.HostUserID(); got != 3 {
		t.Fatalf("host after bob leaves = %d, want 3 (carol)", got)
	}
}

func TestRemoveLastMemberReportsEmpty(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")

	empty, _, err := r.RemoveUser(1)
	if err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if !empty {
		t.Fatal("expected room to report empty after its last member leaves")
	}
}

func TestRoomSlotBoundHumanRoom(t *testing.T) {
	settings := codec.DefaultRoomSettings()
	settings.EnableBots = 0
	r := newTestRoom(settings)

	for i := uint32(1); i <= humanMaxPlayers; i++ {
		if err := r.AddUser(&fakeSender{userID: i}, i, "p"); err != nil {
			t.Fatalf("AddUser(%d): unexpected error %v", i, err)
		}
	}
	if err := r.AddUser(&fakeSender{userID: humanMaxPlayers + 1}, humanMaxPlayers+1, "overflow"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}
}

func TestRoomSlotBoundBotsRoom(t *testing.T) {
	settings := codec.DefaultRoomSettings()
	settings.EnableBots = 1
	r := newTestRoom(settings)

	for i := uint32(1); i <= botsMaxPlayers; i++ {
		if err := r.AddUser(&fakeSender{userID: i}, i, "p"); err != nil {
			t.Fatalf("AddUser(%d): unexpected error %v", i, err)
		}
	}
	if err := r.AddUser(&fakeSender{userID: botsMaxPlayers + 1}, botsMaxPlayers+1, "overflow"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}
}

func TestAddUserRejectsDuplicateMembership(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")
	if err := r.AddUser(&fakeSender{userID: 1}, 1, "alice"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestToggleReadyIsItsOwnInverse(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")

	ready, err := r.ToggleReady(1)
	if err != nil || !ready {
		t.Fatalf("first toggle: ready=%v err=%v, want true, nil", ready, err)
	}
	ready, err = r.ToggleReady(1)
	if err != nil || ready {
		t.Fatalf("second toggle: ready=%v err=%v, want false, nil", ready, err)
	}
}

func TestStartGameRejectsUnreadyMembers(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")
	r.AddUser(&fakeSender{userID: 2}, 2, "bob")
	r.ToggleReady(1)

	if err := r.StartGame(); !errors.Is(err, ErrNotAllReady) {
		t.Fatalf("err = %v, want ErrNotAllReady", err)
	}
	if r.InGame() {
		t.Fatal("room should not be in a game while a member is not ready")
	}

	r.ToggleReady(2)
	if err := r.StartGame(); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if !r.InGame() {
		t.Fatal("expected room to be in a game once everyone is ready")
	}
}

func TestEndGameRejectsWhenNotInGame(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")

	if err := r.EndGame(); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("err = %v, want ErrNotInGame", err)
	}
}

func TestEndGameResetsMemberReadiness(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	r.AddUser(&fakeSender{userID: 1}, 1, "alice")
	r.AddUser(&fakeSender{userID: 2}, 2, "bob")
	r.ToggleReady(1)
	r.ToggleReady(2)
	if err := r.StartGame(); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	if err := r.EndGame(); err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	if r.InGame() {
		t.Fatal("expected InGame to be false after EndGame")
	}
	snap := r.Snapshot()
	for _, m := range snap.Members {
		if m.Ready {
			t.Errorf("member %d still ready after EndGame", m.UserID)
		}
	}
}

func TestBroadcastDropsMembersWhoseSendFails(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	good := &fakeSender{userID: 1}
	bad := &fakeSender{userID: 2, failing: true}
	r.AddUser(good, 1, "alice")
	r.AddUser(bad, 2, "bob")

	r.Broadcast(codec.PtChatReply, []byte("hi"), 0)

	if good.sent != 1 {
		t.Errorf("good sender got %d sends, want 1", good.sent)
	}
	if r.HasMember(2) {
		t.Error("member whose send failed should have been removed")
	}
	if !r.HasMember(1) {
		t.Error("member whose send succeeded should remain")
	}
}

func TestBroadcastExcludesGivenUser(t *testing.T) {
	r := newTestRoom(codec.DefaultRoomSettings())
	a := &fakeSender{userID: 1}
	b := &fakeSender{userID: 2}
	r.AddUser(a, 1, "alice")
	r.AddUser(b, 2, "bob")

	r.Broadcast(codec.PtChatReply, []byte("hi"), 1)

	if a.sent != 0 {
		t.Errorf("excluded sender got %d sends, want 0", a.sent)
	}
	if b.sent != 1 {
		t.Errorf("other sender got %d sends, want 1", b.sent)
	}
}
