// Package lobby implements the channel/room state machine: the tree of
// channel servers and channels clients browse, and the rooms within them
// where players actually gather before a match starts.
package lobby

import (
	"sync"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

// botsMaxPlayers and humanMaxPlayers are the two slot caps a room can have,
// fixed at creation time by whether its settings enable bots.
const (
	botsMaxPlayers  = 16
	humanMaxPlayers = 32
)

// Sender is whatever a Room needs to deliver a frame to one member. It is
// an interface rather than a concrete connection type so lobby has no
// dependency on internal/network; the handler layer supplies the adapter.
type Sender interface {
	Send(ptype codec.PacketType, payload []byte) error
	UserID() uint32
}

// Member is one occupant of a Room.
type Member struct {
	Sender   Sender
	UserID   uint32
	UserName string
	Ready    bool
	Team     uint8
	joinSeq  uint64 // monotonic join order, used for FIFO host election
}

// Room is one match lobby: a bounded set of members, a host, and a shared
// settings block. All mutation goes through its methods, which take mu and
// release it before doing any network I/O so a slow write to one member
// never blocks another member's state change.
type Room struct {
	ID        uint32
	Name      string
	ChannelID uint32

	mu          sync.Mutex
	members     map[uint32]*Member
	hostUserID  uint32
	settings    codec.RoomSettings
	maxPlayers  int
	inGame      bool
	nextJoinSeq uint64
}

// NewRoom creates an empty room. The first member added with AddUser
// becomes its host.
func NewRoom(id uint32, channelID uint32, name string, settings codec.RoomSettings) *Room {
	maxPlayers := humanMaxPlayers
	if settings.EnableBots != 0 {
		maxPlayers = botsMaxPlayers
	}
	return &Room{
		ID:         id,
		ChannelID:  channelID,
		Name:       name,
		members:    make(map[uint32]*Member),
		settings:   settings,
		maxPlayers: maxPlayers,
	}
}

// ErrRoomFull, ErrAlreadyMember and ErrNotMember are returned by AddUser
// and RemoveUser for the conditions a caller should distinguish from a
// generic failure.
type roomError string

func (e roomError) Error() string { return string(e) }

const (
	ErrRoomFull      = roomError("lobby: room is full")
	ErrAlreadyMember = roomError("lobby: already a member of this room")
	ErrNotMember     = roomError("lobby: not a member of this room")
)

// AddUser adds a new member, electing them host if the room was empty.
// Host election is otherwise untouched: joining a non-empty room never
// changes who is host.
func (r *Room) AddUser(sender Sender, userID uint32, userName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[userID]; exists {
		return ErrAlreadyMember
	}
	if len(r.members) >= r.maxPlayers {
		return ErrRoomFull
	}

	r.members[userID] = &Member{
		Sender:   sender,
		UserID:   userID,
		UserName: userName,
		Team:     r.assignTeamLocked(),
		joinSeq:  r.nextJoinSeq,
	}
	r.nextJoinSeq++

	if len(r.members) == 1 {
		r.hostUserID = userID
	}
	return nil
}

// assignTeamLocked balances new joiners across team 0 and 1 by current
// headcount. Callers must hold mu.
func (r *Room) assignTeamLocked() uint8 {
	var team0, team1 int
	for _, m := range r.members {
		if m.Team == 0 {
			team0++
		} else {
			team1++
		}
	}
	if team0 <= team1 {
		return 0
	}
	return 1
}

// RemoveUser removes a member. If the departing member was host, the
// longest-tenured remaining member (lowest joinSeq) becomes host. Returns
// whether the room is now empty, so the caller (Channel) can garbage
// collect it, and whether a new host was elected, so the caller only
// broadcasts a host change when one actually happened.
func (r *Room) RemoveUser(userID uint32) (empty, hostChanged bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[userID]; !exists {
		return false, false, ErrNotMember
	}
	delete(r.members, userID)

	if len(r.members) == 0 {
		return true, false, nil
	}

	if userID == r.hostUserID {
		r.electHostLocked()
		return false, true, nil
	}
	return false, false, nil
}

// electHostLocked picks the remaining member with the lowest joinSeq.
// Callers must hold mu and must not call this on an empty room.
func (r *Room) electHostLocked() {
	var next *Member
	for _, m := range r.members {
		if next == nil || m.joinSeq < next.joinSeq {
			next = m
		}
	}
	r.hostUserID = next.UserID
}

func (r *Room) HostUserID() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostUserID
}

func (r *Room) IsHost(userID uint32) bool {
	return r.HostUserID() == userID
}

// HasMember reports whether userID currently belongs to the room.
func (r *Room) HasMember(userID uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[userID]
	return ok
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) InGame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inGame
}

// SetUserTeam reassigns a member's team. Only the host may call this path;
// enforcement happens in the handler layer, which knows about sessions.
func (r *Room) SetUserTeam(userID uint32, team uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[userID]
	if !ok {
		return ErrNotMember
	}
	m.Team = team
	return nil
}

// ToggleReady flips a member's ready flag and returns the new value.
// Toggling twice in a row returns to the original state: the operation is
// idempotent over an even number of calls by construction, not by
// rejecting repeats.
func (r *Room) ToggleReady(userID uint32) (ready bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[userID]
	if !ok {
		return false, ErrNotMember
	}
	m.Ready = !m.Ready
	return m.Ready, nil
}

// UpdateSettings replaces the room's settings wholesale. Changing
// EnableBots does not resize an already-created room's slot cap.
func (r *Room) UpdateSettings(settings codec.RoomSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings
}

func (r *Room) Settings() codec.RoomSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// ErrNotAllReady and ErrNotInGame cover the two authorization failures
// StartGame and EndGame can hit beyond a plain roomError.
const (
	ErrNotAllReady = roomError("lobby: not all members are ready")
	ErrNotInGame   = roomError("lobby: room is not in a game")
)

// StartGame marks the room in-game. Returns an error if it already is, or
// if any member has not yet readied up.
func (r *Room) StartGame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inGame {
		return roomError("lobby: game already started")
	}
	for _, m := range r.members {
		if !m.Ready {
			return ErrNotAllReady
		}
	}
	r.inGame = true
	return nil
}

// EndGame clears the in-game flag and resets every member back to
// notReady, e.g. on Host.OnGameEnd.
func (r *Room) EndGame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inGame {
		return ErrNotInGame
	}
	r.inGame = false
	for _, m := range r.members {
		m.Ready = false
	}
	return nil
}

// snapshotMembers copies the member list under mu so Broadcast can
// iterate and write without holding mu — a slow or blocked Sender.Send must never
// stall another goroutine trying to mutate the room.
func (r *Room) snapshotMembers() []*Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	return out
}

// Snapshot returns the data needed to build a RoomFullState frame.
func (r *Room) Snapshot() codec.RoomFullState {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]codec.RoomMemberInfo, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, codec.RoomMemberInfo{
			UserID:   m.UserID,
			UserName: m.UserName,
			Ready:    m.Ready,
			Team:     m.Team,
		})
	}
	return codec.RoomFullState{
		RoomID:     r.ID,
		RoomName:   r.Name,
		HostUserID: r.hostUserID,
		InGame:     r.inGame,
		Settings:   r.settings,
		Members:    members,
	}
}

// Broadcast delivers payload to every current member. A member whose send
// fails is removed from the room (its connection is presumed dead) rather
// than retried; the caller is responsible for also closing that
// connection. excludeUserID, if non-zero, skips one member (the one who
// triggered the broadcast, when that member already got a direct reply).
func (r *Room) Broadcast(ptype codec.PacketType, payload []byte, excludeUserID uint32) {
	for _, m := range r.snapshotMembers() {
		if m.UserID == excludeUserID {
			continue
		}
		if err := m.Sender.Send(ptype, payload); err != nil {
			r.RemoveUser(m.UserID)
		}
	}
}

// Summary returns the compact row shown in a RoomList reply.
func (r *Room) Summary() codec.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return codec.RoomSummary{
		RoomID:      r.ID,
		RoomName:    r.Name,
		PlayerCount: uint16(len(r.members)),
		MaxPlayers:  uint16(r.maxPlayers),
		InGame:      r.inGame,
	}
}
