package codec

// RoomSettings mirrors the client's room configuration dialog, field for
// field. The wire layout and the defaults below both come from the
// client's expectations, so they live together here rather than being
// re-derived by each caller.
type RoomSettings struct {
	GameModeID         uint8
	MapID              uint8
	WinLimit           uint16
	KillLimit          uint16
	StartMoney         uint32
	ForceCamera        uint8
	NextMapEnabled     uint8
	ChangeTeams        uint8
	EnableBots         uint8
	Difficulty         uint8
	RespawnTime        uint8
	TeamBalance        uint8
	WeaponRestrictions uint8
	HltvEnabled        uint8
}

// DefaultRoomSettings returns the settings a freshly created room starts
// with, before the host changes anything.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		GameModeID:         0,
		MapID:              1,
		WinLimit:           10,
		KillLimit:          150,
		StartMoney:         16000,
		ForceCamera:        1,
		NextMapEnabled:     0,
		ChangeTeams:        0,
		EnableBots:         0,
		Difficulty:         0,
		RespawnTime:        3,
		TeamBalance:        0,
		WeaponRestrictions: 0,
		HltvEnabled:        0,
	}
}

func encodeRoomSettings(e *Encoder, s RoomSettings) {
	e.WriteU8(s.GameModeID).
		WriteU8(s.MapID).
		WriteU16(s.WinLimit).
		WriteU16(s.KillLimit).
		WriteU32(s.StartMoney).
		WriteU8(s.ForceCamera).
		WriteU8(s.NextMapEnabled).
		WriteU8(s.ChangeTeams).
		WriteU8(s.EnableBots).
		WriteU8(s.Difficulty).
		WriteU8(s.RespawnTime).
		WriteU8(s.TeamBalance).
		WriteU8(s.WeaponRestrictions).
		WriteU8(s.HltvEnabled)
}

func decodeRoomSettings(d *Decoder) RoomSettings {
	return RoomSettings{
		GameModeID:         d.ReadU8("game_mode_id"),
		MapID:              d.ReadU8("map_id"),
		WinLimit:           d.ReadU16("win_limit"),
		KillLimit:          d.ReadU16("kill_limit"),
		StartMoney:         d.ReadU32("start_money"),
		ForceCamera:        d.ReadU8("force_camera"),
		NextMapEnabled:     d.ReadU8("next_map_enabled"),
		ChangeTeams:        d.ReadU8("change_teams"),
		EnableBots:         d.ReadU8("enable_bots"),
		Difficulty:         d.ReadU8("difficulty"),
		RespawnTime:        d.ReadU8("respawn_time"),
		TeamBalance:        d.ReadU8("team_balance"),
		WeaponRestrictions: d.ReadU8("weapon_restrictions"),
		HltvEnabled:        d.ReadU8("hltv_enabled"),
	}
}

// RoomRequest is the generic inbound envelope: an action byte followed by
// an action-specific body. DecodeRoomRequestAction peeks the action so the
// handler can dispatch to the right decoder.
func DecodeRoomRequestAction(d *Decoder) RoomAction {
	return RoomAction(d.ReadU8("room_action"))
}

type RoomCreateRequest struct {
	RoomName string
	Settings RoomSettings
}

func DecodeRoomCreateRequest(d *Decoder) RoomCreateRequest {
	return RoomCreateRequest{
		RoomName: d.ReadString("room_name"),
		Settings: decodeRoomSettings(d),
	}
}

type RoomJoinRequest struct {
	RoomID uint32
}

func DecodeRoomJoinRequest(d *Decoder) RoomJoinRequest {
	return RoomJoinRequest{RoomID: d.ReadU32("room_id")}
}

// RoomLeaveRequest, RoomStartRequest and RoomToggleReadyRequest carry no
// body: the acting room is always the connection's bound room.
type RoomLeaveRequest struct{}
type RoomStartRequest struct{}
type RoomToggleReadyRequest struct{}

func DecodeRoomLeaveRequest(d *Decoder) RoomLeaveRequest             { return RoomLeaveRequest{} }
func DecodeRoomStartRequest(d *Decoder) RoomStartRequest             { return RoomStartRequest{} }
func DecodeRoomToggleReadyRequest(d *Decoder) RoomToggleReadyRequest { return RoomToggleReadyRequest{} }

type RoomSetUserTeamRequest struct {
	UserID uint32
	Team   uint8
}

func DecodeRoomSetUserTeamRequest(d *Decoder) RoomSetUserTeamRequest {
	return RoomSetUserTeamRequest{
		UserID: d.ReadU32("user_id"),
		Team:   d.ReadU8("team"),
	}
}

type RoomUpdateSettingsRequest struct {
	Settings RoomSettings
}

func DecodeRoomUpdateSettingsRequest(d *Decoder) RoomUpdateSettingsRequest {
	return RoomUpdateSettingsRequest{Settings: decodeRoomSettings(d)}
}

type RoomSetCountdownRequest struct {
	Seconds uint8
}

func DecodeRoomSetCountdownRequest(d *Decoder) RoomSetCountdownRequest {
	return RoomSetCountdownRequest{Seconds: d.ReadU8("seconds")}
}

type RoomConnectionFailureRequest struct {
	UserID uint32
}

func DecodeRoomConnectionFailureRequest(d *Decoder) RoomConnectionFailureRequest {
	return RoomConnectionFailureRequest{UserID: d.ReadU32("user_id")}
}

// --- Outbound room broadcasts ---

// RoomMemberInfo is one member row inside a RoomFullState broadcast.
type RoomMemberInfo struct {
	UserID   uint32
	UserName string
	Ready    bool
	Team     uint8
}

// RoomFullState is a complete snapshot rather than a diff. It is sent to a
// user right after they create or join a room, and broadcast to every
// member after a team change. A settings change is broadcast as
// RoomSettingsChanged instead.
type RoomFullState struct {
	RoomID     uint32
	RoomName   string
	HostUserID uint32
	InGame     bool
	Settings   RoomSettings
	Members    []RoomMemberInfo
}

func (p RoomFullState) Encode() []byte {
	e := NewEncoder()
	e.WriteU8(byte(RoomActionFullState)).
		WriteU32(p.RoomID).
		WriteString(p.RoomName).
		WriteU32(p.HostUserID).
		WriteBool(p.InGame)
	encodeRoomSettings(e, p.Settings)
	e.WriteArray(len(p.Members), func(i int) {
		m := p.Members[i]
		e.WriteU32(m.UserID).WriteString(m.UserName).WriteBool(m.Ready).WriteU8(m.Team)
	})
	return e.Bytes()
}

type RoomPlayerJoined struct {
	Member RoomMemberInfo
}

func (p RoomPlayerJoined) Encode() []byte {
	return NewEncoder().
		WriteU8(byte(RoomActionPlayerJoined)).
		WriteU32(p.Member.UserID).
		WriteString(p.Member.UserName).
		WriteBool(p.Member.Ready).
		WriteU8(p.Member.Team).
		Bytes()
}

type RoomPlayerLeft struct {
	UserID uint32
}

func (p RoomPlayerLeft) Encode() []byte {
	return NewEncoder().WriteU8(byte(RoomActionPlayerLeft)).WriteU32(p.UserID).Bytes()
}

type RoomSetHost struct {
	HostUserID uint32
}

func (p RoomSetHost) Encode() []byte {
	return NewEncoder().WriteU8(byte(RoomActionSetHost)).WriteU32(p.HostUserID).Bytes()
}

type RoomReadyChanged struct {
	UserID uint32
	Ready  bool
}

func (p RoomReadyChanged) Encode() []byte {
	return NewEncoder().WriteU8(byte(RoomActionReadyChanged)).WriteU32(p.UserID).WriteBool(p.Ready).Bytes()
}

type RoomGameStarted struct{}

func (p RoomGameStarted) Encode() []byte {
	return NewEncoder().WriteU8(byte(RoomActionGameStarted)).Bytes()
}

type RoomGameEnded struct{}

func (p RoomGameEnded) Encode() []byte {
	return NewEncoder().WriteU8(byte(RoomActionGameEnded)).Bytes()
}

type RoomSettingsChanged struct {
	Settings RoomSettings
}

func (p RoomSettingsChanged) Encode() []byte {
	e := NewEncoder().WriteU8(byte(RoomActionSettingsSet))
	encodeRoomSettings(e, p.Settings)
	return e.Bytes()
}

type RoomRemoved struct {
	RoomID uint32
}

func (p RoomRemoved) Encode() []byte {
	return NewEncoder().WriteU8(byte(RoomActionRoomRemoved)).WriteU32(p.RoomID).Bytes()
}
