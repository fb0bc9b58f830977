package codec

// VersionRequest is the first frame a client must send on a fresh
// connection (Connected state). Anything else as the first frame is a
// protocol-fatal error.
type VersionRequest struct {
	ClientVersion string
}

func DecodeVersionRequest(d *Decoder) VersionRequest {
	return VersionRequest{ClientVersion: d.ReadString("client_version")}
}

// LoginRequest carries the credentials to validate against the user service.
type LoginRequest struct {
	Username string
	Password string
}

func DecodeLoginRequest(d *Decoder) LoginRequest {
	return LoginRequest{
		Username: d.ReadString("username"),
		Password: d.ReadString("password"),
	}
}

// HeartbeatRequest is an empty keepalive; its mere arrival resets the
// connection's heartbeat deadline.
type HeartbeatRequest struct{}

func DecodeHeartbeatRequest(d *Decoder) HeartbeatRequest { return HeartbeatRequest{} }

// LoginFailure is the body layout of a PtLoginFailure frame. The login
// handler does not send it: a rejected login writes no frame and the
// connection is closed.
type LoginFailure struct {
	Reason string
}

func (p LoginFailure) Encode() []byte {
	return NewEncoder().WriteString(p.Reason).Bytes()
}

// UserStart is the first outbound frame after a successful login.
type UserStart struct {
	UserID        uint32
	UserName      string
	PlayerName    string
	HolepunchPort uint16
}

func (p UserStart) Encode() []byte {
	return NewEncoder().
		WriteU32(p.UserID).
		WriteString(p.UserName).
		WriteString(p.PlayerName).
		WriteU16(p.HolepunchPort).
		Bytes()
}

// UserInfoFull is the full snapshot sent right after UserStart on login,
// and on-demand whenever a client asks for another user's public profile.
type UserInfoFull struct {
	UserID     uint32
	UserName   string
	PlayerName string
	Level      uint16
	Avatar     uint16
	CurExp     uint32
	MaxExp     uint32
	Rank       uint16
	VipLevel   uint8
	Wins       uint32
	Kills      uint32
	Deaths     uint32
	Assists    uint32
}

func (p UserInfoFull) Encode() []byte {
	return NewEncoder().
		WriteU32(p.UserID).
		WriteString(p.UserName).
		WriteString(p.PlayerName).
		WriteU16(p.Level).
		WriteU16(p.Avatar).
		WriteU32(p.CurExp).
		WriteU32(p.MaxExp).
		WriteU16(p.Rank).
		WriteU8(p.VipLevel).
		WriteU32(p.Wins).
		WriteU32(p.Kills).
		WriteU32(p.Deaths).
		WriteU32(p.Assists).
		Bytes()
}
