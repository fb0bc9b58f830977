package codec

// RoomListRequest asks for the rooms currently open under one channel.
type RoomListRequest struct {
	ChannelServerIndex uint16
	ChannelIndex       uint16
}

func DecodeRoomListRequest(d *Decoder) RoomListRequest {
	return RoomListRequest{
		ChannelServerIndex: d.ReadU16("channel_server_index"),
		ChannelIndex:       d.ReadU16("channel_index"),
	}
}

// ChannelListEntry describes one browsable channel.
type ChannelListEntry struct {
	ServerIndex uint16
	ChannelIndex uint16
	Name        string
	RoomCount   uint16
}

// ChannelList is the outbound reply sent on login and on request,
// enumerating every channel on every configured channel server.
type ChannelList struct {
	Entries []ChannelListEntry
}

func (p ChannelList) Encode() []byte {
	e := NewEncoder()
	e.WriteArray(len(p.Entries), func(i int) {
		entry := p.Entries[i]
		e.WriteU16(entry.ServerIndex).
			WriteU16(entry.ChannelIndex).
			WriteString(entry.Name).
			WriteU16(entry.RoomCount)
	})
	return e.Bytes()
}

// RoomSummary is one row of a RoomList reply.
type RoomSummary struct {
	RoomID      uint32
	RoomName    string
	PlayerCount uint16
	MaxPlayers  uint16
	InGame      bool
}

// RoomListReply answers a RoomListRequest with every open room in the
// requested channel.
type RoomListReply struct {
	Rooms []RoomSummary
}

func (p RoomListReply) Encode() []byte {
	e := NewEncoder()
	e.WriteArray(len(p.Rooms), func(i int) {
		r := p.Rooms[i]
		e.WriteU32(r.RoomID).
			WriteString(r.RoomName).
			WriteU16(r.PlayerCount).
			WriteU16(r.MaxPlayers).
			WriteBool(r.InGame)
	})
	return e.Bytes()
}
