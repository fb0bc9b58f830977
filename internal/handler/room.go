package handler

import (
	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/events"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/network"
)

func (rt *Router) handleRoomList(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeRoomListRequest(d)
	if d.Err() != nil {
		return d.Err()
	}

	owner := conn.Owner()
	owner.SetChannel(req.ChannelServerIndex, req.ChannelIndex)

	channel, ok := rt.resolveChannel(req.ChannelServerIndex, req.ChannelIndex)
	if !ok {
		conn.Logger().Warn().Msg("room list requested for unknown channel")
		return conn.Send(codec.PtRoomListReply, codec.RoomListReply{}.Encode())
	}
	return conn.Send(codec.PtRoomListReply, codec.RoomListReply{Rooms: channel.ListRooms()}.Encode())
}

func (rt *Router) resolveChannel(serverIdx, channelIdx uint16) (*lobby.Channel, bool) {
	server, ok := rt.Directory.Server(serverIdx)
	if !ok {
		return nil, false
	}
	return server.Channel(channelIdx)
}

func (rt *Router) handleRoomRequest(conn *network.Connection, d *codec.Decoder) error {
	action := codec.DecodeRoomRequestAction(d)
	switch action {
	case codec.RoomActionCreate:
		return rt.handleRoomCreate(conn, d)
	case codec.RoomActionJoin:
		return rt.handleRoomJoin(conn, d)
	case codec.RoomActionLeave:
		return rt.handleRoomLeave(conn, d)
	case codec.RoomActionStart:
		return rt.handleRoomStart(conn, d)
	case codec.RoomActionSetUserTeam:
		return rt.handleRoomSetUserTeam(conn, d)
	case codec.RoomActionToggleReady:
		return rt.handleRoomToggleReady(conn, d)
	case codec.RoomActionUpdateSettings:
		return rt.handleRoomUpdateSettings(conn, d)
	case codec.RoomActionSetCountdown:
		return rt.handleRoomSetCountdown(conn, d)
	case codec.RoomActionConnectionFailed:
		return rt.handleRoomConnectionFailure(conn, d)
	default:
		conn.Logger().Warn().Uint8("roomAction", uint8(action)).Msg("unknown room action, dropping")
		return nil
	}
}

func (rt *Router) handleRoomCreate(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeRoomCreateRequest(d)
	if d.Err() != nil {
		return d.Err()
	}
	owner := conn.Owner()

	if conn.Room() != nil {
		conn.Logger().Warn().Msg("room create requested while already in a room, dropping")
		return nil
	}

	serverIdx, channelIdx := owner.Channel()
	channel, ok := rt.resolveChannel(serverIdx, channelIdx)
	if !ok {
		conn.Logger().Warn().Msg("room create requested for unknown channel, dropping")
		return nil
	}

	room := channel.CreateRoom(req.RoomName, req.Settings)
	if err := room.AddUser(conn, owner.UserID, owner.UserName); err != nil {
		conn.Logger().Warn().Err(err).Msg("failed to add creator to new room")
		return nil
	}
	owner.SetRoomID(room.ID)
	conn.SetRoom(room)
	rt.emit(events.EventRoomCreated, "handler", events.RoomPayload{
		ChannelServerIndex: serverIdx, ChannelIndex: channelIdx, RoomID: room.ID, RoomName: room.Name,
	})

	return conn.Send(codec.PtRoomReply, room.Snapshot().Encode())
}

func (rt *Router) handleRoomJoin(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeRoomJoinRequest(d)
	if d.Err() != nil {
		return d.Err()
	}
	owner := conn.Owner()

	if conn.Room() != nil {
		conn.Logger().Warn().Msg("room join requested while already in a room, dropping")
		return nil
	}

	serverIdx, channelIdx := owner.Channel()
	channel, ok := rt.resolveChannel(serverIdx, channelIdx)
	if !ok {
		conn.Logger().Warn().Msg("room join requested for unknown channel, dropping")
		return nil
	}
	room, ok := channel.GetRoom(req.RoomID)
	if !ok {
		conn.Logger().Warn().Uint32("roomId", req.RoomID).Msg("room join requested for unknown room, dropping")
		return nil
	}

	if err := room.AddUser(conn, owner.UserID, owner.UserName); err != nil {
		conn.Logger().Warn().Err(err).Msg("room join rejected")
		return nil
	}
	owner.SetRoomID(room.ID)
	conn.SetRoom(room)

	if err := conn.Send(codec.PtRoomReply, room.Snapshot().Encode()); err != nil {
		return err
	}
	room.Broadcast(codec.PtRoomReply, codec.RoomPlayerJoined{Member: codec.RoomMemberInfo{
		UserID:   owner.UserID,
		UserName: owner.UserName,
	}}.Encode(), owner.UserID)
	return nil
}

func (rt *Router) handleRoomLeave(conn *network.Connection, d *codec.Decoder) error {
	codec.DecodeRoomLeaveRequest(d)
	owner := conn.Owner()
	room := conn.Room()
	if room == nil {
		return nil
	}
	rt.leaveRoom(conn, room, owner)
	return nil
}

func (rt *Router) handleRoomStart(conn *network.Connection, d *codec.Decoder) error {
	codec.DecodeRoomStartRequest(d)
	owner := conn.Owner()
	room := conn.Room()
	if room == nil || !room.IsHost(owner.UserID) {
		conn.Logger().Warn().Msg("room start requested by non-host or outside a room, dropping")
		return nil
	}
	if err := room.StartGame(); err != nil {
		conn.Logger().Warn().Err(err).Msg("room start rejected")
		return nil
	}
	serverIdx, channelIdx := owner.Channel()
	rt.emit(events.EventRoomGameStarted, "handler", events.RoomPayload{
		ChannelServerIndex: serverIdx, ChannelIndex: channelIdx, RoomID: room.ID, RoomName: room.Name,
	})
	room.Broadcast(codec.PtRoomReply, codec.RoomGameStarted{}.Encode(), 0)
	return nil
}

func (rt *Router) handleRoomSetUserTeam(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeRoomSetUserTeamRequest(d)
	if d.Err() != nil {
		return d.Err()
	}
	room := conn.Room()
	if room == nil || !room.IsHost(conn.Owner().UserID) {
		conn.Logger().Warn().Msg("set user team by non-host, dropping")
		return nil
	}
	if err := room.SetUserTeam(req.UserID, req.Team); err != nil {
		conn.Logger().Warn().Err(err).Msg("set user team rejected")
		return nil
	}
	room.Broadcast(codec.PtRoomReply, room.Snapshot().Encode(), 0)
	return nil
}

func (rt *Router) handleRoomToggleReady(conn *network.Connection, d *codec.Decoder) error {
	codec.DecodeRoomToggleReadyRequest(d)
	owner := conn.Owner()
	room := conn.Room()
	if room == nil {
		return nil
	}
	ready, err := room.ToggleReady(owner.UserID)
	if err != nil {
		return nil
	}
	room.Broadcast(codec.PtRoomReply, codec.RoomReadyChanged{UserID: owner.UserID, Ready: ready}.Encode(), 0)
	return nil
}

func (rt *Router) handleRoomUpdateSettings(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeRoomUpdateSettingsRequest(d)
	if d.Err() != nil {
		return d.Err()
	}
	room := conn.Room()
	if room == nil || !room.IsHost(conn.Owner().UserID) {
		conn.Logger().Warn().Msg("settings update by non-host, dropping")
		return nil
	}
	room.UpdateSettings(req.Settings)
	room.Broadcast(codec.PtRoomReply, codec.RoomSettingsChanged{Settings: req.Settings}.Encode(), 0)
	return nil
}

func (rt *Router) handleRoomSetCountdown(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeRoomSetCountdownRequest(d)
	if d.Err() != nil {
		return d.Err()
	}
	room := conn.Room()
	if room == nil || !room.IsHost(conn.Owner().UserID) {
		conn.Logger().Warn().Msg("countdown set by non-host, dropping")
		return nil
	}
	room.Broadcast(codec.PtRoomReply, codec.NewEncoder().
		WriteU8(byte(codec.RoomActionSetCountdown)).
		WriteU8(req.Seconds).Bytes(), 0)
	return nil
}

func (rt *Router) handleRoomConnectionFailure(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeRoomConnectionFailureRequest(d)
	if d.Err() != nil {
		return d.Err()
	}
	room := conn.Room()
	if room == nil {
		return nil
	}
	room.Broadcast(codec.PtRoomReply, codec.NewEncoder().
		WriteU8(byte(codec.RoomActionConnectionFailed)).
		WriteU32(req.UserID).Bytes(), 0)
	return nil
}
