package handler

import (
	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/events"
	"github.com/kongor-lobby/masterserver/internal/network"
)

func (rt *Router) handleHost(conn *network.Connection, d *codec.Decoder) error {
	action := codec.DecodeHostAction(d)
	switch action {
	case codec.HostActionOnGameEnd:
		return rt.handleHostOnGameEnd(conn, d)
	case codec.HostActionSetInventory:
		return rt.handleHostRelay(conn, d, action)
	case codec.HostActionSetLoadout:
		return rt.handleHostRelay(conn, d, action)
	case codec.HostActionSetBuyMenu:
		return rt.handleHostRelay(conn, d, action)
	default:
		conn.Logger().Warn().Uint8("hostAction", uint8(action)).Msg("unknown host action, dropping")
		return nil
	}
}

func (rt *Router) handleHostOnGameEnd(conn *network.Connection, d *codec.Decoder) error {
	room := conn.Room()
	if room == nil || !room.IsHost(conn.Owner().UserID) {
		conn.Logger().Warn().Msg("game-end reported by non-host or outside a room, dropping")
		return nil
	}
	if !room.InGame() {
		conn.Logger().Warn().Msg("game-end reported while not in a game, dropping")
		return nil
	}
	if err := room.EndGame(); err != nil {
		conn.Logger().Warn().Err(err).Msg("game-end rejected")
		return nil
	}
	serverIdx, channelIdx := conn.Owner().Channel()
	rt.emit(events.EventRoomGameEnded, "handler", events.RoomPayload{
		ChannelServerIndex: serverIdx, ChannelIndex: channelIdx, RoomID: room.ID, RoomName: room.Name,
	})
	room.Broadcast(codec.PtRoomReply, codec.RoomGameEnded{}.Encode(), 0)
	return nil
}

// handleHostRelay implements the host-proxied read: the host asks the
// server to fetch another member's inventory projection on their behalf.
// Each authorization step is checked in order; any failing step logs and
// silently drops the packet.
func (rt *Router) handleHostRelay(conn *network.Connection, d *codec.Decoder, action codec.HostAction) error {
	var targetUserID uint32
	switch action {
	case codec.HostActionSetInventory:
		req := codec.DecodeHostSetInventoryRequest(d)
		targetUserID = req.TargetUserID
	case codec.HostActionSetLoadout:
		req := codec.DecodeHostSetLoadoutRequest(d)
		targetUserID = req.TargetUserID
	case codec.HostActionSetBuyMenu:
		req := codec.DecodeHostSetBuyMenuRequest(d)
		targetUserID = req.TargetUserID
	}
	if d.Err() != nil {
		return d.Err()
	}

	requester := conn.Owner()
	// (a) requester has a session: guaranteed by requireAuthenticated.

	// (b) requester isInRoom.
	room := conn.Room()
	if room == nil {
		conn.Logger().Warn().Msg("host relay requested outside a room, dropping")
		return nil
	}

	// (c) target user has a session.
	targetSession, ok := rt.Sessions.Get(targetUserID)
	if !ok {
		conn.Logger().Warn().Uint32("targetUserId", targetUserID).Msg("host relay target has no session, dropping")
		return nil
	}

	// (d) requester is the room host.
	if !room.IsHost(requester.UserID) {
		conn.Logger().Warn().Uint32("requesterUserId", requester.UserID).Msg("host relay requested by non-host, dropping")
		return nil
	}

	// (e) target is a member of requester's room.
	if !room.HasMember(targetSession.UserID) {
		conn.Logger().Warn().Uint32("targetUserId", targetUserID).Msg("host relay target not in requester's room, dropping")
		return nil
	}

	ctx := rt.ctxFor(conn)
	inv, err := rt.Gateway.GetInventory(ctx, targetUserID)
	if err != nil {
		conn.Logger().Warn().Err(err).Uint32("targetUserId", targetUserID).Msg("host relay gateway fetch failed, dropping")
		return nil
	}

	var projection []byte
	switch action {
	case codec.HostActionSetInventory:
		projection = codec.InventoryItems{ItemIDs: inv.ItemIDs}.Encode()
	case codec.HostActionSetLoadout:
		projection = codec.FavoriteLoadoutsPush{Loadouts: inv.Loadouts}.Encode()
	case codec.HostActionSetBuyMenu:
		projection = codec.OptionBuyMenuPush{Slots: inv.BuyMenu}.Encode()
	}

	return conn.Send(codec.PtHostReply, codec.HostInventoryRelay{
		TargetUserID: targetUserID,
		Action:       action,
		Projection:   projection,
	}.Encode())
}
