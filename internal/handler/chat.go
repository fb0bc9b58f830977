package handler

import (
	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/network"
)

// handleChat relays a chat line to every member of the sender's room,
// the sender included. There is no channel-wide chat: a sender with no
// current room has
// nowhere for the line to go, so it is dropped.
func (rt *Router) handleChat(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeChatRequest(d)
	if d.Err() != nil {
		return d.Err()
	}

	room := conn.Room()
	if room == nil {
		conn.Logger().Debug().Msg("chat received outside a room, dropping")
		return nil
	}
	owner := conn.Owner()
	room.Broadcast(codec.PtChatReply, codec.ChatRelay{
		FromUserID:   owner.UserID,
		FromUserName: owner.UserName,
		Text:         req.Text,
	}.Encode(), 0)
	return nil
}
