package handler

import (
	"errors"
	"fmt"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/connector"
	"github.com/kongor-lobby/masterserver/internal/events"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
)

func (rt *Router) handleVersion(conn *network.Connection, d *codec.Decoder) error {
	if conn.State() != network.StateConnected {
		return errors.New("version frame out of order")
	}
	req := codec.DecodeVersionRequest(d)
	if d.Err() != nil {
		return d.Err()
	}
	conn.Logger().Debug().Str("clientVersion", req.ClientVersion).Msg("client identified")
	conn.SetState(network.StateIdentified)
	return nil
}

func (rt *Router) handleLogin(conn *network.Connection, d *codec.Decoder) error {
	if conn.State() != network.StateIdentified {
		return errors.New("login frame out of order")
	}
	req := codec.DecodeLoginRequest(d)
	if d.Err() != nil {
		return d.Err()
	}

	ctx := rt.ctxFor(conn)
	userID, err := rt.Gateway.ValidateCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return rt.failLogin(conn, err)
	}

	if rt.Moderation != nil {
		if ban, err := rt.Moderation.IsBanned(userID); err != nil {
			return rt.failLogin(conn, err)
		} else if ban != nil {
			return rt.failLogin(conn, fmt.Errorf("userId %d is banned", userID))
		}
	}

	user, err := rt.Gateway.GetUser(ctx, userID)
	if err != nil {
		return rt.failLogin(conn, err)
	}

	inv, err := rt.Gateway.GetInventory(ctx, userID)
	if err != nil {
		return rt.failLogin(conn, err)
	}

	sess := session.New(userID, user.UserName)
	if evicted, existed := rt.Sessions.Bind(sess); existed {
		if evictedConn, ok := rt.Conns.ByOwner(evicted.UserID); ok {
			conn.Logger().Info().Uint32("userId", evicted.UserID).Msg("closing prior connection for this user")
			evictedConn.Close()
		}
	}

	conn.SetOwner(sess)
	conn.SetState(network.StateAuthenticated)
	rt.Conns.BindOwner(userID, conn)
	rt.emit(events.EventSessionBound, "handler", events.SessionPayload{UserID: userID, UserName: user.UserName})

	return rt.sendLoginSequence(conn, user, inv)
}

// failLogin closes the connection without sending any frame: a bad
// credential is indistinguishable on the wire from a transient service
// outage, and neither should leak which account names exist.
func (rt *Router) failLogin(conn *network.Connection, cause error) error {
	conn.Logger().Warn().Err(cause).Msg("login rejected")
	return fmt.Errorf("login rejected: %w", cause)
}

// sendLoginSequence delivers the strict-order burst of frames a freshly
// authenticated client expects, each consuming the next outbound sequence
// number.
func (rt *Router) sendLoginSequence(conn *network.Connection, user connector.User, inv connector.Inventory) error {
	steps := []struct {
		ptype   codec.PacketType
		payload []byte
	}{
		{codec.PtUserStart, codec.UserStart{
			UserID:        user.UserID,
			UserName:      user.UserName,
			PlayerName:    user.PlayerName,
			HolepunchPort: conn.HolepunchPort(),
		}.Encode()},
		{codec.PtUserInfo, user.ToUserInfoFull().Encode()},
		{codec.PtInventory, codec.InventoryItems{ItemIDs: inv.ItemIDs}.Encode()},
		{codec.PtFavoritePush, codec.FavoriteCosmeticsPush{Cosmetics: inv.Cosmetics}.Encode()},
		{codec.PtUnlockBlob, codec.UnlockBlobPush{}.Encode()},
		{codec.PtFavoritePush, codec.FavoriteLoadoutsPush{Loadouts: inv.Loadouts}.Encode()},
		{codec.PtOptionPush, codec.OptionBuyMenuPush{Slots: inv.BuyMenu}.Encode()},
		{codec.PtChannelList, rt.Directory.ChannelList().Encode()},
	}
	for _, step := range steps {
		if err := conn.Send(step.ptype, step.payload); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Router) handleHeartbeat(conn *network.Connection, d *codec.Decoder) error {
	codec.DecodeHeartbeatRequest(d)
	if owner := conn.Owner(); owner != nil {
		owner.Touch()
	}
	return nil
}
