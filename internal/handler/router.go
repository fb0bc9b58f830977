// Package handler implements the packet-type -> action dispatch table:
// login, room CRUD, host-proxied relays, favorite/option write-throughs,
// chat, and the UDP handshake companion. It is the only package that
// knows about every other domain package at once.
package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/connector"
	"github.com/kongor-lobby/masterserver/internal/db"
	"github.com/kongor-lobby/masterserver/internal/events"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
)

// Router implements network.Dispatcher. It holds no socket state of its
// own: everything it needs about a connection is passed in on each call.
type Router struct {
	Sessions   *session.Registry
	Conns      *network.Registry
	Directory  *lobby.Directory
	Gateway    *connector.Client
	Moderation *db.ModerationStore
	Events     *events.EventBus
	Logger     zerolog.Logger

	ctxMu sync.Mutex
	ctxs  map[uuid.UUID]connCtx
}

type connCtx struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRouter wires the dispatch table. moderation may be nil, in which case
// the ban check in handleLogin is skipped entirely (no local moderation
// store configured). eventBus may also be nil, in which case lobby
// lifecycle transitions are simply not published anywhere.
func NewRouter(sessions *session.Registry, conns *network.Registry, directory *lobby.Directory, gateway *connector.Client, moderation *db.ModerationStore, eventBus *events.EventBus, logger zerolog.Logger) *Router {
	return &Router{
		Sessions:   sessions,
		Conns:      conns,
		Directory:  directory,
		Gateway:    gateway,
		Moderation: moderation,
		Events:     eventBus,
		Logger:     logger.With().Str("component", "handler").Logger(),
		ctxs:       make(map[uuid.UUID]connCtx),
	}
}

// emit publishes an event if an EventBus is configured, a no-op otherwise.
func (rt *Router) emit(eventType events.EventType, source string, payload interface{}) {
	if rt.Events == nil {
		return
	}
	rt.Events.Emit(context.Background(), events.Event{Type: eventType, Source: source, Payload: payload})
}

// OnConnect gives this connection a cancelable context for the lifetime of
// its gateway calls.
func (rt *Router) OnConnect(conn *network.Connection) {
	ctx, cancel := context.WithCancel(context.Background())
	rt.ctxMu.Lock()
	rt.ctxs[conn.ID()] = connCtx{ctx: ctx, cancel: cancel}
	rt.ctxMu.Unlock()
}

// ctxFor returns the per-connection context gateway calls should use, so a
// closed connection aborts any call still in flight on its behalf.
func (rt *Router) ctxFor(conn *network.Connection) context.Context {
	rt.ctxMu.Lock()
	defer rt.ctxMu.Unlock()
	if cc, ok := rt.ctxs[conn.ID()]; ok {
		return cc.ctx
	}
	return context.Background()
}

// OnDisconnect cancels any in-flight gateway calls for this connection and
// tears down its session/room membership, flowing through host election
// and room emptiness the same way an explicit Leave would.
func (rt *Router) OnDisconnect(conn *network.Connection) {
	rt.ctxMu.Lock()
	cc, ok := rt.ctxs[conn.ID()]
	delete(rt.ctxs, conn.ID())
	rt.ctxMu.Unlock()
	if ok {
		cc.cancel()
	}

	owner := conn.Owner()
	if owner == nil {
		return
	}

	if room := conn.Room(); room != nil {
		rt.leaveRoom(conn, room, owner)
	}
	rt.Sessions.Unbind(owner)
	rt.emit(events.EventSessionUnbound, "handler", events.SessionPayload{UserID: owner.UserID, UserName: owner.UserName})
	rt.Logger.Info().Uint32("userId", owner.UserID).Msg("session torn down on disconnect")
}

// leaveRoom removes a user from their room, propagating host election and
// garbage-collecting the room if it is now empty.
func (rt *Router) leaveRoom(conn *network.Connection, room *lobby.Room, owner *session.Session) {
	empty, hostChanged, err := room.RemoveUser(owner.UserID)
	if err != nil {
		return
	}
	owner.SetRoomID(0)
	conn.SetRoom(nil)

	if empty {
		rt.removeEmptyRoom(owner, room)
		return
	}
	room.Broadcast(codec.PtRoomReply, codec.RoomPlayerLeft{UserID: owner.UserID}.Encode(), 0)
	if hostChanged {
		room.Broadcast(codec.PtRoomReply, codec.RoomSetHost{HostUserID: room.HostUserID()}.Encode(), 0)
	}
}

// removeEmptyRoom drops a now-empty room from the channel it was created
// in, found through the owner's last-known channel selection.
func (rt *Router) removeEmptyRoom(owner *session.Session, room *lobby.Room) {
	serverIdx, channelIdx := owner.Channel()
	server, ok := rt.Directory.Server(serverIdx)
	if !ok {
		return
	}
	channel, ok := server.Channel(channelIdx)
	if !ok {
		return
	}
	if channel.RemoveRoomIfEmpty(room.ID) {
		rt.emit(events.EventRoomRemoved, "handler", events.RoomPayload{
			ChannelServerIndex: serverIdx, ChannelIndex: channelIdx, RoomID: room.ID, RoomName: room.Name,
		})
	}
}

// HandleFrame is the static packetType -> handler dispatch table. Every
// branch that isn't clearly protocol-fatal logs and returns nil so the
// connection survives a single bad packet.
func (rt *Router) HandleFrame(conn *network.Connection, frame *codec.Frame) error {
	d := codec.NewDecoder(frame.Body)

	if conn.State() == network.StateConnected && frame.Type != codec.PtVersion {
		return errors.New("frame before version exchange")
	}

	switch frame.Type {
	case codec.PtVersion:
		return rt.handleVersion(conn, d)
	case codec.PtLogin:
		return rt.handleLogin(conn, d)
	case codec.PtHeartbeat:
		return rt.handleHeartbeat(conn, d)
	case codec.PtRoomList:
		return rt.requireAuthenticated(conn, func() error { return rt.handleRoomList(conn, d) })
	case codec.PtRoomRequest:
		return rt.requireAuthenticated(conn, func() error { return rt.handleRoomRequest(conn, d) })
	case codec.PtHost:
		return rt.requireAuthenticated(conn, func() error { return rt.handleHost(conn, d) })
	case codec.PtFavorite:
		return rt.requireAuthenticated(conn, func() error { return rt.handleFavorite(conn, d) })
	case codec.PtOption:
		return rt.requireAuthenticated(conn, func() error { return rt.handleOption(conn, d) })
	case codec.PtChat:
		return rt.requireAuthenticated(conn, func() error { return rt.handleChat(conn, d) })
	case codec.PtUdp:
		return rt.requireAuthenticated(conn, func() error { return rt.handleUdp(conn, d) })
	default:
		rt.Logger.Warn().Str("connId", conn.ID().String()).Uint8("opcode", uint8(frame.Type)).Msg("unknown opcode, dropping")
		return nil
	}
}

// requireAuthenticated gates every packet type that needs a bound session
// behind one check, rather than repeating it in each handler.
func (rt *Router) requireAuthenticated(conn *network.Connection, fn func() error) error {
	if conn.State() != network.StateAuthenticated || conn.Owner() == nil {
		rt.Logger.Warn().Str("connId", conn.ID().String()).Msg("packet requires an authenticated session, dropping")
		return nil
	}
	return fn()
}

