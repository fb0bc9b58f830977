// Package network owns the TCP connection lifecycle and the UDP holepunch
// endpoint. It knows nothing about login, rooms, or gateway calls — those
// live in internal/handler, wired in here only through the Dispatcher
// interface so there is no import cycle.
package network

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/session"
)

// State is where a Connection sits in the login handshake.
type State int32

const (
	StateConnected     State = iota // accepted, awaiting Version
	StateIdentified                 // Version received, awaiting Login
	StateAuthenticated              // Login succeeded
	StateClosed
)

// LoginHandshakeTimeout bounds the time from accept to a successful Login;
// HeartbeatTimeout bounds the gap between any two frames once authenticated.
const (
	LoginHandshakeTimeout = 10 * time.Second
	HeartbeatTimeout      = 60 * time.Second
)

// Connection wraps one accepted TCP socket with everything the protocol
// needs on top of it: identity, outbound sequencing, and the session/room
// bindings that exist only after a successful login.
type Connection struct {
	id     uuid.UUID
	conn   net.Conn
	logger zerolog.Logger

	sendMu      sync.Mutex
	outboundSeq byte

	stateMu sync.Mutex
	state   State

	ownerMu sync.Mutex
	owner   *session.Session
	room    *lobby.Room

	closeOnce sync.Once
	closed    chan struct{}

	holepunchPort uint16
	logFrames     bool
}

// NewConnection wraps an accepted socket. holepunchPort is this server's
// fixed UDP holepunch port, echoed back in the login reply. logFrames
// enables a Trace-level hex dump of every inbound and outbound frame,
// the Connection's read/write path being the only place that ever sees
// the raw bytes.
func NewConnection(conn net.Conn, logger zerolog.Logger, holepunchPort uint16, logFrames bool) *Connection {
	id := uuid.New()
	return &Connection{
		id:            id,
		conn:          conn,
		logger:        logger.With().Str("connId", id.String()).Str("remote", conn.RemoteAddr().String()).Logger(),
		state:         StateConnected,
		closed:        make(chan struct{}),
		holepunchPort: holepunchPort,
		logFrames:     logFrames,
	}
}

func (c *Connection) ID() uuid.UUID          { return c.id }
func (c *Connection) RemoteAddr() string     { return c.conn.RemoteAddr().String() }
func (c *Connection) HolepunchPort() uint16  { return c.holepunchPort }
func (c *Connection) Logger() *zerolog.Logger { return &c.logger }

func (c *Connection) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Connection) SetState(s State) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.state = s
}

// SetOwner binds this connection to a logged-in session. Called once, on a
// successful Login.
func (c *Connection) SetOwner(sess *session.Session) {
	c.ownerMu.Lock()
	defer c.ownerMu.Unlock()
	c.owner = sess
}

func (c *Connection) Owner() *session.Session {
	c.ownerMu.Lock()
	defer c.ownerMu.Unlock()
	return c.owner
}

// UserID implements lobby.Sender. It returns 0 for a connection with no
// bound session, which never happens for a connection inside a Room.
func (c *Connection) UserID() uint32 {
	if owner := c.Owner(); owner != nil {
		return owner.UserID
	}
	return 0
}

func (c *Connection) SetRoom(r *lobby.Room) {
	c.ownerMu.Lock()
	defer c.ownerMu.Unlock()
	c.room = r
}

func (c *Connection) Room() *lobby.Room {
	c.ownerMu.Lock()
	defer c.ownerMu.Unlock()
	return c.room
}

// Send implements lobby.Sender: it frames and writes payload with the next
// outbound sequence number, wrapping modulo 256.
func (c *Connection) Send(ptype codec.PacketType, payload []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	seq := c.outboundSeq
	if err := codec.WriteFrame(c.conn, seq, ptype, payload); err != nil {
		return fmt.Errorf("send to %s: %w", c.id, err)
	}
	if c.logFrames {
		c.logger.Trace().Uint8("seq", seq).Uint8("opcode", uint8(ptype)).Str("body", fmt.Sprintf("%x", payload)).Msg("outbound frame")
	}
	c.outboundSeq = codec.NextSequence(seq)
	return nil
}

// ResetDeadline extends the socket's read deadline according to the
// connection's current handshake state: a short window before login
// completes, the longer heartbeat window after.
func (c *Connection) ResetDeadline() {
	timeout := LoginHandshakeTimeout
	if c.State() == StateAuthenticated {
		timeout = HeartbeatTimeout
	}
	c.conn.SetReadDeadline(time.Now().Add(timeout))
}

// Close closes the underlying socket exactly once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.SetState(StateClosed)
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *Connection) Done() <-chan struct{} { return c.closed }

func (c *Connection) readFrame() (*codec.Frame, error) {
	frame, err := codec.ReadFrame(c.conn)
	if err != nil {
		return nil, err
	}
	if c.logFrames {
		c.logger.Trace().Uint8("seq", frame.Sequence).Uint8("opcode", uint8(frame.Type)).Str("body", fmt.Sprintf("%x", frame.Body)).Msg("inbound frame")
	}
	return frame, nil
}
