package network

import (
	"context"
	"errors"
	"net"

	"github.com/rs/zerolog"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

// Dispatcher is how the handler layer plugs into the connection lifecycle
// without network importing it back. HandleFrame processes one frame and
// returns an error only for protocol-fatal conditions that must close the
// socket (a rejected login is one of them); anything recoverable
// (unauthorized host packet, unknown opcode) is the dispatcher's job to
// log and swallow.
type Dispatcher interface {
	HandleFrame(conn *Connection, frame *codec.Frame) error
	OnConnect(conn *Connection)
	OnDisconnect(conn *Connection)
}

// TCPListener accepts client connections and runs one read loop per
// connection, handing each decoded frame to the Dispatcher in arrival
// order. It never interprets frame contents itself.
type TCPListener struct {
	addr          string
	holepunchPort uint16
	registry      *Registry
	dispatcher    Dispatcher
	logger        zerolog.Logger
	logFrames     bool
}

func NewTCPListener(addr string, holepunchPort uint16, registry *Registry, dispatcher Dispatcher, logger zerolog.Logger, logFrames bool) *TCPListener {
	return &TCPListener{
		addr:          addr,
		holepunchPort: holepunchPort,
		registry:      registry,
		dispatcher:    dispatcher,
		logger:        logger.With().Str("component", "tcp_listener").Logger(),
		logFrames:     logFrames,
	}
}

// Serve accepts connections until ctx is cancelled or the listener fails.
func (l *TCPListener) Serve(ctx context.Context) error {
	lc := ReuseAddrListenConfig()
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return err
	}
	l.logger.Info().Str("addr", l.addr).Msg("listening for client connections")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			l.logger.Warn().Err(err).Msg("accept failed")
			continue
		}
		go l.handleConnection(ctx, conn)
	}
}

func (l *TCPListener) handleConnection(ctx context.Context, raw net.Conn) {
	c := NewConnection(raw, l.logger, l.holepunchPort, l.logFrames)
	l.registry.Register(c)
	l.dispatcher.OnConnect(c)

	defer func() {
		c.Close()
		l.registry.Unregister(c)
		l.dispatcher.OnDisconnect(c)
	}()

	c.logger.Debug().Msg("connection accepted")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.ResetDeadline()
		frame, err := c.readFrame()
		if err != nil {
			c.logger.Debug().Err(err).Msg("closing connection")
			return
		}

		if err := l.dispatcher.HandleFrame(c, frame); err != nil {
			c.logger.Warn().Err(err).Msg("protocol-fatal error, closing connection")
			return
		}
	}
}
