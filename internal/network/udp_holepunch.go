package network

import (
	"context"
	"net"

	"github.com/rs/zerolog"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

// HolepunchEndpoint is the UDP side of NAT traversal: clients fire a
// stamped probe at this socket and get back the address/port the server
// actually observed it from, which is what a NAT rewrites outbound UDP
// to. It holds no state beyond the socket — no correlation with any TCP
// connection is needed, since the reply is just an echo of what the OS
// already told us.
type HolepunchEndpoint struct {
	addr   string
	logger zerolog.Logger
}

func NewHolepunchEndpoint(addr string, logger zerolog.Logger) *HolepunchEndpoint {
	return &HolepunchEndpoint{addr: addr, logger: logger.With().Str("component", "holepunch").Logger()}
}

// Serve listens until ctx is cancelled.
func (h *HolepunchEndpoint) Serve(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", h.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	h.logger.Info().Str("addr", h.addr).Msg("listening for holepunch probes")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 64)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.Debug().Err(err).Msg("udp read failed")
			continue
		}

		probe, err := codec.DecodeUdpHoleProbe(buf[:n])
		if err != nil {
			h.logger.Debug().Err(err).Str("remote", remote.String()).Msg("dropping malformed holepunch probe")
			continue
		}

		var observedIP [4]byte
		if v4 := remote.IP.To4(); v4 != nil {
			copy(observedIP[:], v4)
		}
		reply := codec.EncodeUdpHoleReply(codec.UdpHoleReply{
			ConnectionSequence: probe.ConnectionSequence,
			ObservedIP:         observedIP,
			ObservedPort:       uint16(remote.Port),
		})
		if _, err := conn.WriteToUDP(reply, remote); err != nil {
			h.logger.Debug().Err(err).Msg("udp reply failed")
		}
	}
}
