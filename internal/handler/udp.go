package handler

import (
	"net"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
)

// handleUdp answers the TCP-side companion of the holepunch handshake: the
// client reports the local UDP port it bound, and the server records the
// observed host (from the TCP socket, since client and server share it for
// NAT purposes) alongside that port as the session's externalNet. Peers
// exchange this to connect to each other directly post-match-start; the
// UDP endpoint itself holds no per-connection state and independently
// confirms the mapping when the client's probe lands there.
func (rt *Router) handleUdp(conn *network.Connection, d *codec.Decoder) error {
	req := codec.DecodeUdpHandshakeRequest(d)
	if d.Err() != nil {
		return d.Err()
	}

	host, _, err := net.SplitHostPort(conn.RemoteAddr())
	if err != nil {
		host = conn.RemoteAddr()
	}

	owner := conn.Owner()
	owner.SetExternalNet(session.ExternalNet{IP: host, Port: req.LocalUdpPort})

	return conn.Send(codec.PtUdp, codec.UdpHandshakeReply{
		ExternalIP:   host,
		ExternalPort: conn.HolepunchPort(),
	}.Encode())
}
