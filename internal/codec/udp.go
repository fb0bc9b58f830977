package codec

import (
	"encoding/binary"
	"fmt"
)

// UdpMagicByte prefixes every UDP holepunch probe, mirroring the TCP
// frame's magic byte so a stray packet on the wrong socket is rejected
// immediately rather than partially parsed.
const UdpMagicByte byte = 0xCE

// UdpHoleProbe is the tiny UDP datagram a client fires at the holepunch
// port to learn the address/port its NAT is actually translating to. The
// body just carries the connection ID the probe should be associated
// with; the server learns the observed address from the UDP packet's own
// source, not from anything inside the payload.
type UdpHoleProbe struct {
	ConnectionSequence uint32
}

// EncodeUdpHoleProbe builds the datagram a client would send.
func EncodeUdpHoleProbe(p UdpHoleProbe) []byte {
	buf := make([]byte, 5)
	buf[0] = UdpMagicByte
	binary.LittleEndian.PutUint32(buf[1:], p.ConnectionSequence)
	return buf
}

// DecodeUdpHoleProbe validates and decodes a received datagram.
func DecodeUdpHoleProbe(data []byte) (UdpHoleProbe, error) {
	if len(data) < 5 {
		return UdpHoleProbe{}, fmt.Errorf("%w: short udp probe", ErrMalformedFrame)
	}
	if data[0] != UdpMagicByte {
		return UdpHoleProbe{}, fmt.Errorf("%w: got 0x%02X", ErrBadMagic, data[0])
	}
	return UdpHoleProbe{ConnectionSequence: binary.LittleEndian.Uint32(data[1:5])}, nil
}

// UdpHoleReply echoes the probe back with the externally observed
// address, letting the client confirm the NAT mapping it should tell its
// match peers about.
type UdpHoleReply struct {
	ConnectionSequence uint32
	ObservedIP         [4]byte
	ObservedPort       uint16
}

func EncodeUdpHoleReply(p UdpHoleReply) []byte {
	buf := make([]byte, 11)
	buf[0] = UdpMagicByte
	binary.LittleEndian.PutUint32(buf[1:5], p.ConnectionSequence)
	copy(buf[5:9], p.ObservedIP[:])
	binary.LittleEndian.PutUint16(buf[9:11], p.ObservedPort)
	return buf
}

// UdpHandshakeRequest is the TCP-side companion: the client tells the
// server which local UDP port it bound, and the handler stores that port,
// with the TCP peer's IP, as the session's external address.
type UdpHandshakeRequest struct {
	LocalUdpPort uint16
}

func DecodeUdpHandshakeRequest(d *Decoder) UdpHandshakeRequest {
	return UdpHandshakeRequest{LocalUdpPort: d.ReadU16("local_udp_port")}
}

// UdpHandshakeReply carries the client's IP as seen on the TCP socket and
// this server's UDP holepunch port back over TCP. It is sent right away,
// without waiting for a UDP probe.
type UdpHandshakeReply struct {
	ExternalIP   string
	ExternalPort uint16
}

func (p UdpHandshakeReply) Encode() []byte {
	return NewEncoder().
		WriteString(p.ExternalIP).
		WriteU16(p.ExternalPort).
		Bytes()
}
