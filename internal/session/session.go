// Package session tracks logged-in users. A Session exists only while its
// owning Connection is live; the Registry enforces that at most one
// Session exists per userId at any moment.
package session

import (
	"sync"
	"time"
)

// ExternalNet is the address/port pair recorded for a client's UDP
// traffic, set from the client's Udp handshake frame: the IP of its TCP
// peer address and the local UDP port the client reports.
type ExternalNet struct {
	IP   string
	Port uint16
}

// Session is the server-side record of one logged-in user. Every field
// that changes after creation is protected by mu; callers must not read
// them without going through the accessor methods.
type Session struct {
	UserID   uint32
	UserName string

	mu                      sync.Mutex
	externalNet             ExternalNet
	currentChannelIndex     uint16
	currentChannelServerIdx uint16
	currentRoomID           uint32 // 0 = none
	lastHeartbeat           time.Time
}

// New creates a Session for a freshly authenticated user. It does not
// register it; callers must go through Registry.Bind so the single-session
// invariant is enforced.
func New(userID uint32, userName string) *Session {
	return &Session{
		UserID:        userID,
		UserName:      userName,
		lastHeartbeat: time.Now(),
	}
}

func (s *Session) SetExternalNet(net ExternalNet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.externalNet = net
}

func (s *Session) ExternalNet() ExternalNet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.externalNet
}

func (s *Session) SetChannel(serverIdx, channelIdx uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChannelServerIdx = serverIdx
	s.currentChannelIndex = channelIdx
}

func (s *Session) Channel() (serverIdx, channelIdx uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChannelServerIdx, s.currentChannelIndex
}

func (s *Session) SetRoomID(roomID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoomID = roomID
}

func (s *Session) RoomID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRoomID
}

// IsInRoom reports whether the session currently belongs to a room.
func (s *Session) IsInRoom() bool {
	return s.RoomID() != 0
}

func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat = time.Now()
}

func (s *Session) LastHeartbeat() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeartbeat
}
