package lobby

import (
	"sync"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

// ChannelServer is a named group of Channels: the root of the lobby tree
// advertised to clients on login. Most deployments run exactly one, but
// the model supports more to mirror how the client addresses channels by
// a (serverIndex, channelIndex) pair rather than a flat ID.
type ChannelServer struct {
	Index uint16
	Name  string

	mu       sync.RWMutex
	channels []*Channel // ordered, index == Channel.Index
}

func NewChannelServer(index uint16, name string) *ChannelServer {
	return &ChannelServer{Index: index, Name: name}
}

// AddChannel appends a new channel, assigning it the next index.
func (s *ChannelServer) AddChannel(name string) *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := NewChannel(uint16(len(s.channels)), name)
	s.channels = append(s.channels, ch)
	return ch
}

func (s *ChannelServer) Channel(index uint16) (*Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(index) >= len(s.channels) {
		return nil, false
	}
	return s.channels[index], true
}

func (s *ChannelServer) Channels() []*Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// Directory holds every configured ChannelServer and answers the
// ChannelList enumeration sent on login and on request.
type Directory struct {
	mu      sync.RWMutex
	servers []*ChannelServer
}

func NewDirectory() *Directory {
	return &Directory{}
}

func (d *Directory) AddServer(name string) *ChannelServer {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := NewChannelServer(uint16(len(d.servers)), name)
	d.servers = append(d.servers, s)
	return s
}

func (d *Directory) Server(index uint16) (*ChannelServer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(index) >= len(d.servers) {
		return nil, false
	}
	return d.servers[index], true
}

// ChannelList builds the full enumeration: one entry per (server,
// channel) pair, carrying each channel's current open-room count.
func (d *Directory) ChannelList() codec.ChannelList {
	d.mu.RLock()
	servers := make([]*ChannelServer, len(d.servers))
	copy(servers, d.servers)
	d.mu.RUnlock()

	var entries []codec.ChannelListEntry
	for _, srv := range servers {
		for _, ch := range srv.Channels() {
			entries = append(entries, codec.ChannelListEntry{
				ServerIndex:  srv.Index,
				ChannelIndex: ch.Index,
				Name:         ch.Name,
				RoomCount:    uint16(ch.RoomCount()),
			})
		}
	}
	return codec.ChannelList{Entries: entries}
}
