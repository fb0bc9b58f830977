package network

import (
	"net"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/session"
)

func newTestConnectionPair(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })
	return NewConnection(server, zerolog.Nop(), 30002, false), client
}

func TestConnectionSendSequenceIncrementsAndWraps(t *testing.T) {
	c, client := newTestConnectionPair(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			frame, err := codec.ReadFrame(client)
			if err != nil {
				t.Errorf("ReadFrame: %v", err)
				return
			}
			if frame.Sequence != byte(i) {
				t.Errorf("frame %d sequence = %d, want %d", i, frame.Sequence, i)
			}
		}
	}()

	for i := 0; i < 300; i++ {
		if err := c.Send(codec.PtHeartbeat, nil); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	<-done
}

func TestConnectionUserIDReflectsOwner(t *testing.T) {
	c, _ := newTestConnectionPair(t)
	if c.UserID() != 0 {
		t.Fatalf("UserID with no owner = %d, want 0", c.UserID())
	}

	c.SetOwner(session.New(42, "alice"))
	if c.UserID() != 42 {
		t.Fatalf("UserID = %d, want 42", c.UserID())
	}
}

func TestConnectionCloseIsIdempotent(t *testing.T) {
	c, _ := newTestConnectionPair(t)
	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if c.State() != StateClosed {
		t.Fatalf("state = %v, want StateClosed", c.State())
	}
}
