package network

import (
	"net"
	"testing"

	"github.com/rs/zerolog"
)

func TestRegistryRegisterAndBindOwner(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	r := NewRegistry()
	c := NewConnection(server, zerolog.Nop(), 30002, false)
	r.Register(c)
	r.BindOwner(42, c)

	if r.Count() != 1 {
		t.Fatalf("count = %d, want 1", r.Count())
	}
	got, ok := r.ByOwner(42)
	if !ok || got != c {
		t.Fatal("expected to find the connection bound to userId 42")
	}

	r.Unregister(c)
	if r.Count() != 0 {
		t.Fatalf("count after unregister = %d, want 0", r.Count())
	}
}
