package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/connector"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
)

// testBackend stands in for the user and inventory services, backed by a
// single httptest.Server so the gateway's pinger and request paths see a
// real HTTP round trip rather than a mocked transport.
type testBackend struct {
	srv             *httptest.Server
	inventoryCalls  atomic.Int32
	credentialReply uint32
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	tb := &testBackend{credentialReply: 42}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		if tb.credentialReply == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]uint32{"userId": tb.credentialReply})
	})
	mux.HandleFunc("/v1/users/42", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(connector.User{UserID: 42, UserName: "alice", PlayerName: "playerAlice"})
	})
	mux.HandleFunc("/v1/users/7", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(connector.User{UserID: 7, UserName: "bob", PlayerName: "playerBob"})
	})
	mux.HandleFunc("/v1/inventory/42", func(w http.ResponseWriter, r *http.Request) {
		tb.inventoryCalls.Add(1)
		json.NewEncoder(w).Encode(connector.Inventory{ItemIDs: []uint32{1, 2, 3}})
	})
	mux.HandleFunc("/v1/inventory/7", func(w http.ResponseWriter, r *http.Request) {
		tb.inventoryCalls.Add(1)
		json.NewEncoder(w).Encode(connector.Inventory{ItemIDs: []uint32{9}})
	})

	tb.srv = httptest.NewServer(mux)
	t.Cleanup(tb.srv.Close)
	return tb
}

func (tb *testBackend) client(t *testing.T) *connector.Client {
	t.Helper()
	c := connector.New(connector.Config{
		UserServiceBaseURL:      tb.srv.URL,
		InventoryServiceBaseURL: tb.srv.URL,
	})
	t.Cleanup(c.Close)
	// Give the optimistic pinger's first checkNow a moment to land so
	// isAlive reflects a real probe rather than the pre-probe default.
	time.Sleep(20 * time.Millisecond)
	return c
}

func newTestConnection(t *testing.T) (*network.Connection, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })
	return network.NewConnection(server, zerolog.Nop(), 30002, false), client
}

// drainFrames reads frames from the client side of a pipe until n have
// arrived or the test times out.
func drainFrames(t *testing.T, client net.Conn, n int) []*codec.Frame {
	t.Helper()
	out := make([]*codec.Frame, 0, n)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			f, err := codec.ReadFrame(client)
			if err != nil {
				return
			}
			out = append(out, f)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frames")
	}
	return out
}

func newTestRouter(t *testing.T, gateway *connector.Client) *Router {
	return NewRouter(session.NewRegistry(), network.NewRegistry(), lobby.NewDirectory(), gateway, nil, nil, zerolog.Nop())
}

func frame(ptype codec.PacketType, body []byte) *codec.Frame {
	return &codec.Frame{Sequence: 0, Type: ptype, Body: body}
}

func TestLoginHappyPathSendsOrderedFrames(t *testing.T) {
	tb := newTestBackend(t)
	rt := newTestRouter(t, tb.client(t))
	conn, client := newTestConnection(t)
	rt.OnConnect(conn)

	versionBody := codec.NewEncoder().WriteString("1.0").Bytes()
	if err := rt.HandleFrame(conn, frame(codec.PtVersion, versionBody)); err != nil {
		t.Fatalf("version: %v", err)
	}

	loginBody := codec.NewEncoder().WriteString("alice").WriteString("pw").Bytes()
	errCh := make(chan error, 1)
	go func() { errCh <- rt.HandleFrame(conn, frame(codec.PtLogin, loginBody)) }()

	frames := drainFrames(t, client, 8)
	if err := <-errCh; err != nil {
		t.Fatalf("login: %v", err)
	}

	wantTypes := []codec.PacketType{
		codec.PtUserStart, codec.PtUserInfo, codec.PtInventory,
		codec.PtFavoritePush, codec.PtUnlockBlob, codec.PtFavoritePush,
		codec.PtOptionPush, codec.PtChannelList,
	}
	if len(frames) != len(wantTypes) {
		t.Fatalf("got %d frames, want %d", len(frames), len(wantTypes))
	}
	for i, f := range frames {
		if f.Type != wantTypes[i] {
			t.Errorf("frame %d type = 0x%02x, want 0x%02x", i, f.Type, wantTypes[i])
		}
		if f.Sequence != byte(i) {
			t.Errorf("frame %d sequence = %d, want %d", i, f.Sequence, i)
		}
	}

	if conn.State() != network.StateAuthenticated {
		t.Errorf("connection state = %v, want StateAuthenticated", conn.State())
	}
}

func TestLoginFailureClosesConnectionWithoutAFrame(t *testing.T) {
	tb := newTestBackend(t)
	tb.credentialReply = 0 // 0 means "invalid credentials" per the gateway contract
	rt := newTestRouter(t, tb.client(t))
	conn, client := newTestConnection(t)
	rt.OnConnect(conn)
	conn.SetState(network.StateIdentified)

	loginBody := codec.NewEncoder().WriteString("alice").WriteString("wrong").Bytes()
	if err := rt.HandleFrame(conn, frame(codec.PtLogin, loginBody)); err == nil {
		t.Fatal("HandleFrame returned nil, want an error so the caller closes the socket")
	}

	assertNoFrameWithinTimeout(t, client)
	if conn.State() == network.StateAuthenticated {
		t.Error("connection should not be authenticated after a failed login")
	}
}

// bindSession gives conn an authenticated owner without going through the
// full login handshake, for tests that only care about post-login
// authorization behavior.
func bindSession(rt *Router, conn *network.Connection, userID uint32, name string) *session.Session {
	sess := session.New(userID, name)
	rt.Sessions.Bind(sess)
	conn.SetOwner(sess)
	conn.SetState(network.StateAuthenticated)
	rt.Conns.BindOwner(userID, conn)
	return sess
}

func TestHostRelayRejectsNonHostWithoutGatewayCall(t *testing.T) {
	tb := newTestBackend(t)
	rt := newTestRouter(t, tb.client(t))

	hostConn, hostClient := newTestConnection(t)
	rt.OnConnect(hostConn)
	hostSess := bindSession(rt, hostConn, 42, "alice")

	nonHostConn, nonHostClient := newTestConnection(t)
	rt.OnConnect(nonHostConn)
	nonHostSess := bindSession(rt, nonHostConn, 7, "bob")

	room := lobby.NewRoom(1, 0, "Room #1", codec.DefaultRoomSettings())
	if err := room.AddUser(hostConn, hostSess.UserID, hostSess.UserName); err != nil {
		t.Fatalf("add host: %v", err)
	}
	if err := room.AddUser(nonHostConn, nonHostSess.UserID, nonHostSess.UserName); err != nil {
		t.Fatalf("add member: %v", err)
	}
	hostConn.SetRoom(room)
	nonHostConn.SetRoom(room)

	// bob (non-host) asks the server to relay alice's loadout to himself.
	body := codec.NewEncoder().WriteU8(byte(codec.HostActionSetLoadout)).WriteU32(hostSess.UserID).Bytes()
	if err := rt.HandleFrame(nonHostConn, frame(codec.PtHost, body)); err != nil {
		t.Fatalf("host relay: %v", err)
	}

	if n := tb.inventoryCalls.Load(); n != 0 {
		t.Errorf("gateway inventory fetch count = %d, want 0 (non-host request must never reach the gateway)", n)
	}

	assertNoFrameWithinTimeout(t, hostClient)
	assertNoFrameWithinTimeout(t, nonHostClient)
}

func TestHostRelayAllowsHostWithGatewayCall(t *testing.T) {
	tb := newTestBackend(t)
	rt := newTestRouter(t, tb.client(t))

	hostConn, hostClient := newTestConnection(t)
	rt.OnConnect(hostConn)
	hostSess := bindSession(rt, hostConn, 42, "alice")

	memberConn, _ := newTestConnection(t)
	rt.OnConnect(memberConn)
	memberSess := bindSession(rt, memberConn, 7, "bob")

	room := lobby.NewRoom(1, 0, "Room #1", codec.DefaultRoomSettings())
	if err := room.AddUser(hostConn, hostSess.UserID, hostSess.UserName); err != nil {
		t.Fatalf("add host: %v", err)
	}
	if err := room.AddUser(memberConn, memberSess.UserID, memberSess.UserName); err != nil {
		t.Fatalf("add member: %v", err)
	}
	hostConn.SetRoom(room)
	memberConn.SetRoom(room)

	body := codec.NewEncoder().WriteU8(byte(codec.HostActionSetLoadout)).WriteU32(memberSess.UserID).Bytes()
	errCh := make(chan error, 1)
	go func() { errCh <- rt.HandleFrame(hostConn, frame(codec.PtHost, body)) }()

	frames := drainFrames(t, hostClient, 1)
	if err := <-errCh; err != nil {
		t.Fatalf("host relay: %v", err)
	}
	if len(frames) != 1 || frames[0].Type != codec.PtHostReply {
		t.Fatalf("frames = %+v, want exactly one PtHostReply", frames)
	}
	if n := tb.inventoryCalls.Load(); n != 1 {
		t.Errorf("gateway inventory fetch count = %d, want 1", n)
	}
}

func assertNoFrameWithinTimeout(t *testing.T, client net.Conn) {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, err := codec.ReadFrame(client)
	if err == nil {
		t.Fatal("expected no frame to be sent, but one arrived")
	}
}
