package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
)

func newTestServer() *Server {
	directory := lobby.NewDirectory()
	srv := directory.AddServer("Main")
	srv.AddChannel("General")
	return NewServer("", "", directory, session.NewRegistry(), network.NewRegistry(), nil, nil)
}

func TestPingIsAlwaysPublic(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestChannelsListsConfiguredChannels(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/ops/channels", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestOpsRoutesRejectBadBearerWhenAPIKeySet(t *testing.T) {
	directory := lobby.NewDirectory()
	s := NewServer("", "secret", directory, session.NewRegistry(), network.NewRegistry(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ops/sessions", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ops/sessions", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Operator-Id", "op1")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with correct bearer token", rec.Code)
	}
}

func TestKickUnknownUserReturnsNotFound(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/ops/sessions/42/kick", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
