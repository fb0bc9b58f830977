package db

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *ModerationStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moderation.db")
	store, err := NewModerationStore(path)
	if err != nil {
		t.Fatalf("NewModerationStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBanAndIsBanned(t *testing.T) {
	store := newTestStore(t)

	if rec, err := store.IsBanned(42); err != nil || rec != nil {
		t.Fatalf("IsBanned before ban = (%v, %v), want (nil, nil)", rec, err)
	}

	if err := store.Ban(42, "cheating", "op1"); err != nil {
		t.Fatalf("Ban: %v", err)
	}

	rec, err := store.IsBanned(42)
	if err != nil {
		t.Fatalf("IsBanned: %v", err)
	}
	if rec == nil || rec.Reason != "cheating" || rec.IssuedBy != "op1" {
		t.Fatalf("IsBanned = %+v, want reason=cheating issuedBy=op1", rec)
	}
}

func TestUnbanRemovesRecord(t *testing.T) {
	store := newTestStore(t)
	store.Ban(7, "spam", "op1")

	if err := store.Unban(7); err != nil {
		t.Fatalf("Unban: %v", err)
	}
	rec, _ := store.IsBanned(7)
	if rec != nil {
		t.Fatalf("expected no ban record after Unban, got %+v", rec)
	}
}

func TestUnbanUnknownUserReturnsErrNotBanned(t *testing.T) {
	store := newTestStore(t)
	if err := store.Unban(999); !errors.Is(err, ErrNotBanned) {
		t.Fatalf("Unban unknown user = %v, want ErrNotBanned", err)
	}
}

func TestGrantAndCheckPermission(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.HasPermission("op1", PermControl)
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if ok {
		t.Fatal("expected no permission before grant")
	}

	if err := store.GrantRole("op1", PermControl); err != nil {
		t.Fatalf("GrantRole: %v", err)
	}
	ok, err = store.HasPermission("op1", PermControl)
	if err != nil || !ok {
		t.Fatalf("HasPermission after grant = (%v, %v), want (true, nil)", ok, err)
	}

	if err := store.RevokeRole("op1", PermControl); err != nil {
		t.Fatalf("RevokeRole: %v", err)
	}
	ok, _ = store.HasPermission("op1", PermControl)
	if ok {
		t.Fatal("expected no permission after revoke")
	}
}
