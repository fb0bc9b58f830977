package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotBanned is returned by Unban when the userId has no active ban.
var ErrNotBanned = errors.New("db: user is not banned")

// Permission levels for the Ops API's RBAC, mirroring the three-tier model
// this store's schema was carried over from.
const (
	PermMonitor = "monitor"
	PermControl = "control"
)

// ModerationStore is a SQLite-backed store of admin role grants and player
// bans. It is deliberately separate from the domain model in internal/lobby
// and internal/session: it survives process restarts, they do not.
type ModerationStore struct {
	db *Database
}

// NewModerationStore opens (or creates) the moderation database at path and
// applies its schema.
func NewModerationStore(path string) (*ModerationStore, error) {
	database, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	store := &ModerationStore{db: database}
	if err := store.migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return store, nil
}

func (s *ModerationStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS admin_roles (
			operator_id TEXT NOT NULL,
			role        TEXT NOT NULL,
			granted_at  INTEGER NOT NULL,
			PRIMARY KEY (operator_id, role)
		)`,
		`CREATE TABLE IF NOT EXISTS bans (
			user_id    INTEGER PRIMARY KEY,
			reason     TEXT NOT NULL,
			issued_by  TEXT NOT NULL,
			issued_at  INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *ModerationStore) Close() error {
	return s.db.Close()
}

// GrantRole gives operatorID a role. Idempotent: granting the same role
// twice is a no-op.
func (s *ModerationStore) GrantRole(operatorID, role string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO admin_roles (operator_id, role, granted_at) VALUES (?, ?, ?)`,
		operatorID, role, time.Now().Unix(),
	)
	return err
}

// RevokeRole removes a role grant.
func (s *ModerationStore) RevokeRole(operatorID, role string) error {
	_, err := s.db.Exec(`DELETE FROM admin_roles WHERE operator_id = ? AND role = ?`, operatorID, role)
	return err
}

// HasPermission reports whether operatorID has been granted the given
// permission level.
func (s *ModerationStore) HasPermission(operatorID, permission string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM admin_roles WHERE operator_id = ? AND role = ?`,
		operatorID, permission,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ban records userID as banned. A repeated ban overwrites the reason and
// issuer of the existing one.
func (s *ModerationStore) Ban(userID uint32, reason, issuedBy string) error {
	_, err := s.db.Exec(
		`INSERT INTO bans (user_id, reason, issued_by, issued_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET reason = excluded.reason, issued_by = excluded.issued_by, issued_at = excluded.issued_at`,
		userID, reason, issuedBy, time.Now().Unix(),
	)
	if err != nil {
		return err
	}
	log.Info().Uint32("userId", userID).Str("issuedBy", issuedBy).Msg("user banned")
	return nil
}

// Unban removes an active ban. Returns ErrNotBanned if userID had none.
func (s *ModerationStore) Unban(userID uint32) error {
	res, err := s.db.Exec(`DELETE FROM bans WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotBanned
	}
	return nil
}

// BanRecord is a single active ban.
type BanRecord struct {
	UserID   uint32
	Reason   string
	IssuedBy string
	IssuedAt time.Time
}

// IsBanned reports whether userID currently has an active ban, and its
// record if so.
func (s *ModerationStore) IsBanned(userID uint32) (*BanRecord, error) {
	var rec BanRecord
	var issuedAt int64
	err := s.db.QueryRow(
		`SELECT user_id, reason, issued_by, issued_at FROM bans WHERE user_id = ?`, userID,
	).Scan(&rec.UserID, &rec.Reason, &rec.IssuedBy, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.IssuedAt = time.Unix(issuedAt, 0)
	return &rec, nil
}
