package identity

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/maruel/ksid"

	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

func newSessionService(t *testing.T) *SessionService {
	t.Helper()
	svc, err := NewSessionService(filepath.Join(t.TempDir(), "sessions.jsonl"))
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	return svc
}

func TestSessionService(t *testing.T) {
	expires := storage.ToTime(time.Now().Add(time.Hour))

	t.Run("create and validate", func(t *testing.T) {
		svc := newSessionService(t)
		userID := ksid.NewID()
		session, err := svc.CreateWithID(ksid.NewID(), userID, "hash", "Firefox/Linux", "203.0.113.7", "CH", expires, 0)
		if err != nil {
			t.Fatalf("CreateWithID: %v", err)
		}
		valid, err := svc.IsValid(session.ID)
		if err != nil || !valid {
			t.Errorf("IsValid = %v, %v", valid, err)
		}
		got, err := svc.Get(session.ID)
		if err != nil || got.CountryCode != "CH" {
			t.Errorf("Get = %+v, %v", got, err)
		}
	})

	t.Run("required fields", func(t *testing.T) {
		svc := newSessionService(t)
		if _, err := svc.CreateWithID(0, ksid.NewID(), "hash", "", "", "", expires, 0); err == nil {
			t.Error("zero session ID should fail")
		}
		if _, err := svc.CreateWithID(ksid.NewID(), 0, "hash", "", "", "", expires, 0); err == nil {
			t.Error("zero user ID should fail")
		}
		if _, err := svc.CreateWithID(ksid.NewID(), ksid.NewID(), "", "", "", "", expires, 0); err == nil {
			t.Error("empty token hash should fail")
		}
	})

	t.Run("session quota", func(t *testing.T) {
		svc := newSessionService(t)
		userID := ksid.NewID()
		for range 2 {
			if _, err := svc.CreateWithID(ksid.NewID(), userID, "hash", "", "", "", expires, 2); err != nil {
				t.Fatalf("CreateWithID: %v", err)
			}
		}
		if _, err := svc.CreateWithID(ksid.NewID(), userID, "hash", "", "", "", expires, 2); !errors.Is(err, ErrSessionQuotaExceeded) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("revoke", func(t *testing.T) {
		svc := newSessionService(t)
		userID := ksid.NewID()
		session, err := svc.CreateWithID(ksid.NewID(), userID, "hash", "", "", "", expires, 0)
		if err != nil {
			t.Fatalf("CreateWithID: %v", err)
		}
		if err := svc.Revoke(session.ID); err != nil {
			t.Fatalf("Revoke: %v", err)
		}
		valid, err := svc.IsValid(session.ID)
		if err != nil || valid {
			t.Errorf("IsValid after revoke = %v, %v", valid, err)
		}
		// Revoking twice keeps the original timestamp.
		if err := svc.Revoke(session.ID); err != nil {
			t.Errorf("second Revoke: %v", err)
		}
	})

	t.Run("revoke all for user", func(t *testing.T) {
		svc := newSessionService(t)
		userID := ksid.NewID()
		other := ksid.NewID()
		for range 3 {
			if _, err := svc.CreateWithID(ksid.NewID(), userID, "hash", "", "", "", expires, 0); err != nil {
				t.Fatalf("CreateWithID: %v", err)
			}
		}
		if _, err := svc.CreateWithID(ksid.NewID(), other, "hash", "", "", "", expires, 0); err != nil {
			t.Fatalf("CreateWithID: %v", err)
		}
		count, err := svc.RevokeAllForUser(userID)
		if err != nil || count != 3 {
			t.Errorf("RevokeAllForUser = %d, %v", count, err)
		}
		active := 0
		for range svc.ActiveByUserID(other) {
			active++
		}
		if active != 1 {
			t.Errorf("other user active sessions = %d", active)
		}
	})

	t.Run("expired sessions are invalid and cleaned up", func(t *testing.T) {
		svc := newSessionService(t)
		userID := ksid.NewID()
		past := storage.ToTime(time.Now().Add(-48 * time.Hour))
		session, err := svc.CreateWithID(ksid.NewID(), userID, "hash", "", "", "", past, 0)
		if err != nil {
			t.Fatalf("CreateWithID: %v", err)
		}
		valid, err := svc.IsValid(session.ID)
		if err != nil || valid {
			t.Errorf("IsValid = %v, %v", valid, err)
		}
		count, err := svc.CleanupExpired(24 * time.Hour)
		if err != nil || count != 1 {
			t.Errorf("CleanupExpired = %d, %v", count, err)
		}
		if _, err := svc.Get(session.ID); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("err = %v", err)
		}
	})
}
