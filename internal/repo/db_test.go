package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
)

func TestOpenSQLite_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// Schema is usable end to end.
	u, err := CreateUser(context.Background(), db, "alice", "a@example.com", "h")
	if err != nil {
		t.Fatalf("CreateUser after migrate: %v", err)
	}
	c := &domain.Challenge{ID: "c1", Title: "T", Description: "d"}
	if err := CreateChallenge(context.Background(), db, c); err != nil {
		t.Fatalf("CreateChallenge after migrate: %v", err)
	}
	if _, err := CreateAttempt(context.Background(), db, u.ID, c.ID, domain.StatusGenerated); err != nil {
		t.Fatalf("CreateAttempt after migrate: %v", err)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "app.db")
	if _, err := OpenSQLite(path); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
