package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
)

// stubOracle is a scripted oracle.Client shared by the service tests. It
// records every prompt so tests can assert on what the services send out.
type stubOracle struct {
	reply string
	err   error

	completeCalls int
	lastSystem    string
	lastUser      string
}

func (s *stubOracle) Complete(_ context.Context, system, user string) (string, error) {
	s.completeCalls++
	s.lastSystem = system
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubOracle) Embed(context.Context, string) ([]float64, error) {
	return nil, errors.New("not scripted")
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.User{}, &domain.Challenge{}, &domain.Attempt{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestGenerate_Success_PersistsChallengeAndAttempt(t *testing.T) {
	db := newServiceDB(t)
	oc := &stubOracle{reply: "Title: Two Sum\n\nGiven an array...\n\nExamples:\nInput: [1,2]\nOutput: 3"}
	svc := NewChallengeService(db, oc)

	c, err := svc.Generate(context.Background(), "u1", "arrays", "Easy")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.ID == "" || c.Title != "Two Sum" {
		t.Fatalf("unexpected challenge: %+v", c)
	}
	if !strings.Contains(c.Description, "Given an array") {
		t.Fatalf("description must carry the full reply: %q", c.Description)
	}
	if c.Topic == nil || *c.Topic != "Arrays" {
		t.Fatalf("topic not normalized: %+v", c.Topic)
	}
	if c.Difficulty == nil || *c.Difficulty != "easy" {
		t.Fatalf("difficulty not normalized: %+v", c.Difficulty)
	}

	// The prompt must name the requested topic and difficulty.
	if !strings.Contains(oc.lastUser, "easy") && !strings.Contains(oc.lastUser, "Easy") {
		t.Fatalf("difficulty missing from prompt: %q", oc.lastUser)
	}
	if !strings.Contains(oc.lastUser, "arrays") {
		t.Fatalf("topic missing from prompt: %q", oc.lastUser)
	}

	// Both rows committed.
	if n := countRows(t, db, &domain.Challenge{}); n != 1 {
		t.Fatalf("expected 1 challenge row, got %d", n)
	}
	var a domain.Attempt
	if err := db.First(&a, "user_id = ? AND challenge_id = ?", "u1", c.ID).Error; err != nil {
		t.Fatalf("attempt row missing: %v", err)
	}
	if a.Status != domain.StatusGenerated {
		t.Fatalf("attempt status = %q, want Generated", a.Status)
	}
}

func TestGenerate_DefaultsTopicAndDifficulty(t *testing.T) {
	db := newServiceDB(t)
	oc := &stubOracle{reply: "Title: X\nbody"}
	svc := NewChallengeService(db, oc)

	c, err := svc.Generate(context.Background(), "u1", "", "  ")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.Topic == nil || *c.Topic != "General" {
		t.Fatalf("default topic not applied: %+v", c.Topic)
	}
	if c.Difficulty == nil || *c.Difficulty != "medium" {
		t.Fatalf("default difficulty not applied: %+v", c.Difficulty)
	}
	if !strings.Contains(oc.lastUser, "medium") || !strings.Contains(oc.lastUser, "general") {
		t.Fatalf("defaults missing from prompt: %q", oc.lastUser)
	}
}

func TestGenerate_NoTitleLine_UsesPlaceholder(t *testing.T) {
	db := newServiceDB(t)
	oc := &stubOracle{reply: "Just a bare problem statement with no heading."}
	svc := NewChallengeService(db, oc)

	c, err := svc.Generate(context.Background(), "u1", "", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.Title != "Untitled Challenge" {
		t.Fatalf("expected placeholder title, got %q", c.Title)
	}
}

func TestGenerate_OracleFailure_NothingPersisted(t *testing.T) {
	db := newServiceDB(t)
	cause := errors.New("provider down")
	oc := &stubOracle{err: cause}
	svc := NewChallengeService(db, oc)

	if _, err := svc.Generate(context.Background(), "u1", "t", "d"); !errors.Is(err, cause) {
		t.Fatalf("expected oracle error, got %v", err)
	}
	if n := countRows(t, db, &domain.Challenge{}); n != 0 {
		t.Fatalf("challenge row leaked: %d", n)
	}
	if n := countRows(t, db, &domain.Attempt{}); n != 0 {
		t.Fatalf("attempt row leaked: %d", n)
	}
}

func TestGenerate_AttemptInsertFailure_RollsBackChallenge(t *testing.T) {
	db := newServiceDB(t)
	// Sabotage the second insert of the transaction: without the attempts
	// table the challenge insert must be rolled back too.
	if err := db.Migrator().DropTable(&domain.Attempt{}); err != nil {
		t.Fatalf("drop attempts: %v", err)
	}
	oc := &stubOracle{reply: "Title: X\nbody"}
	svc := NewChallengeService(db, oc)

	if _, err := svc.Generate(context.Background(), "u1", "", ""); err == nil {
		t.Fatalf("expected store error")
	}
	if n := countRows(t, db, &domain.Challenge{}); n != 0 {
		t.Fatalf("partial write: challenge row survived rollback (%d rows)", n)
	}
}

func TestHistory_EmptyAndPaged(t *testing.T) {
	db := newServiceDB(t)
	svc := NewChallengeService(db, &stubOracle{reply: "Title: X\nbody"})
	ctx := context.Background()

	items, total, err := svc.History(ctx, "u1", 1, 10)
	if err != nil {
		t.Fatalf("History empty: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty history, got total=%d items=%d", total, len(items))
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Generate(ctx, "u1", "t", "d"); err != nil {
			t.Fatalf("seed generate %d: %v", i, err)
		}
	}

	items, total, err = svc.History(ctx, "u1", 1, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("unexpected page: total=%d items=%d", total, len(items))
	}

	// Out-of-range page clamps to sane values rather than erroring.
	items, total, err = svc.History(ctx, "u1", 0, 0)
	if err != nil {
		t.Fatalf("History clamped: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("clamped page wrong: total=%d items=%d", total, len(items))
	}
}

func TestExtractTitle_Variants(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Title: Two Sum\nbody", "Two Sum"},
		{"markdown heading", "## Title: Graph Walk\nbody", "Graph Walk"},
		{"bold marker", "**Title: Binary Search**\nbody", "Binary Search"},
		{"later line", "Some preamble\nTitle: Hidden Gem\nbody", "Hidden Gem"},
		{"case insensitive", "title: lower case\nbody", "lower case"},
		{"missing", "no heading anywhere", "Untitled Challenge"},
		{"empty remainder", "Title:   \nbody", "Untitled Challenge"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractTitle(tc.in); got != tc.want {
				t.Fatalf("extractTitle(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClipTitle_BoundsLongTitles(t *testing.T) {
	long := strings.Repeat("x", 300)
	if got := clipTitle(long); len(got) != 255 {
		t.Fatalf("expected 255 chars, got %d", len(got))
	}
	if got := clipTitle("short"); got != "short" {
		t.Fatalf("short title mangled: %q", got)
	}
}
