// Package domain defines the persistence models for users, challenges, and
// challenge attempts. These types are mapped with GORM and form the core
// data layer of the adaptive challenge application.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AttemptStatus enumerates the lifecycle stages of a user/challenge attempt.
type AttemptStatus string

const (
	// StatusGenerated marks an attempt created when a challenge is issued
	// to a user by the generation flow.
	StatusGenerated AttemptStatus = "Generated"
	// StatusSelected marks an attempt created when a user picks a
	// recommended challenge.
	StatusSelected AttemptStatus = "Selected"
	// StatusSolved marks an attempt whose last submitted solution was
	// judged correct.
	StatusSolved AttemptStatus = "Solved"
	// StatusFailed marks an attempt whose last submitted solution was
	// judged incorrect.
	StatusFailed AttemptStatus = "Failed"
)

// User is a registered account. Username and email are unique; the password
// is stored only as a bcrypt hash.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Challenge is a persisted coding problem. The description is the full
// generated text (title, statement, examples) and is the canonical body used
// when a solution is judged against it.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Title: short display title; a placeholder when none could be derived.
//   - Description: full problem text; required.
//   - Topic / Difficulty: free-text tags; nil until enrichment fills them.
//   - Embedding: cached embedding vector (JSON array), written out-of-band
//     by the seed tool; nil for rows that have not been embedded.
type Challenge struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string         `json:"title"       gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Topic       *string        `json:"topic,omitempty"      gorm:"type:varchar(64)"`
	Difficulty  *string        `json:"difficulty,omitempty" gorm:"type:varchar(32)"`
	Embedding   datatypes.JSON `json:"-"           gorm:"type:json"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Challenge.
func (Challenge) TableName() string { return "challenges" }

// Attempt links a user to a challenge and records the state of that pairing.
// At most one attempt exists per (user, challenge) pair; every lookup that
// feeds solution validation keys on the pair so one user's attempt can never
// shadow another's.
//
// Fields:
//   - Status: Generated, Selected, Solved, or Failed.
//   - Language: the submission language, set when a solution is validated.
//   - SubmittedAt: timestamp of the last status transition.
type Attempt struct {
	ID          string        `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string        `json:"user_id"      gorm:"type:char(36);not null;index;uniqueIndex:ux_attempt_user_challenge"`
	ChallengeID string        `json:"challenge_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_attempt_user_challenge"`
	Status      AttemptStatus `json:"status"       gorm:"type:varchar(16);not null;check:status IN ('Generated','Selected','Solved','Failed')"`
	Language    *string       `json:"language,omitempty" gorm:"type:varchar(32)"`
	SubmittedAt time.Time     `json:"submitted_at"`
	CreatedAt   time.Time     `json:"created_at"`

	// Challenge is the referenced problem. Attempts are cascade-deleted if
	// their challenge is removed.
	Challenge Challenge `json:"-" gorm:"foreignKey:ChallengeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Attempt.
func (Attempt) TableName() string { return "attempts" }

// HistoryEntry is a read model for the user-history endpoint: an attempt
// joined with the tags of its challenge. It is never written back.
type HistoryEntry struct {
	ChallengeID string        `json:"challenge_id"`
	Title       string        `json:"title"`
	Topic       *string       `json:"topic,omitempty"`
	Difficulty  *string       `json:"difficulty,omitempty"`
	Language    *string       `json:"language,omitempty"`
	Status      AttemptStatus `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
}
