// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Attempt
// model (the user ↔ challenge history).
//
// Functions:
//
//   - CreateAttempt(ctx, db, userID, challengeID, status) -> *domain.Attempt, error
//     Inserts an attempt row with UUID primary key and UTC timestamps.
//
//   - GetAttempt(ctx, db, challengeID, userID) -> *domain.Attempt, error
//     Fetches the attempt for the (challenge, user) pair, or ErrNotFound.
//     Lookups always key on the pair: a challenge issued to one user must
//     never be visible through another user's submission path.
//
//   - UpdateAttemptStatus(ctx, db, challengeID, userID, status, language) -> error
//     Updates status/language/submitted_at for the pair. Zero affected rows
//     map to ErrNotFound; a DB failure is propagated as-is so callers can
//     tell "no such pair" apart from a store fault.
//
//   - ListAttemptsByUser / ListUserHistory / CountUserHistory
//     Ordered history reads for a user.
//
//   - ListSolvedChallengeDescriptions(ctx, db, userID, limit)
//     Challenge descriptions of solved attempts, capped to bound the size of
//     recommendation prompts.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
)

// CreateAttempt inserts an attempt row for the (user, challenge) pair with
// the given initial status.
func CreateAttempt(ctx context.Context, db *gorm.DB, userID, challengeID string, status domain.AttemptStatus) (*domain.Attempt, error) {
	now := time.Now().UTC()
	a := &domain.Attempt{
		ID:          uuid.NewString(),
		UserID:      userID,
		ChallengeID: challengeID,
		Status:      status,
		SubmittedAt: now,
		CreatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAttempt fetches the attempt for the (challengeID, userID) pair, or
// ErrNotFound if the pair has no row.
func GetAttempt(ctx context.Context, db *gorm.DB, challengeID, userID string) (*domain.Attempt, error) {
	var a domain.Attempt
	err := db.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAttemptStatus records a status transition for the pair, stamping
// submitted_at and, when non-empty, the submission language. It never
// inserts: a missing pair yields ErrNotFound.
func UpdateAttemptStatus(ctx context.Context, db *gorm.DB, challengeID, userID string, status domain.AttemptStatus, language string) error {
	updates := map[string]any{
		"status":       status,
		"submitted_at": time.Now().UTC(),
	}
	if language != "" {
		updates["language"] = language
	}
	res := db.WithContext(ctx).
		Model(&domain.Attempt{}).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAttemptsByUser returns all attempts of a user ordered by submission
// time descending (most recent transition first).
func ListAttemptsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Attempt, error) {
	var out []domain.Attempt
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// CountUserHistory returns the number of attempts a user has.
func CountUserHistory(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Attempt{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListUserHistory returns a page of attempts joined with challenge tags,
// ordered by submission time descending.
func ListUserHistory(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := db.WithContext(ctx).
		Model(&domain.Attempt{}).
		Select("attempts.challenge_id, challenges.title, challenges.topic, challenges.difficulty, attempts.language, attempts.status, attempts.submitted_at").
		Joins("JOIN challenges ON challenges.id = attempts.challenge_id").
		Where("attempts.user_id = ?", userID).
		Order("attempts.submitted_at DESC, attempts.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// ListSolvedChallengeDescriptions returns the descriptions of challenges the
// user has solved, capped to limit. The cap bounds the size of prompts built
// from this history.
func ListSolvedChallengeDescriptions(ctx context.Context, db *gorm.DB, userID string, limit int) ([]string, error) {
	var out []string
	q := db.WithContext(ctx).
		Model(&domain.Attempt{}).
		Select("challenges.description").
		Joins("JOIN challenges ON challenges.id = attempts.challenge_id").
		Where("attempts.user_id = ? AND attempts.status = ?", userID, domain.StatusSolved).
		Order("attempts.submitted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&out).Error
	return out, err
}
