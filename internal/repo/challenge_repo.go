// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Challenge
// model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
)

// CreateChallenge inserts a new challenge row. The caller supplies the ID
// (always a fresh UUID in practice; the generation and selection flows both
// mint one before calling). CreatedAt is set to UTC.
func CreateChallenge(ctx context.Context, db *gorm.DB, c *domain.Challenge) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetChallenge fetches a challenge by ID, or ErrNotFound if missing.
func GetChallenge(ctx context.Context, db *gorm.DB, id string) (*domain.Challenge, error) {
	var c domain.Challenge
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChallenges returns up to limit challenges ordered by creation time
// ascending. Used by the deterministic recommendation fallback, which is why
// the ordering must be stable.
func ListChallenges(ctx context.Context, db *gorm.DB, limit int) ([]domain.Challenge, error) {
	var out []domain.Challenge
	q := db.WithContext(ctx).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// UpdateChallengeEmbedding stores a serialized embedding vector for the
// challenge. Returns ErrNotFound when the row does not exist.
func UpdateChallengeEmbedding(ctx context.Context, db *gorm.DB, id string, embedding []byte) error {
	res := db.WithContext(ctx).
		Model(&domain.Challenge{}).
		Where("id = ?", id).
		Update("embedding", embedding)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListChallengesWithoutEmbedding returns challenges whose embedding column is
// still empty, up to limit. Consumed by the seed tool's backfill pass.
func ListChallengesWithoutEmbedding(ctx context.Context, db *gorm.DB, limit int) ([]domain.Challenge, error) {
	var out []domain.Challenge
	q := db.WithContext(ctx).
		Where("embedding IS NULL OR embedding = ''").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
