// Package services – RecommendationService
//
// This file implements RecommendationService, which builds ephemeral
// challenge recommendations from a user's solved history and reconciles a
// chosen recommendation into durable rows.
//
// Recommend never persists anything: candidates live only in the response.
// Select is the materialization step and is idempotent per (user, challenge)
// pair, so replaying a selection can neither duplicate history nor corrupt
// existing rows.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// solvedSampleSize caps how many solved descriptions feed the prompt.
	solvedSampleSize = 5
	// fallbackLimit caps the deterministic no-history candidate list.
	fallbackLimit = 5
	// fallbackRationale is the fixed why_recommended for fallback candidates.
	fallbackRationale = "Fallback recommendation."

	recommendSystemPrompt = "You are a coding challenge recommender. " +
		"Reply with a JSON array and nothing else."
)

// Recommendation is an ephemeral challenge candidate. IDs are freshly minted
// and become durable only if the user selects the candidate.
type Recommendation struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Examples       []string `json:"examples"`
	Topic          string   `json:"topic"`
	Difficulty     string   `json:"difficulty"`
	WhyRecommended string   `json:"why_recommended"`
}

// RecommendationService builds and materializes challenge recommendations.
type RecommendationService struct {
	DB     *gorm.DB
	Oracle oracle.Client
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(db *gorm.DB, oc oracle.Client) *RecommendationService {
	return &RecommendationService{DB: db, Oracle: oc}
}

// Recommend returns challenge candidates for userID.
//
// With solved history, the oracle is asked for exactly three new challenges
// as a JSON array; a reply that does not parse fails the request with
// ErrRecommendationParse. With no history, up to five existing challenge
// rows are listed deterministically, without an oracle call, each wrapped
// with a fresh id and a fixed rationale.
func (s *RecommendationService) Recommend(ctx context.Context, userID string) ([]Recommendation, error) {
	tr := otel.Tracer("services/RecommendationService")
	ctx, span := tr.Start(ctx, "Recommend",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	solved, err := repo.ListSolvedChallengeDescriptions(ctx, s.DB, userID, solvedSampleSize)
	if err != nil {
		return nil, err
	}
	if len(solved) == 0 {
		return s.fallback(ctx)
	}

	var b strings.Builder
	b.WriteString("The user has solved the following coding challenges:\n\n")
	for i, desc := range solved {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, desc)
	}
	b.WriteString("Recommend exactly 3 new coding challenges of similar or slightly higher difficulty. ")
	b.WriteString(`Respond with a JSON array of objects with the keys "id", "title", "description", "examples" (array of strings), "topic", "difficulty", and "why_recommended". No other text.`)

	text, err := s.Oracle.Complete(ctx, recommendSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	recs, err := parseRecommendations(text)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("recommendations.count", len(recs)))
	return recs, nil
}

// fallback lists existing challenge rows as candidates. Each candidate gets
// a freshly generated id so selecting one goes through the same placeholder
// materialization path as an oracle-authored candidate.
func (s *RecommendationService) fallback(ctx context.Context) ([]Recommendation, error) {
	rows, err := repo.ListChallenges(ctx, s.DB, fallbackLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Recommendation, 0, len(rows))
	for _, c := range rows {
		r := Recommendation{
			ID:             uuid.NewString(),
			Title:          c.Title,
			Description:    c.Description,
			Examples:       []string{},
			WhyRecommended: fallbackRationale,
		}
		if c.Topic != nil {
			r.Topic = *c.Topic
		}
		if c.Difficulty != nil {
			r.Difficulty = *c.Difficulty
		}
		out = append(out, r)
	}
	return out, nil
}

// Select reconciles a recommendation (or any external challenge id) into
// durable rows for userID:
//
//  1. If no challenge row with challengeID exists, a placeholder row is
//     created — the id may come from an oracle-authored candidate that was
//     never persisted.
//  2. If no attempt row exists for the pair, one is created with status
//     Selected; an existing attempt makes this a no-op.
//
// The two steps commit independently; each re-checks state so a retry after
// a partial failure cannot duplicate rows. An orphaned challenge row (step 1
// committed, step 2 failed) is harmless and is adopted by the retry.
func (s *RecommendationService) Select(ctx context.Context, userID, challengeID string) (*domain.Challenge, error) {
	tr := otel.Tracer("services/RecommendationService")
	ctx, span := tr.Start(ctx, "Select",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("challenge.id", challengeID),
		),
	)
	defer span.End()

	challenge, err := repo.GetChallenge(ctx, s.DB, challengeID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		challenge = &domain.Challenge{
			ID:          challengeID,
			Title:       "Recommended Challenge",
			Description: "Description unavailable",
			Topic:       ptr("General"),
			Difficulty:  ptr("Medium"),
		}
		if cerr := repo.CreateChallenge(ctx, s.DB, challenge); cerr != nil {
			// A concurrent Select may have won the insert race; re-read
			// before giving up.
			if existing, gerr := repo.GetChallenge(ctx, s.DB, challengeID); gerr == nil {
				challenge = existing
			} else {
				return nil, cerr
			}
		}
	case err != nil:
		return nil, err
	}

	if _, err := repo.GetAttempt(ctx, s.DB, challengeID, userID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if _, cerr := repo.CreateAttempt(ctx, s.DB, userID, challengeID, domain.StatusSelected); cerr != nil {
			// The unique (user, challenge) index turns a replayed insert
			// into a duplicate-key error; that replay is a no-op by design.
			if !isDuplicate(cerr) {
				return nil, cerr
			}
		}
	}

	return challenge, nil
}

// parseRecommendations decodes the oracle reply as a strict JSON array. The
// only tolerated decoration is a Markdown code fence; anything else that
// fails to decode fails the request (never an eval, never a partial result).
func parseRecommendations(text string) ([]Recommendation, error) {
	cleaned := stripCodeFence(text)
	var recs []Recommendation
	if err := json.Unmarshal([]byte(cleaned), &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationParse, err)
	}
	if len(recs) == 0 {
		return nil, ErrRecommendationParse
	}
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = uuid.NewString()
		}
		if recs[i].Examples == nil {
			recs[i].Examples = []string{}
		}
	}
	return recs, nil
}

// stripCodeFence removes a surrounding ```…``` block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "json" || first == "" {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
