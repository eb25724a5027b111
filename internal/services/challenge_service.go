// Package services – ChallengeService
//
// This file implements ChallengeService, which owns the challenge generation
// flow and the user history listing. Generation asks the oracle for a new
// problem, derives a title from the reply, and persists the challenge row
// together with the requesting user's attempt row in a single transaction:
// either both rows exist afterwards or neither does.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// user identifiers and the requested topic/difficulty.
package services

import (
	"bufio"
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultTopic      = "general"
	defaultDifficulty = "medium"

	// placeholderTitle is stored when no "Title:" line can be found in the
	// oracle reply.
	placeholderTitle = "Untitled Challenge"

	generateSystemPrompt = "You are a coding challenge generator. " +
		"Reply with a Title: line, a full problem description, and an Examples section."
)

// ChallengeService coordinates challenge generation and history reads.
type ChallengeService struct {
	DB     *gorm.DB
	Oracle oracle.Client
}

// NewChallengeService constructs a ChallengeService.
func NewChallengeService(db *gorm.DB, oc oracle.Client) *ChallengeService {
	return &ChallengeService{DB: db, Oracle: oc}
}

// Generate produces a new challenge for userID. Empty topic/difficulty fall
// back to "general"/"medium". On success the challenge row and a Generated
// attempt row are committed atomically; an oracle failure reaches the store
// not at all, and a store failure rolls both inserts back.
func (s *ChallengeService) Generate(ctx context.Context, userID, topic, difficulty string) (*domain.Challenge, error) {
	tr := otel.Tracer("services/ChallengeService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("challenge.topic", topic),
			attribute.String("challenge.difficulty", difficulty),
		),
	)
	defer span.End()

	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultTopic
	}
	difficulty = strings.TrimSpace(difficulty)
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	userPrompt := "Generate a " + difficulty + " coding challenge about " + topic + ". " +
		"Start with a line of the form \"Title: <short title>\", then the full " +
		"problem description, then an \"Examples:\" section with sample input and output."

	text, err := s.Oracle.Complete(ctx, generateSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	title := extractTitle(text)
	challenge := &domain.Challenge{
		ID:    uuid.NewString(),
		Title: title,
		// The whole reply, examples included, is the canonical description
		// later embedded in validation prompts.
		Description: text,
		Topic:       ptr(titleCase(topic)),
		Difficulty:  ptr(strings.ToLower(difficulty)),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateChallenge(ctx, tx, challenge); err != nil {
			return err
		}
		_, err := repo.CreateAttempt(ctx, tx, userID, challenge.ID, domain.StatusGenerated)
		return err
	})
	if err != nil {
		return nil, err
	}
	return challenge, nil
}

// History returns a page of the user's attempt history joined with challenge
// tags, most recent transition first, plus the total count for pagination.
func (s *ChallengeService) History(ctx context.Context, userID string, page, pageSize int) ([]domain.HistoryEntry, int64, error) {
	tr := otel.Tracer("services/ChallengeService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountUserHistory(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.HistoryEntry{}, 0, nil
	}

	items, err := repo.ListUserHistory(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// extractTitle scans the reply for the first line carrying a "Title:" marker
// and returns its remainder. Markdown emphasis around the marker is
// tolerated. When no marker exists, the placeholder title is returned.
func extractTitle(text string) string {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.Trim(line, "#* ")
		if len(line) < len("title:") {
			continue
		}
		if strings.EqualFold(line[:len("title:")], "title:") {
			if t := strings.Trim(strings.TrimSpace(line[len("title:"):]), "* "); t != "" {
				return clipTitle(t)
			}
		}
	}
	return placeholderTitle
}

// clipTitle bounds a title to the column width of challenges.title.
func clipTitle(t string) string {
	const max = 255
	if len(t) > max {
		return t[:max]
	}
	return t
}

var topicCaser = cases.Title(language.English)

// titleCase renders a topic tag in display casing ("dynamic programming" →
// "Dynamic Programming").
func titleCase(s string) string {
	return topicCaser.String(strings.ToLower(s))
}

func ptr(s string) *string { return &s }
