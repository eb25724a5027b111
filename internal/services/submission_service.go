// Package services – SubmissionService
//
// This file implements SubmissionService, which validates a user's solution
// against a previously issued challenge. The lookup keys on the
// (challenge, user) pair: a user can only submit against a challenge that is
// part of their own history, so one user's attempt can never be read or
// overwritten through another's submission.
//
// The oracle is consulted after the lookup and before any write; an oracle
// failure therefore leaves the attempt untouched.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Verdict is the outcome of a solution validation.
type Verdict struct {
	// Feedback is the oracle's raw judgment text.
	Feedback string `json:"feedback"`
	// Status is Solved or Failed.
	Status domain.AttemptStatus `json:"status"`
}

// SubmissionService judges submitted solutions and records the outcome.
type SubmissionService struct {
	DB     *gorm.DB
	Oracle oracle.Client
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(db *gorm.DB, oc oracle.Client) *SubmissionService {
	return &SubmissionService{DB: db, Oracle: oc}
}

// Submit validates a solution for challengeID on behalf of userID.
//
// Semantics:
//   - The (challengeID, userID) attempt pair must exist; otherwise
//     ErrChallengeNotFound. This is the access-control check: a user cannot
//     validate against a challenge they were never issued.
//   - The stored challenge description, the language tag, and the solution
//     text travel to the oracle verbatim.
//   - The verdict is classified by classifyVerdict and written back as a
//     status transition on the existing attempt row (update only, never an
//     insert).
//   - An oracle failure surfaces to the caller with no status change.
func (s *SubmissionService) Submit(ctx context.Context, userID, challengeID, solution, lang string) (*Verdict, error) {
	tr := otel.Tracer("services/SubmissionService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("challenge.id", challengeID),
			attribute.String("submission.language", lang),
		),
	)
	defer span.End()

	solution = strings.TrimSpace(solution)
	if solution == "" {
		return nil, ErrEmptySolution
	}

	if _, err := repo.GetAttempt(ctx, s.DB, challengeID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	challenge, err := repo.GetChallenge(ctx, s.DB, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	system := "You are a solution validator for " + lang + " code."
	user := "Here is the challenge:\n" + challenge.Description +
		"\n\nHere is the user's solution in " + lang + ":\n" + solution +
		"\n\nDoes this solution solve the challenge correctly? Provide feedback."

	feedback, err := s.Oracle.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	status := classifyVerdict(feedback)
	if err := repo.UpdateAttemptStatus(ctx, s.DB, challengeID, userID, status, lang); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The pair existed moments ago; treat a vanished row as not found
			// rather than inventing one.
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("submission.status", string(status)))
	return &Verdict{Feedback: feedback, Status: status}, nil
}
