// Service contracts and handler wiring.
//
// Handlers are transport-thin: they validate input, read the verified user
// id from the Gin context (set by the auth middleware, never taken from the
// request body), call application services, and translate results into HTTP
// responses. The service dependencies are interfaces so tests can install
// stubs.
package handlers

import (
	"context"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/http/middleware"
	"github.com/kpolkampally/go-challenge-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthService defines account operations consumed by HTTP handlers.
type AuthService interface {
	// Register creates a new account.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// Login verifies credentials and returns a signed access token.
	Login(ctx context.Context, username, password string) (string, error)
}

// ChallengeService defines challenge generation and history operations.
//
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation and timeouts.
type ChallengeService interface {
	// Generate produces and persists a new challenge for the user.
	Generate(ctx context.Context, userID, topic, difficulty string) (*domain.Challenge, error)
	// History returns a page of the user's attempt history and the total count.
	History(ctx context.Context, userID string, page, pageSize int) ([]domain.HistoryEntry, int64, error)
}

// SubmissionService defines solution validation.
type SubmissionService interface {
	// Submit judges a solution against a previously issued challenge.
	Submit(ctx context.Context, userID, challengeID, solution, language string) (*services.Verdict, error)
}

// RecommendationService defines recommendation building and materialization.
type RecommendationService interface {
	// Recommend returns ephemeral challenge candidates for the user.
	Recommend(ctx context.Context, userID string) ([]services.Recommendation, error)
	// Select reconciles a candidate into durable challenge + attempt rows.
	Select(ctx context.Context, userID, challengeID string) (*domain.Challenge, error)
}

// Handlers groups the HTTP endpoints for accounts, challenges, submissions,
// and recommendations.
type Handlers struct {
	authSvc AuthService
	chalSvc ChallengeService
	subSvc  SubmissionService
	recSvc  RecommendationService
}

// New constructs a Handlers instance bound to the given services.
func New(authSvc AuthService, chalSvc ChallengeService, subSvc SubmissionService, recSvc RecommendationService) *Handlers {
	return &Handlers{authSvc: authSvc, chalSvc: chalSvc, subSvc: subSvc, recSvc: recSvc}
}

// userID extracts the authenticated user id placed in the Gin context by the
// auth middleware.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}
