// Challenge HTTP handlers.
//
// This file exposes the authenticated challenge endpoints:
//   - POST /api/generate-challenge   (generate and persist a new challenge)
//   - POST /api/submit-solution      (validate a solution for an issued challenge)
//   - GET  /api/user-history         (paginated attempt history)
//
// Oracle failures surface as 500s with a domain-specific code; transient
// ones additionally advertise client-side retriability via Retry-After.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/services"
	"github.com/kpolkampally/go-challenge-backend/internal/utils"
)

//
// DTOs
//

// GenerateChallengeRequest is the JSON payload for generating a challenge.
// Both fields are optional; blank values fall back to service defaults.
type GenerateChallengeRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// GenerateChallengeResponse carries the persisted challenge.
type GenerateChallengeResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SubmitSolutionRequest is the JSON payload for validating a solution. The
// submitting user is taken from the verified token, never from the body.
type SubmitSolutionRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Solution    string `json:"solution"     binding:"required"`
	Language    string `json:"language"     binding:"required"`
}

// HistoryResponse contains a page of attempt history plus pagination
// metadata.
type HistoryResponse struct {
	History    []domain.HistoryEntry `json:"history"`
	Pagination Pagination            `json:"pagination"`
}

// Pagination is the standard page metadata envelope.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// clampPagination parses page/page_size query parameters with sane defaults
// and caps.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// oracleFail writes the 500 response for a failed oracle call, marking
// transient failures as retriable.
func oracleFail(c *gin.Context, code string, err error) {
	if oracle.IsTransient(err) {
		c.Header("Retry-After", "5")
	}
	fail(c, http.StatusInternalServerError, code, "the challenge oracle is unavailable")
}

//
// Handlers
//

// GenerateChallenge handles POST /api/generate-challenge.
func (h *Handlers) GenerateChallenge(c *gin.Context) {
	var req GenerateChallengeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
			return
		}
	}

	challenge, err := h.chalSvc.Generate(c.Request.Context(), userID(c), req.Topic, req.Difficulty)
	switch {
	case oracle.IsOracle(err):
		oracleFail(c, ErrCodeGenerateFailed, err)
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeGenerateFailed, "could not generate challenge")
	default:
		ok(c, http.StatusOK, GenerateChallengeResponse{
			ID:          challenge.ID,
			Title:       challenge.Title,
			Description: challenge.Description,
		})
	}
}

// SubmitSolution handles POST /api/submit-solution.
func (h *Handlers) SubmitSolution(c *gin.Context) {
	var req SubmitSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "challenge_id, solution and language are required")
		return
	}

	verdict, err := h.subSvc.Submit(c.Request.Context(), userID(c), req.ChallengeID, req.Solution, req.Language)
	switch {
	case errors.Is(err, services.ErrChallengeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrEmptySolution):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case oracle.IsOracle(err):
		oracleFail(c, ErrCodeSubmitFailed, err)
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, "could not validate solution")
	default:
		ok(c, http.StatusOK, verdict)
	}
}

// UserHistory handles GET /api/user-history.
func (h *Handlers) UserHistory(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.chalSvc.History(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeHistoryFailed, "could not load history")
		return
	}
	ok(c, http.StatusOK, HistoryResponse{
		History:    items,
		Pagination: Pagination{Page: page, PageSize: pageSize, Total: total},
	})
}
