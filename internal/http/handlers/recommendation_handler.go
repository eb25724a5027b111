// Recommendation HTTP handlers.
//
//   - GET  /api/recommend-challenges           (personalized candidates)
//   - POST /api/select-recommended-challenge   (materialize a candidate)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/services"
)

// RecommendationsResponse carries the candidate list. Candidates are
// ephemeral until one is selected.
type RecommendationsResponse struct {
	Recommendations []services.Recommendation `json:"recommendations"`
}

// SelectRecommendedRequest names the candidate to materialize.
type SelectRecommendedRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
}

// SelectRecommendedResponse confirms the selection and echoes the durable
// challenge row.
type SelectRecommendedResponse struct {
	Message   string              `json:"message"`
	Challenge SelectedChallengeTO `json:"challenge"`
}

// SelectedChallengeTO is the challenge projection returned on selection.
type SelectedChallengeTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RecommendChallenges handles GET /api/recommend-challenges.
func (h *Handlers) RecommendChallenges(c *gin.Context) {
	recs, err := h.recSvc.Recommend(c.Request.Context(), userID(c))
	switch {
	case errors.Is(err, services.ErrRecommendationParse):
		fail(c, http.StatusInternalServerError, ErrCodeRecommendFailed, "could not build recommendations")
	case oracle.IsOracle(err):
		oracleFail(c, ErrCodeRecommendFailed, err)
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeRecommendFailed, "could not build recommendations")
	default:
		ok(c, http.StatusOK, RecommendationsResponse{Recommendations: recs})
	}
}

// SelectRecommended handles POST /api/select-recommended-challenge.
func (h *Handlers) SelectRecommended(c *gin.Context) {
	var req SelectRecommendedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "challenge_id is required")
		return
	}

	challenge, err := h.recSvc.Select(c.Request.Context(), userID(c), req.ChallengeID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSelectFailed, "could not select challenge")
		return
	}
	ok(c, http.StatusOK, SelectRecommendedResponse{
		Message: "Challenge selected successfully",
		Challenge: SelectedChallengeTO{
			ID:          challenge.ID,
			Title:       challenge.Title,
			Description: challenge.Description,
		},
	})
}
