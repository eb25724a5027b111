package services

import (
	"strings"

	"github.com/kpolkampally/go-challenge-backend/internal/domain"
)

// classifyVerdict maps the oracle's free-text judgment onto a status. The
// classifier is deliberately blunt (substring matching) but isolated here so
// it can be swapped for a structured oracle response format without touching
// any caller.
//
// "incorrect"/"not correct" are checked first: both contain the substring
// "correct" and would otherwise read as a pass.
func classifyVerdict(feedback string) domain.AttemptStatus {
	lower := strings.ToLower(feedback)
	if strings.Contains(lower, "incorrect") || strings.Contains(lower, "not correct") {
		return domain.StatusFailed
	}
	if strings.Contains(lower, "correct") {
		return domain.StatusSolved
	}
	return domain.StatusFailed
}
