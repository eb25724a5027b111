// Package handlers defines HTTP-layer error codes used across all API
// endpoints. These constants give clients a stable, machine-readable error
// taxonomy alongside the HTTP status; handlers pick the most specific match
// and pass it to fail().
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeGenerateFailed   = "generate_failed"
	ErrCodeSubmitFailed     = "submit_failed"
	ErrCodeRecommendFailed  = "recommend_failed"
	ErrCodeSelectFailed     = "select_failed"
	ErrCodeHistoryFailed    = "history_failed"
	ErrCodeRegisterFailed   = "register_failed"
	ErrCodeLoginFailed      = "login_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
