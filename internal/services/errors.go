// Package services defines the business logic for challenge generation,
// solution validation, recommendation, and account management. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; the
// translation into user-facing messages and HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrChallengeNotFound indicates that the requested challenge does not
	// exist or was never issued to the current user. Submission lookups key
	// on the (challenge, user) pair, so this also covers the case where the
	// challenge exists but belongs to someone else's history.
	ErrChallengeNotFound = errors.New("challenge not found or not associated with this user")

	// ErrEmptySolution is returned when a submission carries no solution text.
	ErrEmptySolution = errors.New("solution is empty")

	// ErrRecommendationParse is returned when the oracle's recommendation
	// reply is not the expected JSON structure. The request fails closed;
	// garbage is never substituted for data.
	ErrRecommendationParse = errors.New("could not parse recommendations from oracle reply")

	// ErrInvalidCredentials is returned on login when the username is
	// unknown or the password does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken is returned on registration when the username is
	// already in use.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned on registration when the email is already
	// in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrMissingFields is returned when a registration request omits a
	// required field.
	ErrMissingFields = errors.New("username, email and password are required")
)
