// Package services – AuthService
//
// This file implements AuthService: account registration with bcrypt
// password hashing and login with bearer-token issuance. Token format and
// verification live in internal/auth; this service only decides who gets
// one.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/auth"
	"github.com/kpolkampally/go-challenge-backend/internal/domain"
	"github.com/kpolkampally/go-challenge-backend/internal/repo"
)

// AuthService registers accounts and authenticates logins.
type AuthService struct {
	DB     *gorm.DB
	Tokens *auth.Manager
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, tokens *auth.Manager) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

// Register creates a new account. Usernames and emails are unique;
// collisions map to ErrUsernameTaken / ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := repo.CreateUser(ctx, s.DB, username, email, string(hash))
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed access token whose
// subject is the user id. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.Tokens.Issue(user.ID)
}
