// Account HTTP handlers.
//
// This file exposes the public (unauthenticated) endpoints:
//   - POST /api/register
//   - POST /api/login
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpolkampally/go-challenge-backend/internal/services"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=1"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the JSON payload for obtaining an access token.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token for subsequent requests.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Register handles POST /api/register.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username, email and password are required")
		return
	}

	_, err := h.authSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeRegisterFailed, "could not register user")
	default:
		ok(c, http.StatusOK, RegisterResponse{Message: "User registered successfully"})
	}
}

// Login handles POST /api/login.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	token, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeLoginFailed, "could not log in")
	default:
		ok(c, http.StatusOK, LoginResponse{AccessToken: token})
	}
}
