package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpptutor/cpptutor-backend/internal/middleware"
	"github.com/cpptutor/cpptutor-backend/internal/model"
	"github.com/cpptutor/cpptutor-backend/internal/repository"
	"github.com/cpptutor/cpptutor-backend/internal/response"
	"github.com/cpptutor/cpptutor-backend/internal/service"
	"github.com/cpptutor/cpptutor-backend/internal/validator"
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// ShowRegister godoc
// GET /register
// Returns the registration form descriptor.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"page":   "register",
		"fields": []string{"username", "email", "password"},
	})
}

// Register godoc
// POST /register
// Creates an account. Duplicate username or email is a conflict.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			response.Fail(c, http.StatusConflict, response.ErrDuplicateUser)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Registration successful! Please login.",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// ShowLogin godoc
// GET /login
// Returns the login form descriptor.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"page":   "login",
		"fields": []string{"username", "password", "remember"},
	})
}

// Login godoc
// POST /login
// Validates credentials, registers the session, and sets the session
// cookie. Unknown username and wrong password both yield the same
// INVALID_CREDENTIALS code; the hash comparison runs in both paths so
// the timing surface stays within what bcrypt itself permits.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		// Burn a bcrypt comparison on a dummy hash so a missing user is
		// not cheaper than a wrong password.
		_ = h.authService.CheckPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0q1z1z1z1z1z1z1z1z1z1z1z1zq", req.Password)
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	ttl := h.authService.SessionTTL(req.Remember != "")

	token, jti, err := h.authService.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if err := h.authService.RegisterSession(c.Request.Context(), user.ID, jti, ttl); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.SetCookie(middleware.SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout godoc
// GET /logout
// Clears the Redis session and the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetSession(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)

	if acceptsHTML(c) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
