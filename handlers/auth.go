package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/auth"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

// AuthHandler handles admin authentication requests
type AuthHandler struct {
	users      storage.UserStore
	jwtService *auth.JWTService
	googleAuth *auth.GoogleAuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users storage.UserStore,
	jwtService *auth.JWTService,
	googleAuth *auth.GoogleAuthService,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		googleAuth: googleAuth,
	}
}

// Login handles admin login with email/password
// @Summary Login admin
// @Description Login with email and password to get JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Printf("[AuthHandler] Failed to load user: %v", err)
		}
		abortJSON(c, http.StatusUnauthorized, "Invalid email or password", "")
		return
	}

	if user.Provider == "google" && user.Password == "" {
		abortJSON(c, http.StatusUnauthorized, "This account uses Google Sign-In. Please login with Google.", "")
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		abortJSON(c, http.StatusUnauthorized, "Invalid email or password", "")
		return
	}

	h.issueToken(c, user)
}

// GoogleLogin handles Google SSO authentication
// @Summary Login with Google
// @Description Only Google accounts whose email belongs to an existing admin are accepted
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.GoogleAuthRequest true "Google auth request"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid Google token"
// @Failure 403 {object} models.ErrorResponse "Not an admin"
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	googleUser, err := h.googleAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		log.Printf("[AuthHandler] Failed to verify Google token: %v", err)
		abortJSON(c, http.StatusUnauthorized, "Invalid Google token", err.Error())
		return
	}

	user, err := h.users.GetUserByGoogleID(ctx, googleUser.GoogleID)
	if err != nil {
		user, err = h.users.GetUserByEmail(ctx, googleUser.Email)
	}
	if err != nil || user.Role != models.RoleAdmin {
		log.WithField("email", googleUser.Email).Warn("[AuthHandler] Google login rejected")
		abortJSON(c, http.StatusForbidden, "This Google account is not an admin", "")
		return
	}

	if user.GoogleID == "" {
		if err := h.users.UpdateUser(ctx, user.Email, map[string]interface{}{
			"googleId": googleUser.GoogleID,
		}); err != nil {
			log.Printf("[AuthHandler] Failed to link Google account: %v", err)
		}
		user.GoogleID = googleUser.GoogleID
	}

	h.issueToken(c, user)
}

// GetProfile returns the current admin
// @Summary Current admin
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProfileResponse "Admin profile"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /auth/me [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	claims := auth.GetAuthClaims(c)
	if claims == nil {
		abortJSON(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), claims.Email)
	if err != nil {
		abortJSON(c, http.StatusNotFound, "User not found", "")
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{User: user})
}

// Refresh exchanges a valid token for one with a fresh expiry
// @Summary Refresh token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		abortJSON(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	fresh, err := h.jwtService.RefreshToken(token)
	if err != nil {
		abortJSON(c, http.StatusUnauthorized, "Invalid or expired token", err.Error())
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Token: fresh, Message: "Token refreshed"})
}

func (h *AuthHandler) issueToken(c *gin.Context, user *models.User) {
	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		log.Printf("[AuthHandler] Failed to generate token: %v", err)
		abortJSON(c, http.StatusInternalServerError, "Failed to generate token", "")
		return
	}

	now := time.Now()
	if err := h.users.UpdateUser(c.Request.Context(), user.Email, map[string]interface{}{"lastLogin": now}); err != nil {
		log.Printf("[AuthHandler] Failed to record login: %v", err)
	}
	user.LastLogin = now

	log.Printf("[AuthHandler] Admin logged in: %s", user.Email)
	c.JSON(http.StatusOK, models.AuthResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

func bearer(c *gin.Context) (string, bool) {
	const prefix = "Bearer "
	h := c.GetHeader("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return h[len(prefix):], true
}
