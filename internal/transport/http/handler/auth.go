package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lyrnios-backend/internal/app"
	"lyrnios-backend/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	frontendURL string
	log         *zap.Logger
}

func NewAuthHandler(authService *app.AuthService, frontendURL string, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	loginURL, err := h.authService.LoginURL(c.Param("provider"))
	if err != nil {
		respondError(c, err, "start login failed")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, loginURL)
}

// Callback always ends in a redirect to the frontend, carrying either the
// issued token or an error marker.
func (h *AuthHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")
	if providerErr := c.Query("error"); providerErr != "" {
		h.log.Warn("oauth provider returned error", zap.String("provider", provider), zap.String("error", providerErr))
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=auth_failed")
		return
	}

	result, err := h.authService.HandleCallback(c.Request.Context(), provider, c.Query("state"), c.Query("code"))
	if err != nil {
		fields := []zap.Field{zap.String("provider", provider), zap.Error(err)}
		if errors.Is(err, app.ErrInvalidState) || errors.Is(err, app.ErrUnsupportedProvider) {
			h.log.Warn("oauth callback rejected", fields...)
		} else {
			h.log.Error("oauth callback failed", fields...)
		}
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=auth_failed")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback?token="+url.QueryEscape(result.Token))
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "fetch current user failed")
		return
	}
	if user == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
		return
	}

	response.OK(c, user)
}

// Logout only acknowledges; tokens are stateless and dropped by the client.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, gin.H{"message": "logged out"})
}
