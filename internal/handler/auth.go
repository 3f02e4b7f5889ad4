package handler

import (
	"net/http"

	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// sessionResponse is returned by login and signup
type sessionResponse struct {
	model.SessionResponse
	CSRFToken string `json:"csrf_token,omitempty"`
	Created   bool   `json:"created"`
}

// Login handles email-only login. Unknown emails create the user.
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, result)
}

// Signup creates the user with a first name. An existing user just logs in.
// @Summary      Signup
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.SignupRequest true "Signup"
// @Success      201 {object} model.Response
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req.Email, req.FirstName)
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, result)
}

func (h *AuthHandler) startSession(c *gin.Context, result *service.AuthResult) {
	h.authService.Sessions().SetCookie(c, result.Token)
	if result.CSRFToken != "" {
		h.authService.CSRF().SetTokenCookie(c, result.CSRFToken)
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondOK(c, status, sessionResponse{
		SessionResponse: model.SessionResponse{
			Token:     result.Token,
			ExpiresAt: result.Session.ExpiresAt,
			User:      *result.User,
		},
		CSRFToken: result.CSRFToken,
		Created:   result.Created,
	})
}

// Logout destroys the current session and its capture form
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200 {object} model.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessions := h.authService.Sessions()
	if token := sessions.TokenFromRequest(c); token != "" {
		h.authService.Logout(c.Request.Context(), token)
	}

	sessions.ClearCookie(c)
	if h.authService.CSRF() != nil {
		h.authService.CSRF().ClearTokenCookie(c)
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "Logged out",
	})
}

// Me returns the current user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} model.Response
// @Failure      401 {object} model.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}
