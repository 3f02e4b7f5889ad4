package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/cleberrangel/diane-api/internal/cache"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenHeader is the header name for CSRF token
	CSRFTokenHeader = "X-CSRF-Token"
	// CSRFCookieName is the cookie name for CSRF token
	CSRFCookieName = "csrf_token"
	// CSRFTokenLength is the length of the CSRF token in bytes
	CSRFTokenLength = 32
)

// CSRFConfig contains configuration for CSRF protection
type CSRFConfig struct {
	TokenDuration time.Duration // How long tokens are valid
	CookieDomain  string        // Cookie domain
	CookieSecure  bool          // Secure cookie flag
	CookiePath    string        // Cookie path
}

// CSRFMiddleware protects cookie-authenticated sessions. Requests carrying
// an Authorization header are not exposed to cross-site forgery and skip it.
type CSRFMiddleware struct {
	config CSRFConfig
	tokens *cache.Cache[string] // session id -> token
}

// NewCSRFMiddleware creates a new CSRF middleware
func NewCSRFMiddleware(config CSRFConfig) *CSRFMiddleware {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour
	}
	if config.CookiePath == "" {
		config.CookiePath = "/"
	}

	return &CSRFMiddleware{
		config: config,
		tokens: cache.New[string](config.TokenDuration, time.Hour),
	}
}

// GenerateToken generates a new CSRF token for a session
func (m *CSRFMiddleware) GenerateToken(sessionID string) (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(bytes)

	m.tokens.Set(sessionID, token)
	return token, nil
}

// ValidateToken validates a CSRF token for a session
func (m *CSRFMiddleware) ValidateToken(sessionID, token string) bool {
	expected, ok := m.tokens.Get(sessionID)
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// DeleteToken removes a CSRF token for a session
func (m *CSRFMiddleware) DeleteToken(sessionID string) {
	m.tokens.Delete(sessionID)
}

// Stop stops the expired token sweeper
func (m *CSRFMiddleware) Stop() {
	m.tokens.Stop()
}

// SetTokenCookie sets the CSRF token as a cookie
func (m *CSRFMiddleware) SetTokenCookie(c *gin.Context, token string) {
	c.SetCookie(
		CSRFCookieName,
		token,
		int(m.config.TokenDuration.Seconds()),
		m.config.CookiePath,
		m.config.CookieDomain,
		m.config.CookieSecure,
		false, // Not HTTPOnly - JavaScript needs to read it
	)
}

// ClearTokenCookie clears the CSRF token cookie
func (m *CSRFMiddleware) ClearTokenCookie(c *gin.Context) {
	c.SetCookie(
		CSRFCookieName,
		"",
		-1,
		m.config.CookiePath,
		m.config.CookieDomain,
		m.config.CookieSecure,
		false,
	)
}

// RequireCSRF validates CSRF tokens for state-changing requests authenticated
// by cookie. It must run after RequireSession.
func (m *CSRFMiddleware) RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}

		session := CurrentSession(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Success: false,
				Error:   "Not authenticated",
				Code:    "SESSION_NOT_FOUND",
			})
			return
		}

		token := c.GetHeader(CSRFTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{
				Success: false,
				Error:   "Missing CSRF token",
				Code:    "CSRF_TOKEN_MISSING",
			})
			return
		}

		if !m.ValidateToken(session.ID, token) {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{
				Success: false,
				Error:   "Invalid or expired CSRF token",
				Code:    "CSRF_TOKEN_INVALID",
			})
			return
		}

		c.Next()
	}
}
