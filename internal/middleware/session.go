package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/cache"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const sessionContextKey = "session"

// Session represents a logged-in user
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserKey is the user id as carried by loggers and capture forms
func (s *Session) UserKey() string {
	return strconv.Itoa(s.UserID)
}

// SessionConfig contains configuration for session handling
type SessionConfig struct {
	SessionDuration time.Duration // session duration
	CookieName      string        // session cookie name
	CookieDomain    string        // cookie domain
	CookieSecure    bool          // secure cookie flag
	CookieHTTPOnly  bool          // httponly cookie flag
	CleanupInterval time.Duration // expired session sweep interval
}

// SessionStore keeps sessions in memory. Tokens are never stored: entries are
// keyed by the blake2b digest of the token.
type SessionStore struct {
	config   SessionConfig
	sessions *cache.Cache[*Session]
	onEnd    func(*Session)
}

// NewSessionStore creates a new session store
func NewSessionStore(config SessionConfig) *SessionStore {
	if config.SessionDuration == 0 {
		config.SessionDuration = 24 * time.Hour
	}
	if config.CookieName == "" {
		config.CookieName = "session_id"
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Hour
	}

	s := &SessionStore{
		config:   config,
		sessions: cache.New[*Session](config.SessionDuration, config.CleanupInterval),
	}
	s.sessions.OnEvict(func(_ string, session *Session) {
		s.ended(session)
	})
	return s
}

// OnEnd registers fn to be called when a session is deleted or expires
func (s *SessionStore) OnEnd(fn func(*Session)) {
	s.onEnd = fn
}

func (s *SessionStore) ended(session *Session) {
	if s.onEnd != nil && session != nil {
		s.onEnd(session)
	}
}

// Config returns the store configuration
func (s *SessionStore) Config() SessionConfig {
	return s.config
}

// digest hashes a token into its storage key
func digest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// generateToken generates a secure random session token
func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Create creates a new session for the user and returns its token
func (s *SessionStore) Create(user model.User) (string, *Session, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionDuration),
	}

	s.sessions.Set(digest(token), session)
	return token, session, nil
}

// Get retrieves a live session by token
func (s *SessionStore) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	session, ok := s.sessions.Get(digest(token))
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, false
	}
	return session, true
}

// Delete removes a session and reports whether it existed
func (s *SessionStore) Delete(token string) (*Session, bool) {
	session, ok := s.sessions.Delete(digest(token))
	if ok {
		s.ended(session)
	}
	return session, ok
}

// Count returns the number of stored sessions
func (s *SessionStore) Count() int {
	return s.sessions.Size()
}

// Stop stops the expired session sweeper
func (s *SessionStore) Stop() {
	s.sessions.Stop()
}

// TokenFromRequest extracts the session token from the Authorization header,
// the session cookie or, for websocket upgrades, the token query parameter.
func (s *SessionStore) TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(s.config.CookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// RequireSession middleware that requires a valid session
func (s *SessionStore) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Success: false,
				Error:   "Not authenticated",
				Code:    "SESSION_NOT_FOUND",
			})
			return
		}

		session, valid := s.Get(token)
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Success: false,
				Error:   "Session invalid or expired",
				Code:    "SESSION_INVALID",
			})
			return
		}

		c.Set(sessionContextKey, session)
		c.Set("user_id", session.UserKey())
		c.Set("email", session.Email)

		ctx := logger.WithUserInfo(c.Request.Context(), session.UserKey(), session.Email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// SetCookie writes the session cookie
func (s *SessionStore) SetCookie(c *gin.Context, token string) {
	c.SetCookie(
		s.config.CookieName,
		token,
		int(s.config.SessionDuration.Seconds()),
		"/",
		s.config.CookieDomain,
		s.config.CookieSecure,
		s.config.CookieHTTPOnly,
	)
}

// ClearCookie expires the session cookie
func (s *SessionStore) ClearCookie(c *gin.Context) {
	c.SetCookie(
		s.config.CookieName,
		"",
		-1,
		"/",
		s.config.CookieDomain,
		s.config.CookieSecure,
		s.config.CookieHTTPOnly,
	)
}

// CurrentSession returns the session set by RequireSession, or nil
func CurrentSession(c *gin.Context) *Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := v.(*Session)
	return session
}
