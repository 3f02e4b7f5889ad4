package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
)

var (
	ErrUserNotFound  = errors.New("usuário não encontrado")
	ErrInvalidEmail  = errors.New("email inválido")
	ErrNotAuthorized = errors.New("sessão inválida")
)

// UserStore é o acesso a usuários usado pela autenticação
type UserStore interface {
	GetOrCreate(ctx context.Context, email, firstName string) (*model.User, bool, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// AuthResult é o resultado de login e signup
type AuthResult struct {
	Token     string
	CSRFToken string
	Session   *middleware.Session
	User      *model.User
	Created   bool
}

// AuthService handles authentication business logic
type AuthService struct {
	users    UserStore
	sessions *middleware.SessionStore
	csrf     *middleware.CSRFMiddleware
}

// NewAuthService creates a new authentication service
func NewAuthService(users UserStore, sessions *middleware.SessionStore, csrf *middleware.CSRFMiddleware) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		csrf:     csrf,
	}
}

// Sessions returns the session store
func (s *AuthService) Sessions() *middleware.SessionStore {
	return s.sessions
}

// CSRF returns the CSRF middleware
func (s *AuthService) CSRF() *middleware.CSRFMiddleware {
	return s.csrf
}

// Login gets or creates the user by email and opens a session
func (s *AuthService) Login(ctx context.Context, email string) (*AuthResult, error) {
	result, err := s.open(ctx, email, "")
	metrics.Get().IncrementLogin(err == nil)

	if err != nil {
		logger.Audit(ctx, logger.AuditEvent{
			Action:   logger.AuditActionLoginFailed,
			Email:    middleware.SanitizeEmail(email),
			Resource: "session",
			Success:  false,
			Error:    err.Error(),
		})
		return nil, err
	}

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionLogin,
		UserID:     result.Session.UserKey(),
		Email:      result.User.Email,
		Resource:   "session",
		ResourceID: result.Session.ID,
		Success:    true,
		Details:    map[string]interface{}{"user_created": result.Created},
	})
	return result, nil
}

// Signup creates the user with a first name and opens a session. An existing
// user keeps its stored name.
func (s *AuthService) Signup(ctx context.Context, email, firstName string) (*AuthResult, error) {
	result, err := s.open(ctx, email, middleware.SanitizeName(firstName))
	if err != nil {
		return nil, err
	}

	if result.Created {
		metrics.Get().IncrementSignup()
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionSignup,
		UserID:     result.Session.UserKey(),
		Email:      result.User.Email,
		Resource:   "session",
		ResourceID: result.Session.ID,
		Success:    true,
		Details:    map[string]interface{}{"user_created": result.Created},
	})
	return result, nil
}

func (s *AuthService) open(ctx context.Context, email, firstName string) (*AuthResult, error) {
	email = middleware.SanitizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, created, err := s.users.GetOrCreate(ctx, email, firstName)
	if err != nil {
		return nil, err
	}

	token, session, err := s.sessions.Create(*user)
	if err != nil {
		return nil, fmt.Errorf("criar sessão: %w", err)
	}

	result := &AuthResult{Token: token, Session: session, User: user, Created: created}
	if s.csrf != nil {
		if result.CSRFToken, err = s.csrf.GenerateToken(session.ID); err != nil {
			return nil, fmt.Errorf("gerar token csrf: %w", err)
		}
	}

	logger.Get(ctx).Info().
		Int("user_id", user.ID).
		Bool("user_created", created).
		Msg("Sessão criada")
	return result, nil
}

// Logout destroys the session of token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) {
	session, ok := s.sessions.Delete(token)
	if !ok {
		return
	}
	if s.csrf != nil {
		s.csrf.DeleteToken(session.ID)
	}
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionLogout,
		UserID:     session.UserKey(),
		Email:      session.Email,
		Resource:   "session",
		ResourceID: session.ID,
		Success:    true,
	})
}

// Me returns the user of a session
func (s *AuthService) Me(ctx context.Context, session *middleware.Session) (*model.User, error) {
	if session == nil {
		return nil, ErrNotAuthorized
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// validEmail faz uma checagem mínima; o formato completo é validado no binding
func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}
