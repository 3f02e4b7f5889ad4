package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestStore(t *testing.T, ttl time.Duration) *SessionStore {
	t.Helper()
	store := NewSessionStore(SessionConfig{SessionDuration: ttl, CookieName: "test_session"})
	t.Cleanup(store.Stop)
	return store
}

// Every created session is retrievable by its token, and only by its token.
func TestSessionStoreConsistency(t *testing.T) {
	store := newTestStore(t, time.Hour)
	properties := gopter.NewProperties(nil)

	properties.Property("session round trip", prop.ForAll(
		func(id int, local string) bool {
			user := model.User{ID: id, Email: local + "@example.com", FirstName: local}

			token, session, err := store.Create(user)
			if err != nil || token == "" {
				return false
			}

			got, ok := store.Get(token)
			if !ok || got != session {
				return false
			}
			if got.UserID != id || got.Email != user.Email {
				return false
			}
			if _, ok := store.Get(token + "x"); ok {
				return false
			}
			return !time.Now().After(got.ExpiresAt)
		},
		gen.IntRange(1, 1_000_000),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}

func TestSessionStoreNeverKeepsRawTokens(t *testing.T) {
	store := newTestStore(t, time.Hour)
	token, _, err := store.Create(model.User{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, ok := store.sessions.Get(token); ok {
		t.Error("raw token must not be a storage key")
	}
	if _, ok := store.sessions.Get(digest(token)); !ok {
		t.Error("session must be stored under the token digest")
	}
}

func TestSessionDeleteCallsOnEnd(t *testing.T) {
	store := newTestStore(t, time.Hour)
	var ended []*Session
	store.OnEnd(func(s *Session) { ended = append(ended, s) })

	token, session, _ := store.Create(model.User{ID: 7, Email: "b@example.com"})
	if _, ok := store.Delete(token); !ok {
		t.Fatal("expected session to exist")
	}
	if _, ok := store.Get(token); ok {
		t.Error("session should be gone after Delete")
	}
	if len(ended) != 1 || ended[0] != session {
		t.Errorf("OnEnd not called with the deleted session: %v", ended)
	}
	if _, ok := store.Delete(token); ok {
		t.Error("second Delete should report false")
	}
}

func TestSessionExpires(t *testing.T) {
	store := newTestStore(t, 10*time.Millisecond)
	token, _, _ := store.Create(model.User{ID: 1, Email: "c@example.com"})

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(token); ok {
		t.Error("expired session must not be returned")
	}
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, time.Hour)
	token, _, _ := store.Create(model.User{ID: 42, Email: "d@example.com", FirstName: "D"})

	router := gin.New()
	router.GET("/me", store.RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentSession(c).UserKey())
	})

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"lowercase bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "test_session", Value: token}) }, http.StatusOK},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=" + token }, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			if tc.status == http.StatusOK && w.Body.String() != "42" {
				t.Errorf("unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestRequireCSRF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, time.Hour)
	csrf := NewCSRFMiddleware(CSRFConfig{})
	t.Cleanup(csrf.Stop)

	token, session, _ := store.Create(model.User{ID: 1, Email: "e@example.com"})
	csrfToken, err := csrf.GenerateToken(session.ID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	router := gin.New()
	router.POST("/x", store.RequireSession(), csrf.RequireCSRF(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	send := func(setup func(r *http.Request)) int {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{}"))
		setup(req)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }); code != http.StatusNoContent {
		t.Errorf("bearer requests skip CSRF, got %d", code)
	}
	cookie := &http.Cookie{Name: "test_session", Value: token}
	if code := send(func(r *http.Request) { r.AddCookie(cookie) }); code != http.StatusForbidden {
		t.Errorf("cookie request without token should be 403, got %d", code)
	}
	if code := send(func(r *http.Request) {
		r.AddCookie(cookie)
		r.Header.Set(CSRFTokenHeader, csrfToken)
	}); code != http.StatusNoContent {
		t.Errorf("cookie request with token should pass, got %d", code)
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, Burst: 2})
	t.Cleanup(limiter.Stop)

	router := gin.New()
	router.GET("/x", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence: %v", codes)
	}

	if !limiter.Allow("10.0.0.2") {
		t.Error("other clients have their own bucket")
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Error("allowed origin not echoed")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
}

func TestSanitize(t *testing.T) {
	if got := SanitizeText("a\x00b\x07c\nd", DefaultSanitizeConfig()); got != "abc\nd" {
		t.Errorf("SanitizeText = %q", got)
	}
	if got := SanitizeText("ééé", SanitizeConfig{MaxRunes: 2}); got != "éé" {
		t.Errorf("truncation must be rune safe, got %q", got)
	}
	if got := SanitizeDescription("  buy\nmilk  "); got != "buymilk" {
		t.Errorf("SanitizeDescription = %q", got)
	}
	if got := SanitizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Errorf("SanitizeEmail = %q", got)
	}
	if got := SanitizeFilename("../../etc/tarefas de hoje.xlsx"); got != "tarefas_de_hoje.xlsx" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}
