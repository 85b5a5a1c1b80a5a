package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

type stubResolver map[string]*models.User

func (s stubResolver) Resolve(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s[email]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	// в базе роль уже повышена, в токене ещё старая
	stored := &models.User{ID: 3, Email: "rev@cfp.io", Roles: []string{models.RoleReviewer}}
	users := stubResolver{stored.Email: stored}

	r := newEngine()
	r.GET("/me", AuthMiddleware(tokens, users), RequireRole(models.RoleReviewer), func(c *gin.Context) {
		u := c.MustGet(ContextUserKey).(*models.User)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "claimsId": c.GetInt(ContextUserIDKey)})
	})

	pair, _, err := tokens.GeneratePair(&models.User{ID: 3, Email: "rev@cfp.io", Roles: []string{models.RoleAuthenticated}})
	require.NoError(t, err)
	ghost, _, err := tokens.GeneratePair(&models.User{ID: 9, Email: "ghost@cfp.io"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"refresh token as access", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"deleted user", "Bearer " + ghost.AccessToken, http.StatusNotFound},
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newEngine()
	user := &models.User{ID: 1, Roles: []string{models.RoleReviewer}}
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User") != "" {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	})
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/review", RequireRole(models.RoleReviewer), ok)
	r.GET("/admin", RequireRole(models.RoleAdmin), ok)

	req := httptest.NewRequest(http.MethodGet, "/review", nil)
	req.Header.Set("X-Test-User", "1")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Test-User", "1")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestIDValidator(t *testing.T) {
	r := newEngine()
	r.GET("/proposals/:id/comments/:commentId", IDValidator("id", "commentId"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for path, status := range map[string]int{
		"/proposals/7/comments/11":  http.StatusOK,
		"/proposals/abc/comments/1": http.StatusBadRequest,
		"/proposals/7/comments/-1":  http.StatusBadRequest,
		"/proposals/0/comments/1":   http.StatusBadRequest,
	} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}

func TestEventResolver(t *testing.T) {
	r := newEngine()
	r.GET("/", EventResolver("devfest"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextEventKey))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "devfest", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EventHeader, " SnowCamp ")
	w = serve(r, req)
	assert.Equal(t, "snowcamp", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EventHeader, "../etc")
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocaleResolver(t *testing.T) {
	r := newEngine()
	r.GET("/", LocaleResolver("fr"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextLocaleKey))
	})

	tests := map[string]string{
		"":                         "fr",
		"en-US,en;q=0.9":           "en",
		"fr-CA":                    "fr",
		"de-DE":                    "fr",
		"de;q=0.9,en;q=0.8":        "en",
		"not a valid ;; header ===": "fr",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Accept-Language", header)
		}
		assert.Equal(t, want, serve(r, req).Body.String(), header)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine()
	r.POST("/login", RateLimitMiddleware("test_login", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestErrorHandler_MasksInternalErrors(t *testing.T) {
	r := newEngine()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(apperror.Wrap(assert.AnError, apperror.ErrCodeDatabaseError, "ошибка базы данных"))
	})
	r.GET("/gone", func(c *gin.Context) {
		_ = c.Error(apperror.ErrCFPClosed)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/gone", nil))
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "GONE")
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine()
	r.Use(CORSMiddleware([]string{"https://cfp.example.org"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://cfp.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cfp.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
