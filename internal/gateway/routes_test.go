package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhive/notify/internal/gateway/middleware"
	"github.com/workhive/notify/internal/modules/auth/application"
	authdomain "github.com/workhive/notify/internal/modules/auth/domain"
	"github.com/workhive/notify/internal/modules/auth/infrastructure/jwt"
	auth_http "github.com/workhive/notify/internal/modules/auth/interfaces/http"
)

type authServiceStub struct{}

func (authServiceStub) Register(context.Context, application.RegisterRequest) (*authdomain.User, error) {
	return &authdomain.User{ID: uuid.New()}, nil
}
func (authServiceStub) Login(context.Context, application.LoginRequest) (string, error) {
	return "tok", nil
}
func (authServiceStub) GetUser(_ context.Context, id uuid.UUID) (*authdomain.User, error) {
	return &authdomain.User{ID: id}, nil
}

func testMux(t *testing.T, secret string) *http.ServeMux {
	t.Helper()
	return SetupRoutes(RouterConfig{
		AuthHandler:    auth_http.NewAuthHandler(authServiceStub{}),
		AuthMiddleware: middleware.NewAuthMiddleware(secret),
	})
}

func TestSetupRoutes_HealthAndMetrics(t *testing.T) {
	mux := testMux(t, "secret")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_AuthGating(t *testing.T) {
	mux := testMux(t, "secret")

	// Protected routes reject anonymous requests before any handler runs.
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/notifications"},
		{http.MethodGet, "/notifications/unread-count"},
		{http.MethodGet, "/notifications/unread-summary"},
		{http.MethodPatch, "/notifications/read-all"},
		{http.MethodGet, "/ws"},
		{http.MethodGet, "/chat/unread-count"},
		{http.MethodGet, "/applications"},
		{http.MethodGet, "/me"},
	} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestSetupRoutes_PublicAuthEndpoints(t *testing.T) {
	mux := testMux(t, "secret")

	w := httptest.NewRecorder()
	body := `{"email":"taro@example.com","password":"password123","display_name":"Taro"}`
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.com","password":"x"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	// Method patterns reject the wrong verb.
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/register", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSetupRoutes_AuthenticatedPassThrough(t *testing.T) {
	secret := "secret"
	mux := testMux(t, secret)

	token, err := jwt.GenerateToken(secret, time.Hour, uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
