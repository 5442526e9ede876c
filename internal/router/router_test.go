package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/portfolio-api/internal/auth"
	"github.com/yukikurage/portfolio-api/internal/database"
	"github.com/yukikurage/portfolio-api/internal/repository"
	"github.com/yukikurage/portfolio-api/internal/services"
	"gorm.io/driver/sqlite"
)

type testServer struct {
	router      *gin.Engine
	authService *services.AuthService
	redis       *miniredis.Miniredis
}

func setupTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open(":memory:"), false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	tokens := auth.NewTokenManager("test-secret", 30*time.Minute, auth.NewRedisRevocationStore(client))
	authService := services.NewAuthService(repository.NewUserRepository(db), tokens)
	portfolioService := services.NewPortfolioService(repository.NewPortfolioRepository(db))

	return testServer{
		router: SetupRouter(Dependencies{
			DB:                 db,
			AuthService:        authService,
			PortfolioService:   portfolioService,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
		}),
		authService: authService,
		redis:       mr,
	}
}

type response struct {
	code int
	body map[string]interface{}
	raw  string
}

func (s testServer) call(t *testing.T, method, target, token string, payload interface{}) response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := response{code: w.Code, raw: w.Body.String()}
	if strings.HasPrefix(strings.TrimSpace(res.raw), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res.body))
	}
	return res
}

func (s testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	res := s.call(t, http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, res.code, res.raw)
	return res.body["access_token"].(string)
}

func TestPortfolioLifecycle(t *testing.T) {
	s := setupTestServer(t)

	res := s.call(t, http.MethodPost, "/register", "", map[string]string{"email": "a@x.com", "password": "Abcd1234"})
	require.Equal(t, http.StatusOK, res.code, res.raw)
	assert.Equal(t, true, res.body["success"])

	res = s.call(t, http.MethodPost, "/register", "", map[string]string{"email": "a@x.com", "password": "Abcd1234"})
	require.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, false, res.body["success"])
	assert.Equal(t, "CONFLICT", res.body["data"].(map[string]interface{})["code"])

	res = s.call(t, http.MethodPost, "/login", "", map[string]string{"email": "a@x.com", "password": "Wrong1234"})
	require.Equal(t, http.StatusUnauthorized, res.code)

	token := s.login(t, "a@x.com", "Abcd1234")

	res = s.call(t, http.MethodPost, "/portfolios", token, map[string]interface{}{
		"template": "modern",
		"data": map[string]interface{}{
			"name":              "A",
			"skills":            []string{"x"},
			"hobbies":           []string{},
			"about":             "hi",
			"contactDetails":    map[string]string{"email": "a@x.com", "mobile": "+1234567"},
			"template_selected": "modern",
		},
	})
	require.Equal(t, http.StatusOK, res.code, res.raw)
	identifier := res.body["data"].(map[string]interface{})["unique_identifier"].(string)
	require.NotEmpty(t, identifier)

	res = s.call(t, http.MethodGet, "/p/"+identifier, "", nil)
	require.Equal(t, http.StatusNotFound, res.code)

	res = s.call(t, http.MethodPut, "/portfolios/"+identifier, token, map[string]interface{}{"isPublished": true})
	require.Equal(t, http.StatusOK, res.code, res.raw)

	res = s.call(t, http.MethodGet, "/p/"+identifier, "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, float64(1), res.body["views"])

	res = s.call(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, []interface{}{identifier}, res.body["portfolios"])

	res = s.call(t, http.MethodDelete, "/portfolios/"+identifier, token, nil)
	require.Equal(t, http.StatusOK, res.code)

	res = s.call(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, []interface{}{}, res.body["portfolios"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupTestServer(t)

	for _, route := range []struct{ method, target string }{
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/portfolios"},
		{http.MethodPost, "/portfolios"},
		{http.MethodGet, "/portfolios/x"},
		{http.MethodPut, "/portfolios/x"},
		{http.MethodDelete, "/portfolios/x"},
		{http.MethodPost, "/logout"},
		{http.MethodGet, "/admin/users"},
	} {
		res := s.call(t, route.method, route.target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.code, route.target)
		assert.Equal(t, "UNAUTHORIZED", res.body["data"].(map[string]interface{})["code"], route.target)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := setupTestServer(t)

	_, err := s.authService.Register(context.Background(), services.RegisterInput{Email: "a@x.com", Password: "Abcd1234"})
	require.NoError(t, err)
	token := s.login(t, "a@x.com", "Abcd1234")

	res := s.call(t, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, s.redis.Keys(), 1)

	res = s.call(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)

	// a fresh login still works
	res = s.call(t, http.MethodGet, "/users/me", s.login(t, "a@x.com", "Abcd1234"), nil)
	assert.Equal(t, http.StatusOK, res.code)
}

func TestAdminRoutes(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.authService.EnsureAdmin(ctx, "root@x.com", "Rootpass1"))
	user, err := s.authService.Register(ctx, services.RegisterInput{Email: "a@x.com", Password: "Abcd1234"})
	require.NoError(t, err)

	userToken := s.login(t, "a@x.com", "Abcd1234")
	res := s.call(t, http.MethodGet, "/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, res.code)
	res = s.call(t, http.MethodPost, fmt.Sprintf("/admin/users/%d/reconcile", user.ID), userToken, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	adminToken := s.login(t, "root@x.com", "Rootpass1")
	res = s.call(t, http.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.raw), &users))
	assert.Len(t, users, 2)

	res = s.call(t, http.MethodPost, fmt.Sprintf("/admin/users/%d/reconcile", user.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, res.code)
}

func TestInfrastructureRoutes(t *testing.T) {
	s := setupTestServer(t)

	res := s.call(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "running", res.body["status"])

	res = s.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.code)

	// exercise a route so the request counter has a sample
	s.call(t, http.MethodGet, "/p/nothing", "", nil)
	res = s.call(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.raw, "portfolio_api_http_requests_total")

	req := httptest.NewRequest(http.MethodOptions, "/portfolios", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
