package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crm/config"
	"crm/middleware"
	"crm/repository"
	"crm/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		GinMode:         gin.TestMode,
		StoreDriver:     config.DriverMemory,
		Timezone:        "UTC",
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: time.Second,
	}
}

func call(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterServesAPIAndOps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(testConfig(), repository.NewMemoryStore())

	w := call(r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = call(r, http.MethodPost, "/sellers", `{"name":"Alice","contactInfo":"a@x"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, http.MethodPost, "/transactions", `{"amount":250.5,"paymentType":"TRANSFER","seller":{"id":1}}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"amount":250.5`)

	w = call(r, http.MethodGet, "/sellers/top-seller/day", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"Alice"`)

	w = call(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRequiresCredentialsForWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.JWTSecret = "router-secret"
	r := newRouter(cfg, repository.NewMemoryStore())

	w := call(r, http.MethodPost, "/sellers", `{"name":"Alice"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"details":"uri=/sellers"`)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/sellers", "", nil).Code)

	token, err := utils.GenerateToken([]byte(cfg.JWTSecret), "ops", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	w = call(r, http.MethodPost, "/sellers", `{"name":"Alice"}`, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCORSConfig(t *testing.T) {
	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.False(t, all.AllowCredentials)

	some := corsConfig([]string{"https://a.example"})
	assert.False(t, some.AllowAllOrigins)
	assert.True(t, some.AllowCredentials)
	assert.Equal(t, []string{"https://a.example"}, some.AllowOrigins)
	require.NoError(t, some.Validate())
}

func TestPrintTokenNeedsID(t *testing.T) {
	assert.Error(t, printToken(testConfig(), nil))
	assert.Error(t, printToken(testConfig(), []string{"ops"}))

	cfg := testConfig()
	cfg.JWTSecret = "cli-secret"
	assert.NoError(t, printToken(cfg, []string{"ops", "admin"}))
}

func TestPrintKeyHash(t *testing.T) {
	assert.Error(t, printKeyHash(nil))
	assert.Error(t, printKeyHash([]string{""}))
	assert.NoError(t, printKeyHash([]string{"s3cret-key"}))
}
