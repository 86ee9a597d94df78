package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm/models"
	"crm/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(models.SellerNotFound(4), "/sellers/4")
	assert.Equal(t, ErrorResponse{Status: 404, Message: "Seller not found with id: 4", Details: "uri=/sellers/4"}, resp)

	resp = NewErrorResponse(models.DataIntegrity(errors.New("fk"), "Data integrity violation: fk"), "/transactions")
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, "Data integrity violation: fk", resp.Message)

	resp = NewErrorResponse(errors.New("dial tcp: connection refused"), "/sellers")
	assert.Equal(t, ErrorResponse{Status: 500, Message: "Internal Server Error", Details: "uri=/sellers"}, resp)
}

func TestErrorHandlerRendersLastError(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(models.InvalidArgument("Invalid period: %s", "fortnight"))
	})
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "fine") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid period: fortnight", body.Message)
	assert.Equal(t, "uri=/fail", body.Details)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fine", w.Body.String())
}

func TestRecoveryRendersErrorBody(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), RequestID(), ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		panic("seller cache corrupted")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Status: 500, Message: "Internal Server Error", Details: "uri=/boom"}, body)
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func guardedRouter(cfg AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	g := r.Group("/sellers")
	g.Use(WriteGuard(cfg))
	g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func send(r http.Handler, method string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/sellers", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWriteGuardDisabled(t *testing.T) {
	r := guardedRouter(AuthConfig{})

	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, nil).Code)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, nil).Code)
}

func TestWriteGuardJWT(t *testing.T) {
	secret := []byte("test-secret")
	r := guardedRouter(AuthConfig{JWTSecret: secret})

	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, map[string]string{"Authorization": "Token abc"}).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, map[string]string{"Authorization": "Bearer garbage"}).Code)

	viewer, err := utils.GenerateToken(secret, "ops", "viewer", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, map[string]string{"Authorization": "Bearer " + viewer}).Code)

	foreign, err := utils.GenerateToken([]byte("other"), "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, map[string]string{"Authorization": "Bearer " + foreign}).Code)

	admin, err := utils.GenerateToken(secret, "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	w := send(r, http.MethodPost, map[string]string{"Authorization": "Bearer " + admin})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWriteGuardAPIKey(t *testing.T) {
	hash, err := utils.HashAPIKey("s3cret-key")
	require.NoError(t, err)
	r := guardedRouter(AuthConfig{APIKeyHash: hash})

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, map[string]string{"X-API-Key": "s3cret-key"}).Code)

	w := send(r, http.MethodPost, map[string]string{"X-API-Key": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid API key", body.Message)

	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, nil).Code)
}

func TestPrometheusMiddlewareLabelsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(PrometheusMiddleware(), ErrorHandler())
	r.GET("/sellers/:id", func(c *gin.Context) {
		_ = c.Error(models.SellerNotFound(1))
	})

	lookups := requestsTotal.WithLabelValues(http.MethodGet, "/sellers/:id", "404")
	unmatched := requestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	beforeLookups, beforeUnmatched := testutil.ToFloat64(lookups), testutil.ToFloat64(unmatched)

	for _, path := range []string{"/sellers/1", "/sellers/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, beforeLookups+2, testutil.ToFloat64(lookups))
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(unmatched))
}

func TestMetricsHandlerAllowList(t *testing.T) {
	r := gin.New()
	r.GET("/metrics", MetricsHandler([]string{"10.0.0.1"}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
