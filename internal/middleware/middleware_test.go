package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medlink/config"
	"medlink/internal/auth"
	"medlink/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(cfg *config.JWTConfig, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(cfg)}, mw...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAuthRequired(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", Expiry: time.Hour, Issuer: "test"}
	r := newTestEngine(cfg)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token abc").Code)
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer").Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer nope").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := *cfg
		expired.Expiry = -time.Second
		token, err := auth.GenerateAccessToken(&expired, 7, domain.RolePatient, domain.VerificationVerified)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+token).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.GenerateAccessToken(cfg, 7, domain.RolePatient, domain.VerificationVerified)
		require.NoError(t, err)
		rr := doGet(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"user_id":7,"role":"PATIENT"}`, rr.Body.String())
	})
}

func TestRequireRoleAndAdmin(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", Expiry: time.Hour}
	doctorOnly := newTestEngine(cfg, RequireRole(domain.RoleDoctor, domain.RoleCheckupCenter))
	adminOnly := newTestEngine(cfg, AdminRequired())

	patient, _ := auth.GenerateAccessToken(cfg, 1, domain.RolePatient, domain.VerificationVerified)
	doctor, _ := auth.GenerateAccessToken(cfg, 2, domain.RoleDoctor, domain.VerificationVerified)
	admin, _ := auth.GenerateAccessToken(cfg, 3, domain.RoleAdmin, domain.VerificationVerified)

	assert.Equal(t, http.StatusForbidden, doGet(doctorOnly, "Bearer "+patient).Code)
	assert.Equal(t, http.StatusOK, doGet(doctorOnly, "Bearer "+doctor).Code)
	assert.Equal(t, http.StatusForbidden, doGet(adminOnly, "Bearer "+doctor).Code)
	assert.Equal(t, http.StatusOK, doGet(adminOnly, "Bearer "+admin).Code)
}

func TestOptionalAuth(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", Expiry: time.Hour}
	r := gin.New()
	r.GET("/protected", OptionalAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})

	assert.JSONEq(t, `{"user_id":0,"role":""}`, doGet(r, "").Body.String())
	assert.JSONEq(t, `{"user_id":0,"role":""}`, doGet(r, "Bearer garbage").Body.String())

	admin, err := auth.GenerateAccessToken(cfg, 3, domain.RoleAdmin, domain.VerificationVerified)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":3,"role":"ADMIN"}`, doGet(r, "Bearer "+admin).Body.String())
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	r := gin.New()
	r.GET("/ping", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code, "other clients keep their own bucket")
}
