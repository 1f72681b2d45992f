package router

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medlink/config"
	"medlink/internal/cache"
	"medlink/internal/database"
	"medlink/internal/testutil"
	"medlink/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	engine *gin.Engine
}

func newTestServer(t *testing.T) (*testServer, Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:    config.ServerConfig{Env: "test"},
		JWT:       config.JWTConfig{Secret: "router-test", Expiry: time.Hour, Issuer: "medlink"},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
	d := Deps{
		Config: cfg,
		DB:     testutil.NewTestDB(t),
		Log:    zap.NewNop(),
		Cache:  cache.NewMemory(),
		Hub:    ws.NewHub(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &testServer{engine: Setup(ctx, d, NewServices(d))}, d
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.engine.ServeHTTP(rr, req)
	return rr
}

type session struct {
	ID    uint
	Token string
}

func (s *testServer) register(t *testing.T, name, email, role string) session {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role, "city": "Pune",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var out struct {
		User  struct{ ID uint } `json:"user"`
		Token string            `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return session{ID: out.User.ID, Token: out.Token}
}

func (s *testServer) login(t *testing.T, email, password string) session {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out struct {
		User  struct{ ID uint } `json:"user"`
		Token string            `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return session{ID: out.User.ID, Token: out.Token}
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestAuthFlow(t *testing.T) {
	s, _ := newTestServer(t)
	s.register(t, "Kavya Rao", "kavya@example.test", "patient")

	rr := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Again", "email": "KAVYA@example.test", "password": "secret123", "role": "PATIENT",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Bad Role", "email": "bad@example.test", "password": "secret123", "role": "WIZARD",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	wrongPassword := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "kavya@example.test", "password": "nope-nope"})
	unknownEmail := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@example.test", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())

	sess := s.login(t, "kavya@example.test", "secret123")
	rr = s.do(t, http.MethodGet, "/api/auth/me", sess.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "PATIENT", decode(t, rr)["role"])

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", "", nil).Code)
}

func TestDirectoryVisibility(t *testing.T) {
	s, d := newTestServer(t)
	s.register(t, "Arjun Mehta", "arjun@example.test", "doctor")

	rr := s.do(t, http.MethodGet, "/api/doctors", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	pagination := decode(t, rr)["pagination"].(map[string]interface{})
	assert.EqualValues(t, 0, pagination["total"], "pending doctors are hidden from the public")

	_, err := database.SeedAdmin(d.DB, "admin@example.test", "admin-pass", "Admin")
	require.NoError(t, err)
	admin := s.login(t, "admin@example.test", "admin-pass")

	rr = s.do(t, http.MethodGet, "/api/doctors", admin.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	pagination = decode(t, rr)["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["total"])
	assert.EqualValues(t, 20, pagination["limit"])
}

func TestDocumentSharingOverHTTP(t *testing.T) {
	s, _ := newTestServer(t)
	patient := s.register(t, "Meera Iyer", "meera@example.test", "PATIENT")
	doctor := s.register(t, "Rohan Das", "rohan@example.test", "DOCTOR")

	rr := s.do(t, http.MethodPost, fmt.Sprintf("/api/doctors/me/patients/%d", patient.ID), doctor.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/api/med-documents", patient.Token, gin.H{
		"fileName": "blood.pdf", "fileUrl": "https://files.test/blood.pdf", "documentType": "MEDICAL_REPORT",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	docID := uint(decode(t, rr)["id"].(float64))
	docPath := fmt.Sprintf("/api/med-documents/%d", docID)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, docPath, doctor.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/med-documents/999999", doctor.Token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/med-documents/abc", doctor.Token, nil).Code)

	rr = s.do(t, http.MethodPost, docPath+"/permissions/doctors", doctor.Token, gin.H{"doctorId": doctor.ID})
	assert.Equal(t, http.StatusForbidden, rr.Code, "only the subject patient shares")

	for i := 0; i < 2; i++ {
		rr = s.do(t, http.MethodPost, docPath+"/permissions/doctors", patient.Token, gin.H{"doctorId": doctor.ID})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, docPath, doctor.Token, nil).Code)

	rr = s.do(t, http.MethodGet, "/api/med-documents", doctor.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["data"], 1)

	rr = s.do(t, http.MethodGet, "/api/med-documents?uploaderType=patient&documentType=medical_report", doctor.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, decode(t, rr)["data"], 1)
	rr = s.do(t, http.MethodGet, "/api/med-documents?uploaderType=DOCTOR", doctor.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decode(t, rr)["pagination"].(map[string]interface{})["total"])
	for _, q := range []string{"?uploaderType=nurse", "?documentType=XRAY"} {
		rr = s.do(t, http.MethodGet, "/api/med-documents"+q, doctor.Token, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}

	rr = s.do(t, http.MethodDelete, fmt.Sprintf("%s/permissions/doctors/%d", docPath, doctor.ID), patient.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, docPath, doctor.Token, nil).Code)

	rr = s.do(t, http.MethodGet, "/api/admin/audit-logs", patient.Token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMultipartUploadWithoutStorage(t *testing.T) {
	s, _ := newTestServer(t)
	patient := s.register(t, "Ishaan Roy", "ishaan@example.test", "PATIENT")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("documentType", "PRESCRIPTION"))
	part, err := w.CreateFormFile("file", "rx.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not really a jpeg"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/med-documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+patient.Token)
	rr := httptest.NewRecorder()
	s.engine.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code, rr.Body.String())
}

func TestSearchAndMedicineCatalog(t *testing.T) {
	s, d := newTestServer(t)
	_, err := database.SeedAdmin(d.DB, "admin@example.test", "admin-pass", "Admin")
	require.NoError(t, err)
	admin := s.login(t, "admin@example.test", "admin-pass")

	rr := s.do(t, http.MethodPost, "/api/global-medicine", admin.Token, gin.H{"name": "Paracetamol", "strength": "500mg"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = s.do(t, http.MethodPost, "/api/global-medicine", admin.Token, gin.H{"name": "Paracetamol"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/search?q=p", "", nil).Code)

	rr = s.do(t, http.MethodGet, "/api/search?q=para&type=medicine", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["data"], 1)

	rr = s.do(t, http.MethodGet, "/api/search?q=para", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	results := decode(t, rr)["results"].(map[string]interface{})
	assert.Len(t, results["medicine"], 1)
	assert.Contains(t, results, "doctor")
}
