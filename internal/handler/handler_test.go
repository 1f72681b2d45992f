package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidCreds, http.StatusUnauthorized},
		{service.ErrEmailExists, http.StatusBadRequest},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrPatientNotAssigned, http.StatusForbidden},
		{service.ErrDocumentNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{service.ErrReferralNotPending, http.StatusConflict},
		{service.ErrReferralExists, http.StatusConflict},
		{service.ErrDoseNotDue, http.StatusConflict},
		{service.ErrDoseAlreadyTaken, http.StatusConflict},
		{gorm.ErrDuplicatedKey, http.StatusConflict},
		{service.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) { respondError(c, zap.NewNop(), errors.New("dial tcp 10.0.0.5:5432")) })
	r.GET("/missing", func(c *gin.Context) { respondError(c, zap.NewNop(), gorm.ErrRecordNotFound) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.JSONEq(t, `{"error":"not found"}`, rr.Body.String())
}

func TestPagination(t *testing.T) {
	r := gin.New()
	r.GET("/list", func(c *gin.Context) {
		page, limit := parsePagination(c)
		paginated(c, []int{}, page, limit, 45)
	})
	cases := []struct {
		query              string
		page, limit, pages int
	}{
		{"", 1, 20, 3},
		{"?page=2&limit=10", 2, 10, 5},
		{"?page=-1&limit=500", 1, 100, 1},
		{"?page=x&limit=0", 1, 20, 3},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/list"+tc.query, nil))
		var out struct {
			Data       []int      `json:"data"`
			Pagination pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, tc.page, out.Pagination.Page, tc.query)
		assert.Equal(t, tc.limit, out.Pagination.Limit, tc.query)
		assert.EqualValues(t, 45, out.Pagination.Total)
		assert.EqualValues(t, tc.pages, out.Pagination.Pages, tc.query)
	}
}

func TestCustomValidators(t *testing.T) {
	type body struct {
		Role  string   `json:"role" binding:"required,role"`
		Times []string `json:"times" binding:"dive,clock"`
	}
	r := gin.New()
	r.POST("/v", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			badRequest(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	cases := map[string]int{
		`{"role":"doctor","times":["06:00","23:59"]}`: http.StatusNoContent,
		`{"role":"checkup-center","times":[]}`:        http.StatusNoContent,
		`{"role":"surgeon","times":["06:00"]}`:        http.StatusBadRequest,
		`{"role":"PATIENT","times":["6:00"]}`:         http.StatusBadRequest,
		`{"role":"PATIENT","times":["24:00"]}`:        http.StatusBadRequest,
	}
	for in, want := range cases {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v", strings.NewReader(in))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, in)
	}
}

func TestParamHelpers(t *testing.T) {
	id, ok := uintField(map[string]interface{}{"doctorId": float64(12)}, "doctorId")
	assert.True(t, ok)
	assert.EqualValues(t, 12, id)
	_, ok = uintField(map[string]interface{}{"doctorId": 1.5}, "doctorId")
	assert.False(t, ok)
	id, ok = uintField(map[string]interface{}{"doctorId": "7"}, "doctorId")
	assert.True(t, ok)
	assert.EqualValues(t, 7, id)
	_, ok = uintField(map[string]interface{}{}, "doctorId")
	assert.False(t, ok)

	d, err := parseTime("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Day())
	_, err = parseTime("2026-03-10T09:30:00+05:30")
	assert.NoError(t, err)
	_, err = parseTime("10/03/2026")
	assert.Error(t, err)
}

func TestQueryFilters(t *testing.T) {
	r := gin.New()
	r.GET("/f", func(c *gin.Context) {
		role, ok := queryRole(c, "role")
		if !ok {
			return
		}
		docType, ok := queryDocumentType(c, "documentType")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": role, "documentType": docType})
	})

	cases := []struct {
		query string
		want  int
		body  string
	}{
		{"", http.StatusOK, `{"role":"","documentType":""}`},
		{"?role=checkup-center&documentType=prescription", http.StatusOK, `{"role":"CHECKUP_CENTER","documentType":"PRESCRIPTION"}`},
		{"?role=nurse", http.StatusBadRequest, `{"error":"invalid role"}`},
		{"?documentType=xray", http.StatusBadRequest, `{"error":"invalid documentType"}`},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/f"+tc.query, nil))
		assert.Equal(t, tc.want, rr.Code, tc.query)
		assert.JSONEq(t, tc.body, rr.Body.String(), tc.query)
	}
}
