package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("invalid id")

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseRole(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 5 || s[2] != ':' {
			return false
		}
		_, err := time.Parse("15:04", s)
		return err == nil
	})
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func pageMeta(page, limit int, total int64) pagination {
	return pagination{Page: page, Limit: limit, Total: total, Pages: (total + int64(limit) - 1) / int64(limit)}
}

func paginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, gin.H{"data": data, "pagination": pageMeta(page, limit, total)})
}

// paramID parses a positive uint path parameter, writing 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, errInvalidID)
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(c.Query(name), 10, 64)
	return uint(id)
}

// queryRole reads an optional role filter. An unknown role writes 400 and reports false.
func queryRole(c *gin.Context, name string) (domain.Role, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return "", true
	}
	r, ok := domain.ParseRole(v)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return "", false
	}
	return r, true
}

func queryDocumentType(c *gin.Context, name string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(c.Query(name)))
	if v != "" && !domain.IsDocumentType(v) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return "", false
	}
	return v, true
}

// parseTime accepts RFC3339 or a bare YYYY-MM-DD date.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Auditor writes audit_logs rows for security-relevant actions. Failures are logged only.
type Auditor struct {
	repo *repository.AuditLogRepository
	log  *zap.Logger
}

func NewAuditor(repo *repository.AuditLogRepository, log *zap.Logger) *Auditor {
	return &Auditor{repo: repo, log: log}
}

func (a *Auditor) Record(c *gin.Context, userID uint, action, resource string, resourceID uint) {
	if a == nil || a.repo == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  resource,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if resourceID != 0 {
		entry.ResourceID = strconv.FormatUint(uint64(resourceID), 10)
	}
	if err := a.repo.Create(entry); err != nil {
		a.log.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}
