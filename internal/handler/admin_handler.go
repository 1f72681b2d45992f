package handler

import (
	"net/http"
	"strings"

	"medlink/internal/middleware"
	"medlink/internal/repository"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	svc   *service.AdminService
	audit *Auditor
	log   *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, audit *Auditor, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, audit: audit, log: log}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	role, ok := queryRole(c, "role")
	if !ok {
		return
	}
	page, limit := parsePagination(c)
	users, total, err := h.svc.ListUsers(repository.UserFilter{
		Search: c.Query("search"),
		Role:   role,
		Status: strings.ToUpper(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, users, page, limit, total)
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.GetUser(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// SetVerification handles PATCH /admin/users/:id/verification.
func (h *AdminHandler) SetVerification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=PENDING VERIFIED REJECTED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.SetVerification(id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, middleware.GetUserID(c), "verification_"+strings.ToLower(req.Status), "user", id)
	c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p := middleware.GetPrincipal(c)
	if err := h.svc.DeleteUser(p, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, p.ID, "user_delete", "user", id)
	c.Status(http.StatusNoContent)
}

// AuditLogs handles GET /admin/audit-logs?action=.
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.AuditLogs(c.Query("action"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}
