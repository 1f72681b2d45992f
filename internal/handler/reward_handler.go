package handler

import (
	"net/http"

	"medlink/internal/domain"
	"medlink/internal/middleware"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RewardHandler serves points, referrals and reward settings.
type RewardHandler struct {
	svc   *service.RewardService
	audit *Auditor
	log   *zap.Logger
}

func NewRewardHandler(svc *service.RewardService, audit *Auditor, log *zap.Logger) *RewardHandler {
	return &RewardHandler{svc: svc, audit: audit, log: log}
}

func (h *RewardHandler) Me(c *gin.Context) {
	sum, err := h.svc.Summary(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *RewardHandler) Transactions(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.Transactions(middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}

func (h *RewardHandler) MyReferrals(c *gin.Context) {
	list, err := h.svc.MyReferrals(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *RewardHandler) CreateReferral(c *gin.Context) {
	var req struct {
		ReferredID   uint   `json:"referredId" binding:"required"`
		ReferredRole string `json:"referredRole" binding:"required,role"`
		ServiceType  string `json:"serviceType" binding:"max=64"`
		PatientID    *uint  `json:"patientId"`
		Notes        string `json:"notes" binding:"max=1024"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	role, _ := domain.ParseRole(req.ReferredRole)
	ref, err := h.svc.CreateReferral(middleware.GetPrincipal(c), service.ReferralInput{
		ReferredID:   req.ReferredID,
		ReferredRole: role,
		ServiceType:  req.ServiceType,
		PatientID:    req.PatientID,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// CompleteReferral is mounted both for the referred party and under /admin.
func (h *RewardHandler) CompleteReferral(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p := middleware.GetPrincipal(c)
	ref, err := h.svc.CompleteReferral(p, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, p.ID, "referral_complete", "referral", id)
	c.JSON(http.StatusOK, ref)
}

func (h *RewardHandler) Settings(c *gin.Context) {
	list, err := h.svc.Settings()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *RewardHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Value *int64 `json:"value" binding:"required,min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.svc.UpdateSetting(c.Param("key"), *req.Value)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, middleware.GetUserID(c), "reward_setting_update", "reward_setting", s.ID)
	c.JSON(http.StatusOK, s)
}

// AdjustPoints credits or debits a user as an ADMIN_ADJUSTMENT.
func (h *RewardHandler) AdjustPoints(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Points      int64  `json:"points" binding:"required"`
		Description string `json:"description" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.AdminAdjust(id, req.Points, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, middleware.GetUserID(c), "points_adjust", "user", id)
	c.JSON(http.StatusOK, u)
}

// ListReferrals is the admin view, filterable by status.
func (h *RewardHandler) ListReferrals(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.ListReferrals(c.Query("status"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}
