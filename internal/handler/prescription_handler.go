package handler

import (
	"net/http"
	"time"

	"medlink/internal/middleware"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PrescriptionHandler struct {
	svc *service.PrescriptionService
	log *zap.Logger
}

func NewPrescriptionHandler(svc *service.PrescriptionService, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc, log: log}
}

type prescriptionItemRequest struct {
	MedicineName   string `json:"medicineName" binding:"required"`
	Dosage         string `json:"dosage"`
	TimesPerDay    int    `json:"timesPerDay" binding:"required,min=1,max=6"`
	GapBetweenDays int    `json:"gapBetweenDays" binding:"min=0"`
	DurationDays   int    `json:"durationDays" binding:"required,min=1"`
	Instructions   string `json:"instructions"`
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req struct {
		PatientID uint                      `json:"patientId" binding:"required"`
		Diagnosis string                    `json:"diagnosis"`
		Notes     string                    `json:"notes"`
		Items     []prescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	items := make([]service.PrescriptionItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.PrescriptionItemInput{
			MedicineName:   it.MedicineName,
			Dosage:         it.Dosage,
			TimesPerDay:    it.TimesPerDay,
			GapBetweenDays: it.GapBetweenDays,
			DurationDays:   it.DurationDays,
			Instructions:   it.Instructions,
		})
	}
	p, err := h.svc.Create(middleware.GetPrincipal(c), req.PatientID, req.Diagnosis, req.Notes, items)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(middleware.GetPrincipal(c), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateSchedule starts a medicine schedule from the prescription, today unless startDate is given.
func (h *PrescriptionHandler) CreateSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		StartDate string `json:"startDate"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	var start time.Time
	if req.StartDate != "" {
		t, err := parseTime(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be RFC3339 or YYYY-MM-DD"})
			return
		}
		start = t
	}
	sched, err := h.svc.CreateSchedule(middleware.GetPrincipal(c), id, start)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sched)
}
