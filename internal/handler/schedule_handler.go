package handler

import (
	"net/http"
	"time"

	"medlink/internal/middleware"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScheduleHandler serves next visits and medicine schedules.
type ScheduleHandler struct {
	svc *service.ScheduleService
	log *zap.Logger
}

func NewScheduleHandler(svc *service.ScheduleService, log *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, log: log}
}

func (h *ScheduleHandler) SetNextVisit(c *gin.Context) {
	patientID, ok := paramID(c, "patientId")
	if !ok {
		return
	}
	var req struct {
		VisitDate string `json:"visitDate" binding:"required"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	at, err := parseTime(req.VisitDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visitDate must be RFC3339 or YYYY-MM-DD"})
		return
	}
	nv, err := h.svc.SetNextVisit(middleware.GetPrincipal(c), patientID, at, req.Notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, nv)
}

func (h *ScheduleHandler) ProviderNextVisits(c *gin.Context) {
	list, err := h.svc.ProviderNextVisits(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

type scheduleItemRequest struct {
	MedicineName   string   `json:"medicineName" binding:"required"`
	Dosage         string   `json:"dosage"`
	TimesPerDay    int      `json:"timesPerDay" binding:"required,min=1,max=6"`
	GapBetweenDays int      `json:"gapBetweenDays" binding:"min=0"`
	Instructions   string   `json:"instructions"`
	ReminderTimes  []string `json:"reminderTimes" binding:"omitempty,dive,clock"`
}

type createScheduleRequest struct {
	PatientID    uint                  `json:"patientId"`
	Title        string                `json:"title"`
	StartDate    string                `json:"startDate"`
	NumberOfDays int                   `json:"numberOfDays" binding:"required,min=1"`
	Notes        string                `json:"notes"`
	Items        []scheduleItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := service.ScheduleInput{
		PatientID:    req.PatientID,
		Title:        req.Title,
		NumberOfDays: req.NumberOfDays,
		Notes:        req.Notes,
	}
	if req.StartDate != "" {
		start, err := parseTime(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be RFC3339 or YYYY-MM-DD"})
			return
		}
		in.StartDate = start
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.ScheduleItemInput{
			MedicineName:   it.MedicineName,
			Dosage:         it.Dosage,
			TimesPerDay:    it.TimesPerDay,
			GapBetweenDays: it.GapBetweenDays,
			Instructions:   it.Instructions,
			ReminderTimes:  it.ReminderTimes,
		})
	}
	sched, err := h.svc.CreateSchedule(middleware.GetPrincipal(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sched)
}

func (h *ScheduleHandler) List(c *gin.Context) {
	list, err := h.svc.ListSchedules(middleware.GetPrincipal(c), queryUint(c, "patientId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sched, err := h.svc.GetSchedule(middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSchedule(middleware.GetPrincipal(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ScheduleHandler) UpdateReminderTimes(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req struct {
		Times []string `json:"times" binding:"required,min=1,dive,clock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.svc.UpdateReminderTimes(middleware.GetPrincipal(c), itemID, req.Times)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	list, err := h.svc.Upcoming(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// MarkTaken confirms a dose; takenAt defaults to now.
func (h *ScheduleHandler) MarkTaken(c *gin.Context) {
	reminderID, ok := paramID(c, "reminderId")
	if !ok {
		return
	}
	var req struct {
		TakenAt string `json:"takenAt"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	var takenAt time.Time
	if req.TakenAt != "" {
		t, err := time.Parse(time.RFC3339, req.TakenAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "takenAt must be RFC3339"})
			return
		}
		takenAt = t
	}
	res, err := h.svc.ConfirmDose(middleware.GetPrincipal(c), reminderID, takenAt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
