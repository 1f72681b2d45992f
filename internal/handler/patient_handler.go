package handler

import (
	"net/http"

	"medlink/internal/middleware"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PatientHandler struct {
	dir       *service.DirectoryService
	schedules *service.ScheduleService
	log       *zap.Logger
}

func NewPatientHandler(dir *service.DirectoryService, schedules *service.ScheduleService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{dir: dir, schedules: schedules, log: log}
}

func (h *PatientHandler) Me(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	u, err := h.dir.GetPatient(p, p.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *PatientHandler) UpdateMe(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.dir.UpdateSelf(middleware.GetPrincipal(c), body, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Providers lists every provider the patient is assigned to, optionally one role only.
func (h *PatientHandler) Providers(c *gin.Context) {
	role, ok := queryRole(c, "role")
	if !ok {
		return
	}
	list, err := h.dir.PatientProviders(middleware.GetUserID(c), role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *PatientHandler) NextVisits(c *gin.Context) {
	list, err := h.schedules.PatientNextVisits(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.dir.GetPatient(middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// List is the admin patient directory.
func (h *PatientHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.dir.ListPatientsAdmin(c.Query("search"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}
