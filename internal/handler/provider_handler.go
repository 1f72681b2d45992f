package handler

import (
	"net/http"

	"medlink/internal/domain"
	"medlink/internal/middleware"
	"medlink/internal/repository"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProviderHandler serves one role's directory (/api/doctors, /api/hospitals, ...) and the
// relationship endpoints of that role. The router mounts only the methods a role supports.
type ProviderHandler struct {
	role domain.Role
	dir  *service.DirectoryService
	log  *zap.Logger
}

func NewProviderHandler(role domain.Role, dir *service.DirectoryService, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{role: role, dir: dir, log: log}
}

func (h *ProviderHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.dir.ListProviders(middleware.GetPrincipal(c), repository.ProviderFilter{
		Role:           h.role,
		Search:         c.Query("search"),
		City:           c.Query("city"),
		Specialization: c.Query("specialization"),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}

func (h *ProviderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.dir.GetProvider(h.role, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateMe takes a flat JSON object; identity and profile columns are split by allow-list.
func (h *ProviderHandler) UpdateMe(c *gin.Context) {
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

func (h *ProviderHandler) ListPatients(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.dir.ListPatients(middleware.GetUserID(c), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}

func (h *ProviderHandler) AssignPatient(c *gin.Context) {
	patientID, ok := paramID(c, "patientId")
	if !ok {
		return
	}
	if err := h.dir.AssignPatient(middleware.GetPrincipal(c), patientID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "assigned", "patient_id": patientID})
}

func (h *ProviderHandler) UnassignPatient(c *gin.Context) {
	patientID, ok := paramID(c, "patientId")
	if !ok {
		return
	}
	if err := h.dir.UnassignPatient(middleware.GetUserID(c), patientID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unassigned", "patient_id": patientID})
}

// hospitals

func (h *ProviderHandler) MyDoctors(c *gin.Context) {
	list, err := h.dir.HospitalDoctors(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *ProviderHandler) HospitalDoctors(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.dir.HospitalDoctors(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *ProviderHandler) AddDoctor(c *gin.Context) {
	doctorID, ok := paramID(c, "doctorId")
	if !ok {
		return
	}
	if err := h.dir.AddHospitalDoctor(middleware.GetUserID(c), doctorID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added", "doctor_id": doctorID})
}

func (h *ProviderHandler) RemoveDoctor(c *gin.Context) {
	doctorID, ok := paramID(c, "doctorId")
	if !ok {
		return
	}
	if err := h.dir.RemoveHospitalDoctor(middleware.GetUserID(c), doctorID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed", "doctor_id": doctorID})
}

// clinics

func (h *ProviderHandler) SetClinicDoctor(c *gin.Context) {
	doctorID, ok := paramID(c, "doctorId")
	if !ok {
		return
	}
	if err := h.dir.SetClinicDoctor(middleware.GetUserID(c), doctorID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "connected", "doctor_id": doctorID})
}

func (h *ProviderHandler) ClearClinicDoctor(c *gin.Context) {
	if err := h.dir.ClearClinicDoctor(middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}

// doctors

func (h *ProviderHandler) MyHospitals(c *gin.Context) {
	list, err := h.dir.DoctorHospitals(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *ProviderHandler) MyClinic(c *gin.Context) {
	clinic, err := h.dir.DoctorClinic(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clinic": clinic})
}
