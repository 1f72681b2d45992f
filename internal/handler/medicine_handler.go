package handler

import (
	"net/http"

	"medlink/internal/middleware"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MedicineHandler struct {
	svc   *service.MedicineService
	audit *Auditor
	log   *zap.Logger
}

func NewMedicineHandler(svc *service.MedicineService, audit *Auditor, log *zap.Logger) *MedicineHandler {
	return &MedicineHandler{svc: svc, audit: audit, log: log}
}

type medicineRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	GenericName  string `json:"genericName" binding:"max=255"`
	Manufacturer string `json:"manufacturer" binding:"max=255"`
	Form         string `json:"form" binding:"max=64"`
	Strength     string `json:"strength" binding:"max=64"`
	Description  string `json:"description"`
}

func (r medicineRequest) input() service.MedicineInput {
	return service.MedicineInput{
		Name:         r.Name,
		GenericName:  r.GenericName,
		Manufacturer: r.Manufacturer,
		Form:         r.Form,
		Strength:     r.Strength,
		Description:  r.Description,
	}
}

func (h *MedicineHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(c.Query("search"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}

func (h *MedicineHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Get(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MedicineHandler) Create(c *gin.Context) {
	var req medicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.svc.Create(req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, middleware.GetUserID(c), "medicine_create", "global_medicine", m.ID)
	c.JSON(http.StatusCreated, m)
}

func (h *MedicineHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req medicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.svc.Update(id, req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, middleware.GetUserID(c), "medicine_update", "global_medicine", id)
	c.JSON(http.StatusOK, m)
}

func (h *MedicineHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, middleware.GetUserID(c), "medicine_delete", "global_medicine", id)
	c.Status(http.StatusNoContent)
}
