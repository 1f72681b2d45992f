package handler

import (
	"net/http"
	"strconv"
	"strings"

	"medlink/internal/domain"
	"medlink/internal/middleware"
	"medlink/internal/repository"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

type DocumentHandler struct {
	svc   *service.DocumentService
	audit *Auditor
	log   *zap.Logger
}

func NewDocumentHandler(svc *service.DocumentService, audit *Auditor, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, audit: audit, log: log}
}

type createDocumentRequest struct {
	FileName     string `json:"fileName" form:"fileName"`
	FileURL      string `json:"fileUrl" form:"fileUrl"`
	DocumentType string `json:"documentType" form:"documentType" binding:"required"`
	PatientID    uint   `json:"patientId" form:"patientId"`
	Description  string `json:"description" form:"description"`
}

// Create accepts JSON with a fileUrl, or multipart/form-data with a "file" part that is
// sent to the configured object store.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req createDocumentRequest
	var upload *service.Upload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err)
			return
		}
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
			return
		}
		defer f.Close()
		upload = &service.Upload{
			Reader:      f,
			Size:        fh.Size,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := middleware.GetPrincipal(c)
	doc, err := h.svc.Create(c.Request.Context(), p, service.DocumentInput{
		FileName:     req.FileName,
		FileURL:      req.FileURL,
		DocumentType: req.DocumentType,
		Description:  req.Description,
		PatientID:    req.PatientID,
	}, upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docType, ok := queryDocumentType(c, "documentType")
	if !ok {
		return
	}
	uploader, ok := queryRole(c, "uploaderType")
	if !ok {
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(middleware.GetPrincipal(c), repository.DocumentFilter{
		PatientID:    queryUint(c, "patientId"),
		DocumentType: docType,
		UploaderRole: uploader,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Get(middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p := middleware.GetPrincipal(c)
	if err := h.svc.Delete(p, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, p.ID, "document_delete", "med_document", id)
	c.Status(http.StatusNoContent)
}

// GrantDoctor and friends differ only in the grantee role and the id field name.
func (h *DocumentHandler) GrantDoctor(c *gin.Context) { h.grant(c, domain.RoleDoctor, "doctorId") }

func (h *DocumentHandler) GrantCheckupCenter(c *gin.Context) {
	h.grant(c, domain.RoleCheckupCenter, "checkupCenterId")
}

func (h *DocumentHandler) RevokeDoctor(c *gin.Context) { h.revoke(c, domain.RoleDoctor, "doctorId") }

func (h *DocumentHandler) RevokeCheckupCenter(c *gin.Context) {
	h.revoke(c, domain.RoleCheckupCenter, "checkupCenterId")
}

func (h *DocumentHandler) grant(c *gin.Context, role domain.Role, field string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	granteeID, ok := uintField(body, field)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " is required"})
		return
	}
	p := middleware.GetPrincipal(c)
	doc, err := h.svc.Grant(p, id, domain.Principal{Role: role, ID: granteeID})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, p.ID, "document_grant_"+strings.ToLower(string(role)), "med_document", id)
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) revoke(c *gin.Context, role domain.Role, param string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	granteeID, ok := paramID(c, param)
	if !ok {
		return
	}
	p := middleware.GetPrincipal(c)
	doc, err := h.svc.Revoke(p, id, domain.Principal{Role: role, ID: granteeID})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, p.ID, "document_revoke_"+strings.ToLower(string(role)), "med_document", id)
	c.JSON(http.StatusOK, doc)
}

func uintField(body map[string]interface{}, key string) (uint, bool) {
	switch v := body[key].(type) {
	case float64:
		if v > 0 && v == float64(uint(v)) {
			return uint(v), true
		}
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err == nil && n > 0 {
			return uint(n), true
		}
	}
	return 0, false
}

func (h *DocumentHandler) SetSeekAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SeekAvailability *bool `json:"seekAvailability" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := h.svc.SetSeekAvailability(middleware.GetPrincipal(c), id, *req.SeekAvailability)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) HandRaises(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.HandRaises(middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// med store marketplace

func (h *DocumentHandler) OpenRequests(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.OpenRequests(middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}

func (h *DocumentHandler) RaiseHand(c *gin.Context) {
	docID, ok := paramID(c, "documentId")
	if !ok {
		return
	}
	var req struct {
		Note string `json:"note" binding:"max=512"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	hr, err := h.svc.RaiseHand(middleware.GetPrincipal(c), docID, req.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, hr)
}

func (h *DocumentHandler) WithdrawHand(c *gin.Context) {
	docID, ok := paramID(c, "documentId")
	if !ok {
		return
	}
	if err := h.svc.WithdrawHand(middleware.GetUserID(c), docID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) MyHandRaises(c *gin.Context) {
	list, err := h.svc.StoreHandRaises(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
