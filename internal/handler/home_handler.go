package handler

import (
	"net/http"

	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HomeHandler struct {
	svc *service.HomeService
	log *zap.Logger
}

func NewHomeHandler(svc *service.HomeService, log *zap.Logger) *HomeHandler {
	return &HomeHandler{svc: svc, log: log}
}

func (h *HomeHandler) Home(c *gin.Context) {
	data, err := h.svc.Home(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// Search returns one paginated kind when type is set, otherwise a preview of every kind.
func (h *HomeHandler) Search(c *gin.Context) {
	q := c.Query("q")
	kind := c.Query("type")
	if kind == "" {
		res, err := h.svc.SearchAll(q)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"query": q, "results": res})
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.svc.SearchType(q, kind, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paginated(c, list, page, limit, total)
}
