package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/dto"
)

// auditHandler handles HTTP requests related to the audit trail.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

// registerAuditRoutes registers routes related to the audit trail.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := &auditHandler{auditService: auditService}

	audit := rg.Group("/audit")
	{
		audit.GET("/records/:id", h.getRecord)
		audit.GET("/records/:id/verify", h.verifyRecord)
		audit.GET("/entities/:type/:id", h.getEntityHistory)
		audit.GET("/chain/verify", h.verifyChain)
	}
}

func (h *auditHandler) getRecord(c *gin.Context) {
	entry, err := h.auditService.GetAuditByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToAuditLogResponse(entry)))
}

func (h *auditHandler) verifyRecord(c *gin.Context) {
	valid, err := h.auditService.VerifyRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"auditID": c.Param("id"),
		"valid":   valid,
	}))
}

func (h *auditHandler) getEntityHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 100)

	entries, err := h.auditService.GetEntityHistory(c.Request.Context(), c.Param("type"), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToAuditLogResponses(entries)))
}

func (h *auditHandler) verifyChain(c *gin.Context) {
	fromSequence := int64Query(c, "from", 1)
	limit := intQuery(c, "limit", 1000)

	result, err := h.auditService.VerifyChain(c.Request.Context(), fromSequence, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
