package handlers

import (
	"net/http"
	"strconv"

	"github.com/fleuri/fleuri-api/internal/middleware"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService      *services.AuditService
	complianceService *services.ComplianceService
}

func NewAuditHandler(auditService *services.AuditService, complianceService *services.ComplianceService) *AuditHandler {
	return &AuditHandler{
		auditService:      auditService,
		complianceService: complianceService,
	}
}

// @Summary List Audit Logs
// @Description Get a paginated list of the admin audit trail
// @Tags Audit
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param action query string false "Filter by action"
// @Param entity query string false "Filter by entity"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	query.Filters["action"] = c.Query("action")
	query.Filters["entity"] = c.Query("entity")

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []models.AuditLogResponse
	for i := range logs {
		responses = append(responses, logs[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Verify Audit Chain
// @Description Recompute every entry hash and prev-hash link; reports the first broken entry if any
// @Tags Audit
// @Accept json
// @Produce json
// @Success 200 {object} services.ChainVerification
// @Security BearerAuth
// @Router /admin/audits/verify [get]
func (h *AuditHandler) Verify(c *gin.Context) {
	report, err := h.complianceService.VerifyChain(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Export Audit Trail
// @Description Download the audit trail as csv, xlsx or pdf
// @Tags Audit
// @Produce application/octet-stream
// @Param format query string false "Export format (csv, xlsx, pdf)" default(csv)
// @Success 200 {file} file "audit export"
// @Security BearerAuth
// @Router /admin/audits/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10000"))
	query.Filters["action"] = c.Query("action")
	query.Filters["entity"] = c.Query("entity")

	actorID := middleware.GetUserID(c)
	data, filename, err := h.complianceService.Export(c.Request.Context(), format, query, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := "text/csv"
	switch format {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
