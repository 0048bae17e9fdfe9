package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fleuri/fleuri-api/internal/middleware"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	commissionService *services.CommissionService
}

func NewCommissionHandler(commissionService *services.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

// @Summary List Commission Rate Changes
// @Description Get a paginated list of commission rate changes
// @Tags Commissions
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/commissions [get]
func (h *CommissionHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")

	changes, total, err := h.commissionService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []models.CommissionRateChangeResponse
	for _, ch := range changes {
		responses = append(responses, ch.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"commissions": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Commission Rate Change
// @Description Get a commission rate change by ID
// @Tags Commissions
// @Accept json
// @Produce json
// @Param commission_id path int true "Commission Rate Change ID"
// @Success 200 {object} models.CommissionRateChangeResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/commissions/{commission_id} [get]
func (h *CommissionHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("commission_id"), 10, 32)
	change, err := h.commissionService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commission": change.ToResponse()})
}

type RequestCommissionChangeRequest struct {
	SellerID    *uint      `json:"seller_id"`
	PctBps      *int       `json:"pct_bps" binding:"required"`
	EffectiveAt *time.Time `json:"effective_at"`
	Note        *string    `json:"note"`
}

// @Summary Request Commission Rate Change
// @Description Create a pending commission rate change; a different admin must approve it
// @Tags Commissions
// @Accept json
// @Produce json
// @Param request body RequestCommissionChangeRequest true "Change Data"
// @Success 201 {object} models.CommissionRateChangeResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /admin/commissions [post]
func (h *CommissionHandler) Create(c *gin.Context) {
	var req RequestCommissionChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.PctBps < 0 || *req.PctBps > 10000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pct_bps must be between 0 and 10000"})
		return
	}

	effectiveAt := time.Now().UTC()
	if req.EffectiveAt != nil {
		effectiveAt = req.EffectiveAt.UTC()
	}

	requesterID := middleware.GetUserID(c)
	change, err := h.commissionService.RequestChange(c.Request.Context(), services.RequestChangeInput{
		SellerID:    req.SellerID,
		PctBps:      *req.PctBps,
		EffectiveAt: effectiveAt,
		Note:        req.Note,
	}, requesterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"commission": change.ToResponse()})
}

// @Summary Approve Commission Rate Change
// @Description Approve a pending change; the approver must differ from the requester
// @Tags Commissions
// @Accept json
// @Produce json
// @Param commission_id path int true "Commission Rate Change ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /admin/commissions/{commission_id}/approve [post]
func (h *CommissionHandler) Approve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("commission_id"), 10, 32)
	approverID := middleware.GetUserID(c)

	change, err := h.commissionService.Approve(c.Request.Context(), uint(id), approverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "commission": change.ToResponse()})
}

type RejectCommissionRequest struct {
	Note *string `json:"note"`
}

// @Summary Reject Commission Rate Change
// @Description Reject a pending change
// @Tags Commissions
// @Accept json
// @Produce json
// @Param commission_id path int true "Commission Rate Change ID"
// @Param request body RejectCommissionRequest false "Rejection Note"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /admin/commissions/{commission_id}/reject [post]
func (h *CommissionHandler) Reject(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("commission_id"), 10, 32)
	reviewerID := middleware.GetUserID(c)

	var req RejectCommissionRequest
	_ = c.ShouldBindJSON(&req)

	change, err := h.commissionService.Reject(c.Request.Context(), uint(id), reviewerID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "commission": change.ToResponse()})
}

// @Summary Effective Commission Rate
// @Description Get the commission rate in effect for a seller at a given moment
// @Tags Commissions
// @Accept json
// @Produce json
// @Param seller_id query int true "Seller ID"
// @Param at query string false "RFC3339 timestamp (defaults to now)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/commissions/effective [get]
func (h *CommissionHandler) Effective(c *gin.Context) {
	sellerID, _ := strconv.ParseUint(c.Query("seller_id"), 10, 32)
	if sellerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id is required"})
		return
	}

	at := time.Now().UTC()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at must be an RFC3339 timestamp"})
			return
		}
		at = parsed.UTC()
	}

	rateBps, err := h.commissionService.EffectiveRateBps(c.Request.Context(), uint(sellerID), at)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seller_id": sellerID,
		"at":        at,
		"pct_bps":   rateBps,
	})
}
