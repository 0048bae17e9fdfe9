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

type PayoutHandler struct {
	payoutService *services.PayoutService
}

func NewPayoutHandler(payoutService *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// @Summary List Payouts
// @Description Get a paginated list of payouts. Sellers only see their own.
// @Tags Payouts
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payouts [get]
func (h *PayoutHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")

	var (
		payouts []models.Payout
		total   int64
		err     error
	)
	if middleware.IsAdmin(c) {
		payouts, total, err = h.payoutService.List(c.Request.Context(), query)
	} else {
		payouts, total, err = h.payoutService.ListBySeller(c.Request.Context(), middleware.GetUserID(c), query)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []models.PayoutResponse
	for _, p := range payouts {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payouts": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Payout
// @Description Get a payout by ID
// @Tags Payouts
// @Accept json
// @Produce json
// @Param payout_id path int true "Payout ID"
// @Success 200 {object} models.PayoutResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payouts/{payout_id} [get]
func (h *PayoutHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payout_id"), 10, 32)
	payout, err := h.payoutService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if !middleware.IsAdmin(c) && payout.SellerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": payout.ToResponse()})
}

type CreatePayoutRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Currency    string `json:"currency"`
}

// @Summary Request Payout
// @Description Create a pending payout request for the current seller
// @Tags Payouts
// @Accept json
// @Produce json
// @Param request body CreatePayoutRequest true "Payout Data"
// @Success 201 {object} models.PayoutResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /payouts [post]
func (h *PayoutHandler) Create(c *gin.Context) {
	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sellerID := middleware.GetUserID(c)
	payout, err := h.payoutService.Create(c.Request.Context(), sellerID, req.AmountCents, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payout": payout.ToResponse()})
}

// @Summary Request Payout Approval
// @Description Record that an admin wants this payout (re)processed; a second admin approves out of band
// @Tags Payouts
// @Accept json
// @Produce json
// @Param payout_id path int true "Payout ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /admin/payouts/{payout_id}/request-approval [post]
func (h *PayoutHandler) RequestApproval(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payout_id"), 10, 32)
	actorID := middleware.GetUserID(c)

	payout, err := h.payoutService.RequestApproval(c.Request.Context(), uint(id), actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "payout_id": payout.ID})
}

// @Summary Approve Payout
// @Description Move a requested payout into processing; the approver must differ from the requester
// @Tags Payouts
// @Accept json
// @Produce json
// @Param payout_id path int true "Payout ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /admin/payouts/{payout_id}/approve [post]
func (h *PayoutHandler) Approve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payout_id"), 10, 32)
	approverID := middleware.GetUserID(c)

	payout, err := h.payoutService.Approve(c.Request.Context(), uint(id), approverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "payout": payout.ToResponse()})
}

// @Summary Retry Payout
// @Description Direct retries are always refused; failed payouts are re-processed through the approval flow
// @Tags Payouts
// @Accept json
// @Produce json
// @Param payout_id path int true "Payout ID"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /admin/payouts/{payout_id}/retry [post]
func (h *PayoutHandler) Retry(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payout_id"), 10, 32)
	actorID := middleware.GetUserID(c)

	err := h.payoutService.Retry(c.Request.Context(), uint(id), actorID)
	respondError(c, err)
}
