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

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// @Summary List Orders
// @Description Get a paginated list of orders. Buyers and sellers only see their own.
// @Tags Orders
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")

	var (
		orders []models.Order
		total  int64
		err    error
	)
	switch {
	case middleware.IsAdmin(c):
		orders, total, err = h.orderService.List(c.Request.Context(), query)
	case middleware.IsSeller(c):
		orders, total, err = h.orderService.ListBySeller(c.Request.Context(), middleware.GetUserID(c), query)
	default:
		orders, total, err = h.orderService.ListByBuyer(c.Request.Context(), middleware.GetUserID(c), query)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []models.OrderResponse
	for i := range orders {
		responses = append(responses, orders[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Order
// @Description Get an order by ID
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{order_id} [get]
func (h *OrderHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.orderService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	if !middleware.IsAdmin(c) && order.BuyerID != userID && order.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

type CreateOrderRequest struct {
	ProductID    uint       `json:"product_id" binding:"required"`
	Quantity     int        `json:"quantity"`
	DeliveryDate *time.Time `json:"delivery_date"`
	DeliveryNote *string    `json:"delivery_note"`
}

// @Summary Place Order
// @Description Place a new order; the seller's current commission rate is snapshotted onto it
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order Data"
// @Success 201 {object} models.OrderResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := BindNestedOrFlat(c, "order", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ProductID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	order, err := h.orderService.Create(c.Request.Context(), services.CreateOrderInput{
		BuyerID:      middleware.GetUserID(c),
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		DeliveryDate: req.DeliveryDate,
		DeliveryNote: req.DeliveryNote,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order.ToResponse()})
}

// @Summary Mark Order Preparing
// @Description Move a placed order into preparation
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{order_id}/prepare [post]
func (h *OrderHandler) MarkPreparing(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.orderService.MarkPreparing(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

// @Summary Mark Order Delivered
// @Description Mark an order as delivered, starting its retention clock
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{order_id}/deliver [post]
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.orderService.MarkDelivered(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

// @Summary Cancel Order
// @Description Cancel an order that has not been delivered
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{order_id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)

	order, err := h.orderService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	userID := middleware.GetUserID(c)
	if !middleware.IsAdmin(c) && order.BuyerID != userID && order.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
		return
	}

	order, err = h.orderService.Cancel(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

type LegalHoldRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// @Summary Set Legal Hold
// @Description Flag an order so the retention purge never deletes it
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body LegalHoldRequest true "Hold Reason"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /admin/orders/{order_id}/legal_hold [post]
func (h *OrderHandler) SetLegalHold(c *gin.Context) {
	h.setHold(c, true)
}

// @Summary Release Legal Hold
// @Description Release a previously set legal hold
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body LegalHoldRequest true "Release Reason"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /admin/orders/{order_id}/legal_hold [delete]
func (h *OrderHandler) ReleaseLegalHold(c *gin.Context) {
	h.setHold(c, false)
}

func (h *OrderHandler) setHold(c *gin.Context, hold bool) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)

	var req LegalHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required (3-500 characters)"})
		return
	}

	actorID := middleware.GetUserID(c)
	order, err := h.orderService.SetLegalHold(c.Request.Context(), uint(id), hold, actorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}
