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

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// @Summary List Products
// @Description Get a paginated list of products
// @Tags Products
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name"
// @Param seller_id query int false "Filter by seller"
// @Success 200 {object} map[string]interface{}
// @Router /products [get]
func (h *ProductHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = models.ProductStatusActive

	var (
		products []models.Product
		total    int64
		err      error
	)
	if sellerID, _ := strconv.ParseUint(c.Query("seller_id"), 10, 32); sellerID > 0 {
		products, total, err = h.productService.ListBySeller(c.Request.Context(), uint(sellerID), query)
	} else {
		products, total, err = h.productService.List(c.Request.Context(), query)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []models.ProductResponse
	for _, p := range products {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"products": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Product
// @Description Get a product by ID
// @Tags Products
// @Accept json
// @Produce json
// @Param product_id path int true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} map[string]string
// @Router /products/{product_id} [get]
func (h *ProductHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("product_id"), 10, 32)
	product, err := h.productService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product.ToResponse()})
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents" binding:"required,gt=0"`
	Currency    string  `json:"currency"`
	Stock       int     `json:"stock"`
}

// @Summary Create Product
// @Description Create a new product in the current seller's shop
// @Tags Products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product Data"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := BindNestedOrFlat(c, "product", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.PriceCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and a positive price_cents are required"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	product := &models.Product{
		SellerID:    middleware.GetUserID(c),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    currency,
		Stock:       req.Stock,
	}
	if err := h.productService.Create(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product.ToResponse()})
}

type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int    `json:"stock"`
	Status      *string `json:"status"`
}

// @Summary Update Product
// @Description Update a product's fields. Only the owning seller or an admin may update.
// @Tags Products
// @Accept json
// @Produce json
// @Param product_id path int true "Product ID"
// @Param request body UpdateProductRequest true "Product Data"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /products/{product_id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("product_id"), 10, 32)
	product, err := h.productService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	if !middleware.IsAdmin(c) && product.SellerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
		return
	}

	var req UpdateProductRequest
	if err := BindNestedOrFlat(c, "product", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := h.productService.Update(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product.ToResponse()})
}

// @Summary Archive Product
// @Description Remove a product from sale while preserving order history
// @Tags Products
// @Accept json
// @Produce json
// @Param product_id path int true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /products/{product_id}/archive [post]
func (h *ProductHandler) Archive(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("product_id"), 10, 32)

	product, err := h.productService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if !middleware.IsAdmin(c) && product.SellerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
		return
	}

	actorID := middleware.GetUserID(c)
	if err := h.productService.Archive(c.Request.Context(), uint(id), actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product archived"})
}
