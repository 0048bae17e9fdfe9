package handlers

import (
	"net/http"

	"github.com/fleuri/fleuri-api/internal/middleware"
	"github.com/fleuri/fleuri-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RetentionHandler struct {
	retentionService *services.RetentionService
}

func NewRetentionHandler(retentionService *services.RetentionService) *RetentionHandler {
	return &RetentionHandler{retentionService: retentionService}
}

// @Summary Preview Retention Purge
// @Description Count what a purge run would delete, without deleting anything
// @Tags Retention
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/retention/preview [get]
func (h *RetentionHandler) Preview(c *gin.Context) {
	actorID := middleware.GetUserID(c)

	result, err := h.retentionService.Run(c.Request.Context(), services.RunOptions{
		DryRun:  true,
		ActorID: &actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "retention": result})
}

// RunRetentionRequest is the body of a purge run. Reason is optional but
// length-checked when present; it ends up verbatim in the audit trail.
type RunRetentionRequest struct {
	DryRun bool    `json:"dry_run"`
	Reason *string `json:"reason" binding:"omitempty,min=3,max=500"`
}

// @Summary Run Retention Purge
// @Description Delete rows past their retention window. An optional reason is recorded in the audit trail.
// @Tags Retention
// @Accept json
// @Produce json
// @Param request body RunRetentionRequest true "Run Options"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /admin/retention/run [post]
func (h *RetentionHandler) Run(c *gin.Context) {
	var req RunRetentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := middleware.GetUserID(c)
	result, err := h.retentionService.Run(c.Request.Context(), services.RunOptions{
		DryRun:  req.DryRun,
		ActorID: &actorID,
		Reason:  req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "retention": result})
}
