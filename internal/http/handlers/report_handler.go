package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/http/handlers/common"
	"github.com/thorzos/handyhub-backend/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportRequest struct {
	TargetID uuid.UUID  `json:"target_id" binding:"required"`
	JobID    *uuid.UUID `json:"job_id"`
	Reason   string     `json:"reason" binding:"required"`
}

// File handles POST /reports.
func (h *ReportHandler) File(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req reportRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.File(c.Request.Context(), userID, service.ReportInput{
		TargetID: req.TargetID,
		JobID:    req.JobID,
		Reason:   req.Reason,
	})
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListOpen handles GET /admin/reports.
func (h *ReportHandler) ListOpen(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	limit, offset := common.Pagination(c)

	reports, err := h.reports.ListOpen(c.Request.Context(), role, limit, offset)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Close handles POST /admin/reports/:id/close.
func (h *ReportHandler) Close(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.reports.Close(c.Request.Context(), reportID, role); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
