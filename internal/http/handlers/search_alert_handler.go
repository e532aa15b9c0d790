package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thorzos/handyhub-backend/internal/http/handlers/common"
	"github.com/thorzos/handyhub-backend/internal/service"
)

type SearchAlertHandler struct {
	alerts *service.SearchAlertService
}

func NewSearchAlertHandler(alerts *service.SearchAlertService) *SearchAlertHandler {
	return &SearchAlertHandler{alerts: alerts}
}

type searchAlertRequest struct {
	Keywords    *string  `json:"keywords"`
	Categories  []string `json:"categories"`
	MaxDistance *float64 `json:"max_distance"`
}

// Create handles POST /alerts.
func (h *SearchAlertHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req searchAlertRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), userID, role, service.SearchAlertInput{
		Keywords:    req.Keywords,
		Categories:  req.Categories,
		MaxDistance: req.MaxDistance,
	})
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// List handles GET /alerts.
func (h *SearchAlertHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	alerts, err := h.alerts.List(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive handles PATCH /alerts/:id/active.
func (h *SearchAlertHandler) SetActive(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	alertID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req setActiveRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.alerts.SetActive(c.Request.Context(), alertID, userID, req.Active); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetCount handles POST /alerts/:id/reset.
func (h *SearchAlertHandler) ResetCount(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	alertID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.alerts.ResetCount(c.Request.Context(), alertID, userID); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /alerts/:id.
func (h *SearchAlertHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	alertID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.alerts.Delete(c.Request.Context(), alertID, userID); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
