package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thorzos/handyhub-backend/internal/http/handlers/common"
	"github.com/thorzos/handyhub-backend/internal/service"
)

type LicenseHandler struct {
	licenses *service.LicenseService
}

func NewLicenseHandler(licenses *service.LicenseService) *LicenseHandler {
	return &LicenseHandler{licenses: licenses}
}

type licenseRequest struct {
	Filename    string  `json:"filename" binding:"required"`
	Description *string `json:"description"`
}

// Submit handles POST /licenses.
func (h *LicenseHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req licenseRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	license, err := h.licenses.Submit(c.Request.Context(), userID, role, req.Filename, req.Description)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, license)
}

// ListOwn handles GET /licenses.
func (h *LicenseHandler) ListOwn(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	licenses, err := h.licenses.ListOwn(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, licenses)
}

// ListPending handles GET /admin/licenses (admin review queue).
func (h *LicenseHandler) ListPending(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	limit, offset := common.Pagination(c)

	licenses, err := h.licenses.ListPending(c.Request.Context(), role, limit, offset)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, licenses)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// Review handles POST /admin/licenses/:id/review.
func (h *LicenseHandler) Review(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	licenseID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req reviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	license, err := h.licenses.Review(c.Request.Context(), licenseID, role, req.Approve)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, license)
}

// Delete handles DELETE /licenses/:id.
func (h *LicenseHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	licenseID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.licenses.Delete(c.Request.Context(), licenseID, userID); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
