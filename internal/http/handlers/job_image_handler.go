package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thorzos/handyhub-backend/internal/http/handlers/common"
	"github.com/thorzos/handyhub-backend/internal/service"
)

type JobImageHandler struct {
	images *service.JobImageService
}

func NewJobImageHandler(images *service.JobImageService) *JobImageHandler {
	return &JobImageHandler{images: images}
}

// Upload handles POST /jobs/:id/images (multipart form, field "image").
func (h *JobImageHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondBadRequest(c, "multipart field 'image' is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "cannot read upload")
		return
	}
	defer file.Close()

	image, err := h.images.Upload(c.Request.Context(), jobID, userID, fileHeader.Filename, file)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

// List handles GET /jobs/:id/images.
func (h *JobImageHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	images, err := h.images.List(c.Request.Context(), jobID, userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// Download handles GET /images/:id.
func (h *JobImageHandler) Download(c *gin.Context) {
	imageID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	image, rc, err := h.images.Open(c.Request.Context(), imageID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", image.ContentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

// Delete handles DELETE /images/:id.
func (h *JobImageHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	imageID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.images.Delete(c.Request.Context(), imageID, userID); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
