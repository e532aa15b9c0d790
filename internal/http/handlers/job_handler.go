package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thorzos/handyhub-backend/internal/http/handlers/common"
	"github.com/thorzos/handyhub-backend/internal/repository"
	"github.com/thorzos/handyhub-backend/internal/service"
)

type JobHandler struct {
	jobs   *service.JobService
	offers *service.OfferService
}

func NewJobHandler(jobs *service.JobService, offers *service.OfferService) *JobHandler {
	return &JobHandler{jobs: jobs, offers: offers}
}

type jobRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category" binding:"required"`
	Deadline    *time.Time `json:"deadline"`
	PropertyID  *uuid.UUID `json:"property_id"`
}

func (r jobRequest) toInput() service.JobInput {
	return service.JobInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Deadline:    r.Deadline,
		PropertyID:  r.PropertyID,
	}
}

// Create handles POST /jobs.
func (h *JobHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req jobRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), userID, role, req.toInput())
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// Get handles GET /jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
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

	job, err := h.jobs.GetByID(c.Request.Context(), jobID, userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Update handles PUT /jobs/:id.
func (h *JobHandler) Update(c *gin.Context) {
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

	var req jobRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), jobID, userID, req.toInput())
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// MarkDone handles POST /jobs/:id/done.
func (h *JobHandler) MarkDone(c *gin.Context) {
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

	job, err := h.jobs.MarkDone(c.Request.Context(), jobID, userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Delete handles DELETE /jobs/:id.
func (h *JobHandler) Delete(c *gin.Context) {
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

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), jobID, userID, role); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOwn handles GET /jobs (customer's own jobs).
func (h *JobHandler) ListOwn(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	jobs, err := h.jobs.ListForCustomer(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// ListOpen handles GET /jobs/open (worker feed).
func (h *JobHandler) ListOpen(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)
	limit, offset := common.Pagination(c)

	jobs, err := h.jobs.ListOpenForWorker(c.Request.Context(), userID, role, limit, offset)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func searchFilterFromQuery(c *gin.Context) repository.JobSearchFilter {
	var filter repository.JobSearchFilter
	filter.Title = c.Query("title")
	if cats, ok := c.GetQueryArray("category"); ok {
		filter.Categories = cats
	}
	if statuses, ok := c.GetQueryArray("status"); ok {
		filter.Statuses = statuses
	}
	if raw := c.Query("deadline"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.Deadline = &t
		}
	}
	if raw := c.Query("property_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.PropertyID = &id
		}
	}
	if raw := c.Query("max_km"); raw != "" {
		if km, err := strconv.ParseFloat(raw, 64); err == nil && km > 0 {
			filter.MaxKm = &km
		}
	}
	return filter
}

// SearchOpen handles GET /jobs/open/search.
func (h *JobHandler) SearchOpen(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)
	limit, offset := common.Pagination(c)

	jobs, err := h.jobs.SearchOpenForWorker(c.Request.Context(), userID, role, searchFilterFromQuery(c), limit, offset)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// SearchOwn handles GET /jobs/search (customer's own jobs).
func (h *JobHandler) SearchOwn(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	limit, offset := common.Pagination(c)

	jobs, err := h.jobs.SearchForCustomer(c.Request.Context(), userID, searchFilterFromQuery(c), limit, offset)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// LowestPrice handles GET /jobs/:id/lowest-price.
func (h *JobHandler) LowestPrice(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	lowest, err := h.offers.FindLowestPrice(c.Request.Context(), jobID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lowest_price": lowest})
}
