package interfaces

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ranker/domain"
)

type jobRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type jobPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func parseJobID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// ListJobs is public. mine=true narrows the list to the caller's jobs and
// then requires a token.
func (h *HTTPHandler) ListJobs(c *gin.Context) {
	filter := domain.JobFilter{Search: c.Query("search")}
	if c.Query("mine") == "true" {
		userID, ok := currentUserID(c)
		if !ok {
			h.writeError(c, domain.ErrUnauthorized)
			return
		}
		filter.OwnerID = &userID
	}

	page, ok := parsePage(c)
	if !ok {
		return
	}

	jobs, total, err := h.jobs.List(c.Request.Context(), filter, page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.paginated(c, page, total, jobs))
}

func (h *HTTPHandler) GetJob(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *HTTPHandler) CreateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		badRequest(c, "title and description are required")
		return
	}
	userID, _ := currentUserID(c)

	job := &domain.JobDescription{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedByID: userID,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *HTTPHandler) ReplaceJob(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		badRequest(c, "title and description are required")
		return
	}
	h.saveJob(c, &domain.JobDescription{ID: id, Title: strings.TrimSpace(req.Title), Description: req.Description})
}

func (h *HTTPHandler) PatchJob(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	var req jobPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			badRequest(c, "title must not be blank")
			return
		}
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	h.saveJob(c, job)
}

func (h *HTTPHandler) saveJob(c *gin.Context, job *domain.JobDescription) {
	userID, _ := currentUserID(c)
	if err := h.jobs.Update(c.Request.Context(), job, userID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *HTTPHandler) DeleteJob(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)
	if err := h.jobs.Delete(c.Request.Context(), id, userID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
