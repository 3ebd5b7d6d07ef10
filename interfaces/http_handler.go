package interfaces

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resume-ranker/analysis"
	"resume-ranker/domain"
	"resume-ranker/infrastructure"
)

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.AnalyzeResult, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	OpenDocument(ctx context.Context, id string) (*domain.Resume, io.ReadCloser, error)
}

type ResumeQueries interface {
	Get(ctx context.Context, id string) (*domain.Resume, error)
	List(ctx context.Context, filter domain.ResumeFilter, sort domain.ResumeSort, page domain.Page) ([]domain.Resume, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Resume, error)
}

type JobStore interface {
	Create(ctx context.Context, job *domain.JobDescription) error
	Get(ctx context.Context, id uint) (*domain.JobDescription, error)
	List(ctx context.Context, filter domain.JobFilter, page domain.Page) ([]domain.JobDescription, int64, error)
	Update(ctx context.Context, job *domain.JobDescription, ownerID uint) error
	Delete(ctx context.Context, id uint, ownerID uint) error
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type TokenStore interface {
	Issue(ctx context.Context, userID uint) (string, error)
	Resolve(ctx context.Context, token string) (uint, error)
	Revoke(ctx context.Context, token string) error
}

type Deps struct {
	Analyzer      Analyzer
	Resumes       ResumeQueries
	Jobs          JobStore
	Users         Authenticator
	Tokens        TokenStore
	Logger        infrastructure.Logger
	MaxUploadSize int64
	PublicURL     string
}

type HTTPHandler struct {
	analyzer      Analyzer
	resumes       ResumeQueries
	jobs          JobStore
	users         Authenticator
	tokens        TokenStore
	log           infrastructure.Logger
	maxUploadSize int64
	publicURL     string
}

func NewHTTPHandler(router *gin.Engine, deps Deps) *HTTPHandler {
	h := &HTTPHandler{
		analyzer:      deps.Analyzer,
		resumes:       deps.Resumes,
		jobs:          deps.Jobs,
		users:         deps.Users,
		tokens:        deps.Tokens,
		log:           deps.Logger,
		maxUploadSize: deps.MaxUploadSize,
		publicURL:     deps.PublicURL,
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = 10 << 20
	}

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/api-token-auth/", h.ObtainToken)
	api.POST("/analyze-resume/", h.AnalyzeResume)
	api.GET("/jobs/", h.optionalAuth, h.ListJobs)
	api.GET("/jobs/:id/", h.GetJob)

	authed := api.Group("", h.requireAuth)
	authed.POST("/logout/", h.Logout)
	authed.POST("/jobs/", h.CreateJob)
	authed.PUT("/jobs/:id/", h.ReplaceJob)
	authed.PATCH("/jobs/:id/", h.PatchJob)
	authed.DELETE("/jobs/:id/", h.DeleteJob)

	authed.GET("/resumes/", h.ListResumes)
	authed.POST("/resumes/delete/", h.BulkDeleteResumes)
	authed.GET("/resumes/:id/", h.GetResume)
	authed.DELETE("/resumes/:id/", h.DeleteResume)
	authed.GET("/resumes/:id/cv/", h.DownloadCV)
	authed.PATCH("/resumes/:id/update-status/", h.UpdateStatus)

	return h
}

// AnalyzeResume accepts a multipart PDF upload with an optional
// job_description_id and returns the stored, scored resume.
func (h *HTTPHandler) AnalyzeResume(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.writeError(c, err)
			return
		}
		badRequest(c, "No file uploaded.")
		return
	}

	var jobID *uint
	if raw := strings.TrimSpace(c.PostForm("job_description_id")); raw != "" && raw != "null" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "job_description_id must be an integer")
			return
		}
		v := uint(id)
		jobID = &v
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.writeError(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		h.writeError(c, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), analysis.AnalyzeRequest{
		Filename:         fileHeader.Filename,
		Document:         document,
		JobDescriptionID: jobID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Resume)
}

func (h *HTTPHandler) ListResumes(c *gin.Context) {
	var filter domain.ResumeFilter
	if raw := c.Query("job_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "job_id must be an integer")
			return
		}
		v := uint(id)
		filter.JobID = &v
	}
	filter.Search = c.Query("search")

	sort := domain.ResumeSort(c.DefaultQuery("sort_by", string(domain.SortByUploaded)))
	if !sort.Valid() {
		badRequest(c, "sort_by must be one of -score, name, -uploaded_on")
		return
	}

	page, ok := parsePage(c)
	if !ok {
		return
	}

	resumes, total, err := h.resumes.List(c.Request.Context(), filter, sort, page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.paginated(c, page, total, resumes))
}

func (h *HTTPHandler) GetResume(c *gin.Context) {
	resume, err := h.resumes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

func (h *HTTPHandler) DeleteResume(c *gin.Context) {
	if err := h.analyzer.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) DownloadCV(c *gin.Context) {
	resume, rc, err := h.analyzer.OpenDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rc.Close()

	filename := resume.OriginalFilename
	if filename == "" {
		filename = resume.ID + ".pdf"
	}
	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", filename),
	})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	resume, err := h.resumes.UpdateStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *HTTPHandler) BulkDeleteResumes(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		badRequest(c, "A list of 'ids' is required.")
		return
	}

	deleted, err := h.analyzer.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"message": fmt.Sprintf("%d resume(s) deleted successfully.", deleted),
	})
}
