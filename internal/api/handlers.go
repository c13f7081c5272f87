package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/intel"
	"github.com/jonesrussell/projectintel/internal/logger"
)

// Analyzer produces project reports.
type Analyzer interface {
	Analyze(ctx context.Context, project string) (*intel.Report, error)
}

// Previewer extracts preview metadata for one page.
type Previewer interface {
	Extract(ctx context.Context, rawURL string) (*discovery.PageMeta, error)
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalyzeRequest is the analyze endpoint's request body.
type AnalyzeRequest struct {
	Project string `json:"project" binding:"required"`
}

// Handler holds the HTTP request handlers.
type Handler struct {
	analyzer  Analyzer
	previewer Previewer
	log       logger.Logger
}

func NewHandler(analyzer Analyzer, previewer Previewer, log logger.Logger) *Handler {
	return &Handler{
		analyzer:  analyzer,
		previewer: previewer,
		log:       log,
	}
}

// Analyze runs the full analysis pipeline for the requested project.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "Invalid request body: " + err.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), req.Project)
	if err != nil {
		status, code := analyzeErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("Analysis failed",
				logger.String("project", req.Project),
				logger.Error(err),
			)
		}
		c.JSON(status, ErrorResponse{
			Error:     err.Error(),
			Code:      code,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

func analyzeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, intel.ErrEmptyProject):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, intel.ErrNoDiscovery):
		return http.StatusUnprocessableEntity, "NO_SOURCES_FOUND"
	default:
		return http.StatusInternalServerError, "ANALYSIS_ERROR"
	}
}

// PreviewRequest is the preview endpoint's request body.
type PreviewRequest struct {
	URL string `json:"url" binding:"required"`
}

// Preview fetches a page and returns its preview metadata, for clients
// rendering discovered URLs.
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "Invalid request body: " + err.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	meta, err := h.previewer.Extract(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:     err.Error(),
			Code:      "PREVIEW_FAILED",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, meta)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "projectintel",
	})
}
