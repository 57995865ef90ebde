package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/internal/service"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
	"github.com/ayudapp/ayudapp-api/pkg/response"
)

type reportManager interface {
	CreateJob(ctx context.Context, format models.ReportFormat, params models.ReportParams) (*models.ReportJob, error)
	Status(ctx context.Context, id string) (*service.ReportStatusView, error)
	Download(ctx context.Context, token string) (*service.ReportDownload, error)
}

// CreateReportRequest is the report creation payload.
type CreateReportRequest struct {
	Format models.ReportFormat `json:"format" binding:"required"`
	Params models.ReportParams `json:"params"`
}

// ReportHandler exposes asynchronous report generation endpoints.
type ReportHandler struct {
	reports reportManager
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportManager) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create godoc
// @Summary Queue a course-stats report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body CreateReportRequest true "Report payload"
// @Success 202 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.reports.CreateJob(c.Request.Context(), req.Format, req.Params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	view, err := h.reports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Download godoc
// @Summary Download a generated report
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "token is required"))
		return
	}

	download, err := h.reports.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if download.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", contentType)
	c.File(download.File.Name())
}
