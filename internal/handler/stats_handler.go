package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/pkg/response"
)

type statsProvider interface {
	List(ctx context.Context, filter models.StatsFilter) (*models.StatsResultSet, error)
	GetByCourse(ctx context.Context, courseID string) (*models.CourseStats, error)
}

// StatsHandler exposes the per-course statistics explorer.
type StatsHandler struct {
	stats statsProvider
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats statsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// List godoc
// @Summary Paginated course statistics
// @Tags Stats
// @Produce json
// @Param q query string false "Free text query"
// @Param course_initial query string false "Course code fragment"
// @Param course_prefix query string false "3-letter subject prefix"
// @Param max_hours query number false "Maximum average monthly hours"
// @Param min_salary query number false "Minimum average salary midpoint"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /stats/courses [get]
func (h *StatsHandler) List(c *gin.Context) {
	maxHours, err := floatQuery(c, "max_hours")
	if err != nil {
		response.Error(c, err)
		return
	}
	minSalary, err := floatQuery(c, "min_salary")
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := models.StatsFilter{
		CourseInitial: c.Query("course_initial"),
		CoursePrefix:  c.Query("course_prefix"),
		SearchQuery:   c.Query("q"),
		MaxAvgHours:   maxHours,
		MinAvgSalary:  minSalary,
		Page:          intQuery(c, "page", 1),
		PageSize:      intQuery(c, "page_size", 0),
	}

	set, err := h.stats.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, set, set.Page, filter.PageSize, set.TotalCount, set.TotalPages)
}

// GetByCourse godoc
// @Summary Statistics for one course
// @Tags Stats
// @Produce json
// @Param id path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /stats/courses/{id} [get]
func (h *StatsHandler) GetByCourse(c *gin.Context) {
	stats, err := h.stats.GetByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
