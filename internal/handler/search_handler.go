package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayudapp/ayudapp-api/internal/bucket"
	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/internal/service"
	"github.com/ayudapp/ayudapp-api/pkg/response"
)

type searchPlanner interface {
	Search(ctx context.Context, query string, filter models.CourseFilter, page int) *models.SearchResultSet
}

// SearchHandler exposes the review search endpoint.
type SearchHandler struct {
	planner  searchPlanner
	metrics  *service.MetricsService
	pageSize int
}

// NewSearchHandler constructs handler.
func NewSearchHandler(planner searchPlanner, metrics *service.MetricsService, pageSize int) *SearchHandler {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &SearchHandler{planner: planner, metrics: metrics, pageSize: pageSize}
}

// Search godoc
// @Summary Search reviews
// @Tags Search
// @Produce json
// @Param q query string false "Free text query"
// @Param course_initial query string false "Course code fragment"
// @Param course_prefix query string false "3-letter subject prefix"
// @Param min_rating query number false "Minimum rating"
// @Param min_salary query string false "Salary bucket value used as floor"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	filter, err := parseCourseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	start := time.Now()
	set := h.planner.Search(c.Request.Context(), c.Query("q"), filter, intQuery(c, "page", 1))
	h.metrics.ObserveSearch(set.Failed, time.Since(start))

	response.Paginated(c, set, set.Page, h.pageSize, set.TotalCount, set.TotalPages)
}

// parseCourseFilter reads the structured filters. The salary filter arrives
// as a bucket wire value; its lower bound becomes the floor predicate.
func parseCourseFilter(c *gin.Context) (models.CourseFilter, error) {
	filter := models.CourseFilter{
		CourseInitial: c.Query("course_initial"),
		CoursePrefix:  c.Query("course_prefix"),
	}

	minRating, err := floatQuery(c, "min_rating")
	if err != nil {
		return models.CourseFilter{}, err
	}
	filter.MinRating = minRating

	if raw := c.Query("min_salary"); raw != "" {
		bounds, err := bucket.EncodeSalary(raw)
		if err != nil {
			return models.CourseFilter{}, err
		}
		filter.MinSalaryFloor = bounds.Min
	}

	return filter, nil
}
