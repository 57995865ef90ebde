package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/internal/service"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
	"github.com/ayudapp/ayudapp-api/pkg/response"
)

type reviewManager interface {
	Create(ctx context.Context, req service.ReviewRequest, userID *string) (*models.Review, error)
	Update(ctx context.Context, id string, req service.ReviewRequest, userID *string) (*models.Review, error)
	Delete(ctx context.Context, id string, userID *string) error
	Get(ctx context.Context, id string) (*models.Review, error)
	GetForEdit(ctx context.Context, id string, userID *string) (*service.ReviewFormValues, error)
	ListByCourse(ctx context.Context, courseID string, page int) (*models.SearchResultSet, error)
	ValidateDocument(ctx context.Context, courseID, filename string, document io.Reader) (*service.ValidationOutcome, error)
}

// ReviewHandler exposes the review lifecycle endpoints.
type ReviewHandler struct {
	reviews     reviewManager
	maxFileSize int64
}

// NewReviewHandler constructs handler.
func NewReviewHandler(reviews reviewManager, maxFileSize int64) *ReviewHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &ReviewHandler{reviews: reviews, maxFileSize: maxFileSize}
}

// Create godoc
// @Summary Create review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body service.ReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	review, err := h.reviews.Create(c.Request.Context(), req, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// Update godoc
// @Summary Update review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review id"
// @Param payload body service.ReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Update(c *gin.Context) {
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	review, err := h.reviews.Update(c.Request.Context(), c.Param("id"), req, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, nil)
}

// Delete godoc
// @Summary Delete review
// @Tags Reviews
// @Param id path string true "Review id"
// @Success 204
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.reviews.Delete(c.Request.Context(), c.Param("id"), userIDFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Get review
// @Tags Reviews
// @Produce json
// @Param id path string true "Review id"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	review, err := h.reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, nil)
}

// GetForEdit godoc
// @Summary Review form values for editing
// @Tags Reviews
// @Produce json
// @Param id path string true "Review id"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id}/edit [get]
func (h *ReviewHandler) GetForEdit(c *gin.Context) {
	values, err := h.reviews.GetForEdit(c.Request.Context(), c.Param("id"), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, values, nil)
}

// ListByCourse godoc
// @Summary List a course's reviews
// @Tags Reviews
// @Produce json
// @Param id path string true "Course id"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/reviews [get]
func (h *ReviewHandler) ListByCourse(c *gin.Context) {
	set, err := h.reviews.ListByCourse(c.Request.Context(), c.Param("id"), intQuery(c, "page", 1))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, set, set.Page, 0, set.TotalCount, set.TotalPages)
}

// ValidateDocument godoc
// @Summary Validate a TA appointment document
// @Tags Reviews
// @Accept multipart/form-data
// @Produce json
// @Param course_id formData string true "Course id"
// @Param document formData file true "Appointment document"
// @Success 200 {object} response.Envelope
// @Router /reviews/validate-document [post]
func (h *ReviewHandler) ValidateDocument(c *gin.Context) {
	courseID := c.PostForm("course_id")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "course_id is required"))
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "document file is required"))
		return
	}
	if fileHeader.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "document exceeds the maximum file size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open uploaded document"))
		return
	}
	defer file.Close()

	outcome, err := h.reviews.ValidateDocument(c.Request.Context(), courseID, fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}
