package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/internal/bucket"
	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/internal/semester"
	"github.com/ayudapp/ayudapp-api/pkg/analyzer"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
	"github.com/ayudapp/ayudapp-api/pkg/paging"
)

type reviewWriterRepo interface {
	FindByID(ctx context.Context, id string) (*models.Review, error)
	ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]models.Review, int, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
}

type reviewCourseRepo interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindTaTypeByName(ctx context.Context, name string) (*models.TaType, error)
	CreateTaType(ctx context.Context, taType *models.TaType) error
}

type documentAnalyzer interface {
	Analyze(ctx context.Context, filename string, document io.Reader, courseInitial string) (*analyzer.Verdict, error)
}

type statsCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ReviewRequest is the write payload for creating or updating a review.
// Salary and hours arrive as form bucket values and are encoded to stored
// bounds here; CustomTaType creates a new TA type when no existing one
// matches it.
type ReviewRequest struct {
	CourseID     string `json:"course_id" validate:"required"`
	Semester     string `json:"semester" validate:"required"`
	TaTypeID     string `json:"ta_type_id"`
	CustomTaType string `json:"custom_ta_type"`
	Professor    string `json:"professor"`
	SalaryBucket string `json:"salary_bucket"`
	HoursBucket  string `json:"hours_bucket"`
	CustomHours  string `json:"custom_hours"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required"`
	Anonymous    bool   `json:"anonymous"`
	AuthorName   string `json:"author_name"`
	// ValidationToken is the token issued by ValidateDocument. The review is
	// stored validated only when it verifies for the same course; submitting
	// without one is the explicit choice to stay unvalidated.
	ValidationToken string `json:"validation_token"`
}

// ValidationOutcome is the analyzer verdict plus, when the document checked
// out, a signed token the client sends back with the review submission.
type ValidationOutcome struct {
	Valid            bool                       `json:"valid"`
	ExtractedCourses []analyzer.ExtractedCourse `json:"extracted_courses"`
	ValidationToken  string                     `json:"validation_token,omitempty"`
}

// validationTokenTTL bounds how long a verdict stays usable; long enough to
// finish writing the review, short enough that tokens are not stockpiled.
const validationTokenTTL = time.Hour

// ReviewFormValues are the decoded form selections for reopening a review
// in the edit form.
type ReviewFormValues struct {
	Review       *models.Review              `json:"review"`
	SalaryBucket string                      `json:"salary_bucket"`
	Hours        *bucket.HoursReconstruction `json:"hours,omitempty"`
}

// ReviewService orchestrates the review write path: payload validation,
// bucket encoding, the anonymity invariant, TA-type resolution and the
// document-validation verdict.
type ReviewService struct {
	reviews     reviewWriterRepo
	courses     reviewCourseRepo
	semesters   *semester.Sequence
	analyzer    documentAnalyzer
	cache       statsCacheInvalidator
	tokenSecret []byte
	pageSize    int
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReviewService constructs ReviewService. tokenSecret signs the
// document-validation tokens that bind a verdict to a later submission.
func NewReviewService(reviews reviewWriterRepo, courses reviewCourseRepo, semesters *semester.Sequence, docAnalyzer documentAnalyzer, cache statsCacheInvalidator, tokenSecret string, pageSize int, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 25
	}
	return &ReviewService{
		reviews:     reviews,
		courses:     courses,
		semesters:   semesters,
		analyzer:    docAnalyzer,
		cache:       cache,
		tokenSecret: []byte(tokenSecret),
		pageSize:    pageSize,
		validator:   validate,
		logger:      logger,
	}
}

// Create validates and persists a new review.
func (s *ReviewService) Create(ctx context.Context, req ReviewRequest, userID *string) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if !s.semesters.IsValid(req.Semester) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("semester %q is outside the accepted range", req.Semester))
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "load course")
	}

	taTypeID, err := s.resolveTaType(ctx, req)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		CourseID:    req.CourseID,
		Semester:    req.Semester,
		TaTypeID:    taTypeID,
		Rating:      req.Rating,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Anonymous:   req.Anonymous,
		Validated:   s.verifyValidationToken(req.ValidationToken, req.CourseID),
	}
	if err := s.applyFormFields(review, req, userID); err != nil {
		return nil, err
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "create review")
	}

	s.invalidateStats(ctx, review.CourseID)
	s.logger.Info("review created",
		zap.String("review_id", review.ID),
		zap.String("course_id", review.CourseID),
		zap.Bool("validated", review.Validated))
	return review, nil
}

// Update modifies an existing review. Only its author may edit it, and an
// anonymous review has no author, so it is immutable.
func (s *ReviewService) Update(ctx context.Context, id string, req ReviewRequest, userID *string) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if !s.semesters.IsValid(req.Semester) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("semester %q is outside the accepted range", req.Semester))
	}

	existing, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	taTypeID, err := s.resolveTaType(ctx, req)
	if err != nil {
		return nil, err
	}

	existing.Semester = req.Semester
	existing.TaTypeID = taTypeID
	existing.Rating = req.Rating
	existing.Title = strings.TrimSpace(req.Title)
	existing.Description = strings.TrimSpace(req.Description)
	existing.Anonymous = req.Anonymous
	// Editing without re-uploading a document keeps the stored verdict.
	if req.ValidationToken != "" {
		existing.Validated = s.verifyValidationToken(req.ValidationToken, existing.CourseID)
	}
	if err := s.applyFormFields(existing, req, userID); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "update review")
	}

	s.invalidateStats(ctx, existing.CourseID)
	return existing, nil
}

// Delete removes a review owned by the caller.
func (s *ReviewService) Delete(ctx context.Context, id string, userID *string) error {
	if _, err := s.loadOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "delete review")
	}
	s.invalidateStats(ctx, "")
	return nil
}

// Get returns one review by id.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "load review")
	}
	return review, nil
}

// GetForEdit loads a review and decodes its stored salary bounds and hours
// back into the form selections that produced them.
func (s *ReviewService) GetForEdit(ctx context.Context, id string, userID *string) (*ReviewFormValues, error) {
	review, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	values := &ReviewFormValues{
		Review:       review,
		SalaryBucket: bucket.DecodeSalary(bucket.SalaryBounds{Min: review.MinSalary, Max: review.MaxSalary}),
	}
	if review.MonthHours != nil {
		hours := bucket.ReconstructHours(*review.MonthHours)
		values.Hours = &hours
	}
	return values, nil
}

// ListByCourse returns one page of a course's reviews, newest first.
func (s *ReviewService) ListByCourse(ctx context.Context, courseID string, page int) (*models.SearchResultSet, error) {
	if page < 1 {
		page = 1
	}
	reviews, total, err := s.reviews.ListByCourse(ctx, courseID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "list course reviews")
	}

	pg := paging.Paginate(total, s.pageSize, page)
	return &models.SearchResultSet{
		Reviews:    reviews,
		TotalCount: total,
		Page:       pg.Page,
		TotalPages: pg.TotalPages,
		PageWindow: paging.Window(pg.Page, pg.TotalPages),
	}, nil
}

// ValidateDocument runs the TA-appointment document through the analyzer.
// A positive verdict comes back with a signed token; Create and Update set
// the stored validated flag only from that token, never from a client bool.
// Analyzer unavailability is reported as a typed non-fatal error: the caller
// keeps the explicit choice to submit the review unvalidated.
func (s *ReviewService) ValidateDocument(ctx context.Context, courseID, filename string, document io.Reader) (*ValidationOutcome, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "load course")
	}

	verdict, err := s.analyzer.Analyze(ctx, filename, document, course.Initial)
	if err != nil {
		s.logger.Warn("document analysis unavailable", zap.Error(err), zap.String("course_id", courseID))
		return nil, appErrors.Wrap(err, appErrors.ErrValidationService.Code, appErrors.ErrValidationService.Status, appErrors.ErrValidationService.Message)
	}

	outcome := &ValidationOutcome{Valid: verdict.Valid, ExtractedCourses: verdict.ExtractedCourses}
	if verdict.Valid {
		token, err := s.issueValidationToken(courseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "issue validation token")
		}
		outcome.ValidationToken = token
	}
	return outcome, nil
}

func (s *ReviewService) issueValidationToken(courseID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   courseID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validationTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.tokenSecret)
}

// verifyValidationToken reports whether the token was issued here for the
// same course and has not expired. A missing or stale token just leaves the
// review unvalidated, it never fails the submission.
func (s *ReviewService) verifyValidationToken(token, courseID string) bool {
	if token == "" {
		return false
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.tokenSecret, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	return ok && claims.Subject == courseID
}

// applyFormFields encodes the bucketed selections and enforces the
// anonymity invariant: an anonymous review carries neither user id nor
// author name.
func (s *ReviewService) applyFormFields(review *models.Review, req ReviewRequest, userID *string) error {
	bounds, err := bucket.EncodeSalary(req.SalaryBucket)
	if err != nil {
		return err
	}
	review.MinSalary = bounds.Min
	review.MaxSalary = bounds.Max

	hours, err := bucket.EncodeHours(bucket.HoursSelection{
		Bucket:    req.HoursBucket,
		Custom:    req.CustomHours,
		UseCustom: strings.TrimSpace(req.CustomHours) != "",
	})
	if err != nil {
		return err
	}
	review.MonthHours = hours

	if professor := strings.TrimSpace(req.Professor); professor != "" {
		review.Professor = &professor
	} else {
		review.Professor = nil
	}

	if req.Anonymous {
		review.UserID = nil
		review.AuthorName = nil
	} else {
		review.UserID = userID
		if name := strings.TrimSpace(req.AuthorName); name != "" {
			review.AuthorName = &name
		} else {
			review.AuthorName = nil
		}
	}
	return nil
}

// resolveTaType returns the TA type id for the request, creating a new type
// when a custom name has no existing case-insensitive match.
func (s *ReviewService) resolveTaType(ctx context.Context, req ReviewRequest) (string, error) {
	custom := strings.TrimSpace(req.CustomTaType)
	if custom == "" {
		if req.TaTypeID == "" {
			return "", appErrors.Clone(appErrors.ErrInvalidInput, "a TA type or custom TA type is required")
		}
		return req.TaTypeID, nil
	}

	existing, err := s.courses.FindTaTypeByName(ctx, custom)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "look up ta type")
	}

	taType := &models.TaType{Name: custom}
	if err := s.courses.CreateTaType(ctx, taType); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "create ta type")
	}
	s.logger.Info("custom ta type created", zap.String("name", custom), zap.String("id", taType.ID))
	return taType.ID, nil
}

func (s *ReviewService) loadOwned(ctx context.Context, id string, userID *string) (*models.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "load review")
	}
	if review.UserID == nil || userID == nil || *review.UserID != *userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "review does not belong to the caller")
	}
	return review, nil
}

func (s *ReviewService) invalidateStats(ctx context.Context, courseID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "stats:*"); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err), zap.String("course_id", courseID))
	}
}
