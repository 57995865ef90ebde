package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/internal/bucket"
	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/internal/semester"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
)

const (
	cacheKeyPrefixes = "catalog:prefixes"
	cacheKeyTaTypes  = "catalog:ta_types"
)

type catalogCourseRepo interface {
	ListPrefixes(ctx context.Context) ([]models.CoursePrefix, error)
	ListTaTypes(ctx context.Context) ([]models.TaType, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CatalogService serves the option lists the review form and the filter bar
// bind to. Semester, salary and hours options are generated; prefixes and
// TA types are store-backed and cached.
type CatalogService struct {
	courses   catalogCourseRepo
	cache     catalogCache
	semesters *semester.Sequence
	ttl       time.Duration
	logger    *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(courses catalogCourseRepo, cache catalogCache, semesters *semester.Sequence, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{courses: courses, cache: cache, semesters: semesters, ttl: ttl, logger: logger}
}

// Semesters returns the semester labels, most recent first.
func (s *CatalogService) Semesters() []string {
	return s.semesters.LabelsDescending()
}

// SalaryOptions returns the bucketed salary option list.
func (s *CatalogService) SalaryOptions() []bucket.Option {
	return bucket.SalaryOptions()
}

// HoursOptions returns the bucketed monthly-hours option list.
func (s *CatalogService) HoursOptions() []bucket.Option {
	return bucket.HoursOptions()
}

// Prefixes returns the subject-area prefixes, cache-aside.
func (s *CatalogService) Prefixes(ctx context.Context) ([]models.CoursePrefix, error) {
	if s.cache != nil {
		var cached []models.CoursePrefix
		if err := s.cache.Get(ctx, cacheKeyPrefixes, &cached); err == nil {
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("prefix cache read failed", zap.Error(err))
		}
	}

	prefixes, err := s.courses.ListPrefixes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "list course prefixes")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyPrefixes, prefixes, s.ttl); err != nil {
			s.logger.Warn("prefix cache write failed", zap.Error(err))
		}
	}
	return prefixes, nil
}

// TaTypes returns the TA role types, cache-aside.
func (s *CatalogService) TaTypes(ctx context.Context) ([]models.TaType, error) {
	if s.cache != nil {
		var cached []models.TaType
		if err := s.cache.Get(ctx, cacheKeyTaTypes, &cached); err == nil {
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("ta type cache read failed", zap.Error(err))
		}
	}

	types, err := s.courses.ListTaTypes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "list ta types")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyTaTypes, types, s.ttl); err != nil {
			s.logger.Warn("ta type cache write failed", zap.Error(err))
		}
	}
	return types, nil
}
