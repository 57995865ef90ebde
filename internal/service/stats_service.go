package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/internal/bucket"
	"github.com/ayudapp/ayudapp-api/internal/models"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
	"github.com/ayudapp/ayudapp-api/pkg/paging"
)

// salaryFilterOpenMin is the "250 mil o más" filter option. Alone among the
// salary filter values it acts as a floor; every other value selects one
// bucket of width 10 000.
const salaryFilterOpenMin = 250000

type statsRepo interface {
	ListPaginated(ctx context.Context, filter models.StatsFilter) ([]models.CourseStats, error)
	GetByCourse(ctx context.Context, courseID string) (*models.CourseStats, error)
}

// StatsService serves the per-course aggregate explorer. Pages come from the
// stored procedure; the numeric filters are applied over the returned rows.
// The salary filter in particular is a bucket range check, so it never
// reaches the procedure, whose parameter only knows how to floor.
type StatsService struct {
	stats    statsRepo
	cache    catalogCache
	ttl      time.Duration
	pageSize int
	logger   *zap.Logger
}

// NewStatsService constructs StatsService.
func NewStatsService(stats statsRepo, cache catalogCache, ttl time.Duration, pageSize int, logger *zap.Logger) *StatsService {
	if pageSize <= 0 {
		pageSize = 25
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{stats: stats, cache: cache, ttl: ttl, pageSize: pageSize, logger: logger}
}

// List returns one page of course statistics matching the filter.
func (s *StatsService) List(ctx context.Context, filter models.StatsFilter) (*models.StatsResultSet, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.pageSize
	}

	key := statsCacheKey(filter)
	if s.cache != nil {
		var cached models.StatsResultSet
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	storeFilter := filter
	// The salary value selects a range, not a floor. The procedure cannot
	// express that, so the store sees no salary predicate at all.
	storeFilter.MinAvgSalary = nil

	rows, err := s.stats.ListPaginated(ctx, storeFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "list course stats")
	}

	total := 0
	if len(rows) > 0 {
		total = rows[0].TotalCount
	}
	rows = applyRangeFilters(rows, filter)

	pg := paging.Paginate(total, filter.PageSize, filter.Page)
	set := &models.StatsResultSet{
		Courses:    rows,
		TotalCount: total,
		Page:       pg.Page,
		TotalPages: pg.TotalPages,
		PageWindow: paging.Window(pg.Page, pg.TotalPages),
	}
	if set.Courses == nil {
		set.Courses = []models.CourseStats{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, set, s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return set, nil
}

// GetByCourse returns the aggregate for one course.
func (s *StatsService) GetByCourse(ctx context.Context, courseID string) (*models.CourseStats, error) {
	stats, err := s.stats.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailure.Code, appErrors.ErrQueryFailure.Status, "load course stats")
	}
	return stats, nil
}

// applyRangeFilters reapplies the numeric filters over the returned rows.
// When any numeric filter is active, courses without reviews or without the
// relevant average are dropped. The salary filter keeps rows whose average
// midpoint lands inside the selected bucket [min, min+10000), except the
// open 250000 value, which keeps everything at or above it.
func applyRangeFilters(rows []models.CourseStats, filter models.StatsFilter) []models.CourseStats {
	if filter.MaxAvgHours == nil && filter.MinAvgSalary == nil {
		return rows
	}

	out := rows[:0]
	for _, row := range rows {
		if row.ReviewsCount == 0 {
			continue
		}
		if filter.MaxAvgHours != nil {
			if row.AvgMonthHours == nil || *row.AvgMonthHours > *filter.MaxAvgHours {
				continue
			}
		}
		if filter.MinAvgSalary != nil {
			if row.AvgSalaryMidpoint == nil {
				continue
			}
			mid, floor := *row.AvgSalaryMidpoint, *filter.MinAvgSalary
			if floor == salaryFilterOpenMin {
				if mid < salaryFilterOpenMin {
					continue
				}
			} else if mid < floor || mid >= floor+bucket.SalaryBucketWidth {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func statsCacheKey(filter models.StatsFilter) string {
	maxHours, minSalary := "", ""
	if filter.MaxAvgHours != nil {
		maxHours = fmt.Sprintf("%g", *filter.MaxAvgHours)
	}
	if filter.MinAvgSalary != nil {
		minSalary = fmt.Sprintf("%g", *filter.MinAvgSalary)
	}
	return fmt.Sprintf("stats:%d:%d:%s:%s:%s:%s:%s",
		filter.Page, filter.PageSize, filter.CourseInitial, filter.CoursePrefix,
		maxHours, minSalary, filter.SearchQuery)
}
