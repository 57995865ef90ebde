package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

type statsRepoStub struct {
	rows       []models.CourseStats
	err        error
	calls      int
	lastFilter models.StatsFilter
}

func (s *statsRepoStub) ListPaginated(ctx context.Context, filter models.StatsFilter) ([]models.CourseStats, error) {
	s.calls++
	s.lastFilter = filter
	return s.rows, s.err
}

func (s *statsRepoStub) GetByCourse(ctx context.Context, courseID string) (*models.CourseStats, error) {
	if len(s.rows) == 0 {
		return nil, s.err
	}
	return &s.rows[0], nil
}

func statsRow(id string, hours, salary *float64, total int) models.CourseStats {
	return models.CourseStats{
		CourseID:          id,
		AvgMonthHours:     hours,
		AvgSalaryMidpoint: salary,
		ReviewsCount:      3,
		TotalCount:        total,
	}
}

func fptr(v float64) *float64 { return &v }

func TestStatsListReportsProcedureTotal(t *testing.T) {
	repo := &statsRepoStub{rows: []models.CourseStats{
		statsRow("c1", fptr(10), fptr(120000), 60),
		statsRow("c2", fptr(20), fptr(90000), 60),
	}}
	svc := NewStatsService(repo, nil, 0, 25, nil)

	set, err := svc.List(context.Background(), models.StatsFilter{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 60, set.TotalCount)
	assert.Equal(t, 3, set.TotalPages)
	assert.Len(t, set.Courses, 2)
}

func TestStatsListReappliesRangeFilters(t *testing.T) {
	unreviewed := statsRow("no-reviews", fptr(10), fptr(105000), 3)
	unreviewed.ReviewsCount = 0
	repo := &statsRepoStub{rows: []models.CourseStats{
		statsRow("keep", fptr(10), fptr(105000), 3),
		statsRow("too-many-hours", fptr(30), fptr(105000), 3),
		statsRow("outside-bucket", fptr(10), fptr(150000), 3),
		statsRow("no-averages", nil, nil, 3),
		unreviewed,
	}}
	svc := NewStatsService(repo, nil, 0, 25, nil)

	set, err := svc.List(context.Background(), models.StatsFilter{
		Page:         1,
		MaxAvgHours:  fptr(20),
		MinAvgSalary: fptr(100000),
	})
	require.NoError(t, err)
	require.Len(t, set.Courses, 1)
	assert.Equal(t, "keep", set.Courses[0].CourseID)
}

func TestStatsListSalaryFilterSelectsOneBucket(t *testing.T) {
	repo := &statsRepoStub{rows: []models.CourseStats{
		statsRow("inside-bucket", fptr(10), fptr(15000), 2),
		statsRow("far-above-bucket", fptr(10), fptr(150000), 2),
	}}
	svc := NewStatsService(repo, nil, 0, 25, nil)

	set, err := svc.List(context.Background(), models.StatsFilter{
		Page:         1,
		MinAvgSalary: fptr(10000),
	})
	require.NoError(t, err)
	require.Len(t, set.Courses, 1)
	assert.Equal(t, "inside-bucket", set.Courses[0].CourseID)
	assert.Nil(t, repo.lastFilter.MinAvgSalary, "salary range check never reaches the store")
}

func TestStatsListSalaryFilterOpenValue(t *testing.T) {
	repo := &statsRepoStub{rows: []models.CourseStats{
		statsRow("at-floor", fptr(10), fptr(250000), 3),
		statsRow("above-floor", fptr(10), fptr(400000), 3),
		statsRow("below-floor", fptr(10), fptr(240000), 3),
	}}
	svc := NewStatsService(repo, nil, 0, 25, nil)

	set, err := svc.List(context.Background(), models.StatsFilter{
		Page:         1,
		MinAvgSalary: fptr(250000),
	})
	require.NoError(t, err)
	require.Len(t, set.Courses, 2)
	assert.Equal(t, "at-floor", set.Courses[0].CourseID)
	assert.Equal(t, "above-floor", set.Courses[1].CourseID)
}

func TestStatsListCachesPages(t *testing.T) {
	repo := &statsRepoStub{rows: []models.CourseStats{statsRow("c1", nil, nil, 1)}}
	cache := newKvCacheStub()
	svc := NewStatsService(repo, cache, time.Minute, 25, nil)

	_, err := svc.List(context.Background(), models.StatsFilter{Page: 1, CoursePrefix: "IIC"})
	require.NoError(t, err)
	_, err = svc.List(context.Background(), models.StatsFilter{Page: 1, CoursePrefix: "IIC"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "second page read served from cache")

	// A different filter is a different cache entry.
	_, err = svc.List(context.Background(), models.StatsFilter{Page: 1, CoursePrefix: "MAT"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestStatsListEmptyResult(t *testing.T) {
	repo := &statsRepoStub{}
	svc := NewStatsService(repo, nil, 0, 25, nil)

	set, err := svc.List(context.Background(), models.StatsFilter{Page: 3})
	require.NoError(t, err)
	assert.NotNil(t, set.Courses)
	assert.Empty(t, set.Courses)
	assert.Zero(t, set.TotalCount)
	assert.Equal(t, 1, set.Page, "page clamps to 1 when there are no pages")
}
