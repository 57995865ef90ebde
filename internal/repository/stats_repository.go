package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

// StatsRepository wraps the per-course aggregate stored procedure. The
// procedure is treated as an opaque remote function: it applies the main
// filters and pagination server-side and reports the filtered total on
// every row.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new repository instance.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// ListPaginated invokes get_courses_stats_paginated with the filter.
func (r *StatsRepository) ListPaginated(ctx context.Context, filter models.StatsFilter) ([]models.CourseStats, error) {
	const query = `SELECT course_id, course_name, course_initial, avg_rating,
		avg_month_hours, avg_salary_midpoint, reviews_count, total_count
		FROM get_courses_stats_paginated($1, $2, $3, $4, $5, $6, $7)`

	var stats []models.CourseStats
	err := r.db.SelectContext(ctx, &stats, query,
		filter.Page,
		filter.PageSize,
		nullableString(filter.CourseInitial),
		nullableString(filter.CoursePrefix),
		filter.MaxAvgHours,
		filter.MinAvgSalary,
		nullableString(filter.SearchQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("list course stats: %w", err)
	}
	return stats, nil
}

// GetByCourse returns the aggregate for a single course.
func (r *StatsRepository) GetByCourse(ctx context.Context, courseID string) (*models.CourseStats, error) {
	const query = `SELECT c.id AS course_id, c.name AS course_name, c.initial AS course_initial,
		AVG(r.rating)::float8 AS avg_rating,
		AVG(r.month_hours)::float8 AS avg_month_hours,
		AVG(CASE
			WHEN r.min_salary IS NULL THEN NULL
			WHEN r.max_salary IS NULL THEN r.min_salary
			ELSE (r.min_salary + r.max_salary) / 2.0
		END)::float8 AS avg_salary_midpoint,
		COUNT(r.id) AS reviews_count,
		0 AS total_count
		FROM courses c
		LEFT JOIN reviews r ON r.course_id = c.id
		WHERE c.id = $1
		GROUP BY c.id, c.name, c.initial`

	var stats models.CourseStats
	if err := r.db.GetContext(ctx, &stats, query, courseID); err != nil {
		return nil, err
	}
	return &stats, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
