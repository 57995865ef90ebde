package models

// CourseStats is one row of the per-course aggregate returned by the
// get_courses_stats_paginated stored procedure.
type CourseStats struct {
	CourseID          string   `db:"course_id" json:"course_id"`
	CourseName        string   `db:"course_name" json:"course_name"`
	CourseInitial     string   `db:"course_initial" json:"course_initial"`
	AvgRating         *float64 `db:"avg_rating" json:"avg_rating,omitempty"`
	AvgMonthHours     *float64 `db:"avg_month_hours" json:"avg_month_hours,omitempty"`
	AvgSalaryMidpoint *float64 `db:"avg_salary_midpoint" json:"avg_salary_midpoint,omitempty"`
	ReviewsCount      int      `db:"reviews_count" json:"reviews_count"`
	TotalCount        int      `db:"total_count" json:"-"`
}

// StatsFilter shapes a paginated stats query.
type StatsFilter struct {
	CourseInitial string
	CoursePrefix  string
	SearchQuery   string
	MaxAvgHours   *float64
	MinAvgSalary  *float64
	Page          int
	PageSize      int
}

// StatsResultSet is a page of course statistics.
type StatsResultSet struct {
	Courses    []CourseStats `json:"courses"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	PageWindow []string      `json:"page_window,omitempty"`
}
