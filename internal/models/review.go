package models

import "time"

// Review is a persisted teaching-assistant review. Salary bounds follow the
// bucketed schema: max_salary NULL with min_salary 300000 marks the open
// top bucket; both NULL means no salary was reported.
type Review struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	Semester    string    `db:"semester" json:"semester"`
	TaTypeID    string    `db:"ta_type_id" json:"ta_type_id"`
	Professor   *string   `db:"professor" json:"professor,omitempty"`
	MinSalary   *int      `db:"min_salary" json:"min_salary,omitempty"`
	MaxSalary   *int      `db:"max_salary" json:"max_salary,omitempty"`
	MonthHours  *int      `db:"month_hours" json:"month_hours,omitempty"`
	Rating      int       `db:"rating" json:"rating"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Anonymous   bool      `db:"anonymous" json:"anonymous"`
	Validated   bool      `db:"validated" json:"validated"`
	AuthorName  *string   `db:"author_name" json:"author_name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Joined course columns, populated by search queries.
	CourseName    string `db:"course_name" json:"course_name,omitempty"`
	CourseInitial string `db:"course_initial" json:"course_initial,omitempty"`
}

// ReviewFilter scopes review-level predicates sent to the store. A nil
// CourseIDs slice means no course restriction; an empty one would have been
// short-circuited before reaching the repository. Pagination happens after
// the planner's client-side post-filter pass, so the filter carries no
// offset/limit.
type ReviewFilter struct {
	CourseIDs      []string
	Query          string
	MinRating      *float64
	MinSalaryFloor *int
}

// SearchResultSet is an ordered page of reviews plus count metadata.
type SearchResultSet struct {
	Reviews    []Review `json:"reviews"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	PageWindow []string `json:"page_window,omitempty"`
	Failed     bool     `json:"failed,omitempty"`
	Error      *string  `json:"error,omitempty"`
}
