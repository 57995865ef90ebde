package models

import "time"

// Course is a catalog entry. Initial is the short fixed-format code
// ("IIC2143"); its first 3 characters are the subject-area prefix.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Initial   string    `db:"initial" json:"initial"`
	PrefixID  *string   `db:"prefix_id" json:"prefix_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CoursePrefix is a subject-area prefix ("IIC", "MAT").
type CoursePrefix struct {
	ID        string    `db:"id" json:"id"`
	Prefix    string    `db:"prefix" json:"prefix"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TaType names a teaching-assistant role ("Ayudante de cátedra").
type TaType struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CourseFilter is the query-shaping value object for a search. It is never
// persisted; handlers build it from query parameters and services pass it
// by value.
type CourseFilter struct {
	CourseInitial  string
	CoursePrefix   string
	FreeText       string
	MinRating      *float64
	MinSalaryFloor *int
	MaxAvgHours    *float64
}

// HasCourseFilters reports whether any structured course filter is set.
func (f CourseFilter) HasCourseFilters() bool {
	return f.CourseInitial != "" || f.CoursePrefix != ""
}

// Empty reports whether the filter restricts nothing at the course level.
func (f CourseFilter) Empty() bool {
	return !f.HasCourseFilters() && f.FreeText == ""
}
