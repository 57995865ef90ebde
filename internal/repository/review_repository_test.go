package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

func reviewRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "course_id", "user_id", "semester", "ta_type_id", "professor",
		"min_salary", "max_salary", "month_hours", "rating", "title", "description",
		"anonymous", "validated", "author_name", "created_at", "updated_at",
		"course_name", "course_initial",
	}).AddRow(
		"rev-1", "c1", nil, "2024-1", "tt-1", nil,
		100000, 110000, 20, 5, "Gran experiencia", "Se aprende harto",
		true, true, nil, now, now,
		"Ingenieria de Software", "IIC2143",
	)
}

func TestReviewRepositorySearchNoFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectQuery("SELECT .+ FROM reviews r JOIN courses c ON c.id = r.course_id WHERE 1=1 ORDER BY r.created_at DESC").
		WillReturnRows(reviewRows())

	reviews, err := repo.Search(context.Background(), models.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "rev-1", reviews[0].ID)
	assert.Equal(t, "IIC2143", reviews[0].CourseInitial)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySearchWithCourseSet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("r.course_id = ANY($1)")).
		WillReturnRows(reviewRows())

	reviews, err := repo.Search(context.Background(), models.ReviewFilter{CourseIDs: []string{"c1"}})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySearchEmptyCourseSetStillBinds(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	// A non-nil empty set must still constrain the query, matching nothing.
	mock.ExpectQuery(regexp.QuoteMeta("r.course_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	reviews, err := repo.Search(context.Background(), models.ReviewFilter{CourseIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySearchCombinedPredicates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	minRating := 4.0
	minSalary := 100000
	mock.ExpectQuery(regexp.QuoteMeta("(r.course_id = ANY($1) OR LOWER(r.title) LIKE $2 OR LOWER(r.description) LIKE $2) AND r.rating >= $3 AND r.min_salary >= $4")).
		WithArgs(sqlmock.AnyArg(), "%ayudante%", minRating, minSalary).
		WillReturnRows(reviewRows())

	filter := models.ReviewFilter{
		CourseIDs:      []string{"c1"},
		Query:          "Ayudante",
		MinRating:      &minRating,
		MinSalaryFloor: &minSalary,
	}
	reviews, err := repo.Search(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectExec("INSERT INTO reviews").
		WillReturnResult(sqlmock.NewResult(1, 1))

	review := models.Review{CourseID: "c1", Semester: "2024-1", TaTypeID: "tt-1", Rating: 5, Title: "Buena", Description: "Recomendada", Anonymous: true}
	err := repo.Create(context.Background(), &review)
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.False(t, review.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryListByCourseDefaultsWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectQuery("LIMIT 25 OFFSET 0").WillReturnRows(reviewRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reviews WHERE course_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	reviews, total, err := repo.ListByCourse(context.Background(), "c1", 0, -3)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
