package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryIDsByInitialSubstring(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM courses WHERE LOWER(initial) LIKE $1")).
		WithArgs("%iic2143%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1").AddRow("c2"))

	ids, err := repo.IDsByInitialSubstring(context.Background(), "IIC2143")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryIDsByCodePrefix(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM courses WHERE LOWER(LEFT(initial, 3)) = $1")).
		WithArgs("iic").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := repo.IDsByCodePrefix(context.Background(), "IIC")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryIDsByText(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM courses WHERE LOWER(name) LIKE $1 OR LOWER(initial) LIKE $1")).
		WithArgs("%software%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))

	ids, err := repo.IDsByText(context.Background(), "Software")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListPrefixes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "prefix", "created_at"}).
		AddRow("p1", "IIC", time.Now()).
		AddRow("p2", "MAT", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, prefix, created_at FROM course_prefixes ORDER BY prefix ASC")).
		WillReturnRows(rows)

	prefixes, err := repo.ListPrefixes(context.Background())
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.Equal(t, "IIC", prefixes[0].Prefix)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateTaType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO ta_types").
		WithArgs(sqlmock.AnyArg(), "Ayudante Coordinador", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	taType := models.TaType{Name: "Ayudante Coordinador"}
	err := repo.CreateTaType(context.Background(), &taType)
	require.NoError(t, err)
	assert.NotEmpty(t, taType.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
