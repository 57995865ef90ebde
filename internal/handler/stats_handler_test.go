package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudapp/ayudapp-api/internal/models"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
)

type statsServiceMock struct {
	listResp   *models.StatsResultSet
	listErr    error
	getResp    *models.CourseStats
	getErr     error
	lastFilter models.StatsFilter
	listCalled bool
}

func (m *statsServiceMock) List(ctx context.Context, filter models.StatsFilter) (*models.StatsResultSet, error) {
	m.listCalled = true
	m.lastFilter = filter
	return m.listResp, m.listErr
}

func (m *statsServiceMock) GetByCourse(ctx context.Context, courseID string) (*models.CourseStats, error) {
	return m.getResp, m.getErr
}

func TestStatsHandlerListPassesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &statsServiceMock{
		listResp: &models.StatsResultSet{Courses: []models.CourseStats{}, Page: 2},
	}
	handler := NewStatsHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/stats/courses?q=algebra&course_prefix=MAT&max_hours=20&min_salary=150000&page=2", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.listCalled)
	assert.Equal(t, "algebra", mockSvc.lastFilter.SearchQuery)
	assert.Equal(t, "MAT", mockSvc.lastFilter.CoursePrefix)
	require.NotNil(t, mockSvc.lastFilter.MaxAvgHours)
	assert.Equal(t, 20.0, *mockSvc.lastFilter.MaxAvgHours)
	require.NotNil(t, mockSvc.lastFilter.MinAvgSalary)
	assert.Equal(t, 150000.0, *mockSvc.lastFilter.MinAvgSalary)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
}

func TestStatsHandlerListBadRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &statsServiceMock{}
	handler := NewStatsHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/stats/courses?max_hours=many", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.listCalled)
}

func TestStatsHandlerGetByCourseNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &statsServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "course not found")}
	handler := NewStatsHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/stats/courses/c-404", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c-404"}}

	handler.GetByCourse(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
