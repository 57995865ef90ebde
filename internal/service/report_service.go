package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/internal/repository"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
	"github.com/ayudapp/ayudapp-api/pkg/export"
	"github.com/ayudapp/ayudapp-api/pkg/jobs"
)

// reportPageSize is the stats page size used while collecting report rows.
const reportPageSize = 100

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportStatsSource interface {
	List(ctx context.Context, filter models.StatsFilter) (*models.StatsResultSet, error)
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type downloadSigner interface {
	Sign(jobID, relPath string) (string, time.Time, error)
	Verify(token string) (jobID, relPath string, err error)
}

// ReportStatusView is a job's externally visible state plus a download
// token once the file is ready.
type ReportStatusView struct {
	Job           *models.ReportJob `json:"job"`
	DownloadToken string            `json:"download_token,omitempty"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
}

// ReportDownload is a resolved download: an open file handle plus metadata.
type ReportDownload struct {
	File     *os.File
	Filename string
	Format   models.ReportFormat
}

// ReportService generates course-stats reports asynchronously: jobs are
// persisted, rendered by queue workers and downloaded via signed tokens.
type ReportService struct {
	repo      reportJobStore
	stats     reportStatsSource
	queue     jobDispatcher
	storage   reportStorage
	signer    downloadSigner
	resultTTL time.Duration
	logger    *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(repo reportJobStore, stats reportStatsSource, queue jobDispatcher, store reportStorage, signer downloadSigner, resultTTL time.Duration, logger *zap.Logger) *ReportService {
	if resultTTL <= 0 {
		resultTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		stats:     stats,
		queue:     queue,
		storage:   store,
		signer:    signer,
		resultTTL: resultTTL,
		logger:    logger,
	}
}

// CreateJob persists a queued job and dispatches it to the workers.
func (s *ReportService) CreateJob(ctx context.Context, format models.ReportFormat, params models.ReportParams) (*models.ReportJob, error) {
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("unsupported report format %q", format))
	}

	job := &models.ReportJob{Format: format, Params: params, Status: models.ReportStatusQueued}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "course-stats-report"}); err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue report job")
	}
	return job, nil
}

// Process is the queue handler: it renders and stores the report file.
func (s *ReportService) Process(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", queued.ID, err)
	}
	if job.Status == models.ReportStatusDone {
		return nil
	}

	running := models.ReportStatusRunning
	progress := 10
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &running, Progress: &progress}); err != nil {
		return fmt.Errorf("mark report job running: %w", err)
	}

	table, err := s.collectTable(ctx, job.Params)
	if err != nil {
		s.markFailed(ctx, job.ID, err.Error())
		return err
	}

	var data []byte
	switch job.Format {
	case models.ReportFormatPDF:
		data, err = export.RenderPDF(table)
	default:
		data, err = export.RenderCSV(table)
	}
	if err != nil {
		s.markFailed(ctx, job.ID, err.Error())
		return err
	}

	filename := fmt.Sprintf("%s.%s", job.ID, job.Format)
	if _, err := s.storage.Save(filename, data); err != nil {
		s.markFailed(ctx, job.ID, err.Error())
		return err
	}

	done := models.ReportStatusDone
	full := 100
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:     &done,
		Progress:   &full,
		FilePath:   &filename,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("mark report job done: %w", err)
	}

	s.logger.Info("report generated",
		zap.String("job_id", job.ID),
		zap.String("format", string(job.Format)),
		zap.Int("rows", len(table.Rows)))
	return nil
}

// Status returns a job's state, with a signed download token when done.
func (s *ReportService) Status(ctx context.Context, id string) (*ReportStatusView, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load report job")
	}

	view := &ReportStatusView{Job: job}
	if job.Status == models.ReportStatusDone && job.FilePath != nil {
		token, expiresAt, err := s.signer.Sign(job.ID, *job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign download token")
		}
		view.DownloadToken = token
		view.ExpiresAt = &expiresAt
	}
	return view, nil
}

// Download resolves a signed token to the stored report file.
func (s *ReportService) Download(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load report job")
	}
	if job.Status != models.ReportStatusDone || job.FilePath == nil || *job.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not available")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file missing")
	}
	return &ReportDownload{File: file, Filename: relPath, Format: job.Format}, nil
}

// Cleanup removes expired report files and their job rows.
func (s *ReportService) Cleanup(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.resultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		return err
	}
	for _, job := range expired {
		if job.FilePath != nil {
			if err := s.storage.Delete(*job.FilePath); err != nil {
				s.logger.Warn("report file cleanup failed", zap.String("job_id", job.ID), zap.Error(err))
				continue
			}
		}
		if err := s.repo.Delete(ctx, job.ID); err != nil {
			s.logger.Warn("report job cleanup failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return nil
}

// collectTable pulls every stats page matching the params into one table.
func (s *ReportService) collectTable(ctx context.Context, params models.ReportParams) (export.Table, error) {
	table := export.Table{
		Title:   "Estadisticas por curso",
		Headers: []string{"Sigla", "Curso", "Promedio", "Horas/mes", "Sueldo promedio", "Resenas"},
	}

	filter := models.StatsFilter{
		CourseInitial: params.CourseInitial,
		CoursePrefix:  params.CoursePrefix,
		SearchQuery:   params.SearchQuery,
		MaxAvgHours:   params.MaxAvgHours,
		MinAvgSalary:  params.MinAvgSalary,
		Page:          1,
		PageSize:      reportPageSize,
	}

	for {
		set, err := s.stats.List(ctx, filter)
		if err != nil {
			return export.Table{}, fmt.Errorf("collect stats page %d: %w", filter.Page, err)
		}
		for _, row := range set.Courses {
			table.Rows = append(table.Rows, []string{
				row.CourseInitial,
				row.CourseName,
				formatAvg(row.AvgRating),
				formatAvg(row.AvgMonthHours),
				formatAvg(row.AvgSalaryMidpoint),
				fmt.Sprintf("%d", row.ReviewsCount),
			})
		}
		if filter.Page >= set.TotalPages {
			break
		}
		filter.Page++
	}
	return table, nil
}

func formatAvg(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func (s *ReportService) markFailed(ctx context.Context, id, message string) {
	failed := models.ReportStatusFailed
	full := 100
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateReportJobParams{
		Status:       &failed,
		Progress:     &full,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Error("failed to mark report job failed", zap.String("job_id", id), zap.Error(err))
	}
}
