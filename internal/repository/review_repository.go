package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

// ReviewRepository handles persistence for reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new repository instance.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `r.id, r.course_id, r.user_id, r.semester, r.ta_type_id, r.professor,
	r.min_salary, r.max_salary, r.month_hours, r.rating, r.title, r.description,
	r.anonymous, r.validated, r.author_name, r.created_at, r.updated_at,
	c.name AS course_name, c.initial AS course_initial`

// Search returns reviews matching the filter, newest first. The planner
// post-filters, sorts and paginates the rows client-side, so no window is
// applied here.
func (r *ReviewRepository) Search(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	base := "FROM reviews r JOIN courses c ON c.id = r.course_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	switch {
	case filter.CourseIDs != nil && filter.Query != "":
		// Course membership and text match compose with OR so that a free
		// text query can reach reviews outside the matched courses. The
		// planner tightens the rows afterwards.
		conditions = append(conditions, fmt.Sprintf("(r.course_id = ANY($%d) OR LOWER(r.title) LIKE $%d OR LOWER(r.description) LIKE $%d)", len(args)+1, len(args)+2, len(args)+2))
		args = append(args, pq.Array(filter.CourseIDs), "%"+strings.ToLower(filter.Query)+"%")
	case filter.CourseIDs != nil:
		conditions = append(conditions, fmt.Sprintf("r.course_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.CourseIDs))
	case filter.Query != "":
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.title) LIKE $%d OR LOWER(r.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
	}
	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("r.rating >= $%d", len(args)+1))
		args = append(args, *filter.MinRating)
	}
	if filter.MinSalaryFloor != nil {
		conditions = append(conditions, fmt.Sprintf("r.min_salary >= $%d", len(args)+1))
		args = append(args, *filter.MinSalaryFloor)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.created_at DESC", reviewColumns, base)
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("search reviews: %w", err)
	}
	return reviews, nil
}

// FindByID returns a review joined with its course columns.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*models.Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews r JOIN courses c ON c.id = r.course_id WHERE r.id = $1", reviewColumns)
	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByCourse returns a page of reviews for one course plus the exact count.
func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]models.Review, int, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT %s FROM reviews r JOIN courses c ON c.id = r.course_id WHERE r.course_id = $1 ORDER BY r.created_at DESC LIMIT %d OFFSET %d", reviewColumns, limit, offset)
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, courseID); err != nil {
		return nil, 0, fmt.Errorf("list course reviews: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews WHERE course_id = $1`, courseID); err != nil {
		return nil, 0, fmt.Errorf("count course reviews: %w", err)
	}

	return reviews, total, nil
}

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now

	const query = `INSERT INTO reviews (id, course_id, user_id, semester, ta_type_id, professor,
		min_salary, max_salary, month_hours, rating, title, description,
		anonymous, validated, author_name, created_at, updated_at)
		VALUES (:id, :course_id, :user_id, :semester, :ta_type_id, :professor,
		:min_salary, :max_salary, :month_hours, :rating, :title, :description,
		:anonymous, :validated, :author_name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// Update modifies an existing review.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	review.UpdatedAt = time.Now().UTC()
	const query = `UPDATE reviews SET semester = :semester, ta_type_id = :ta_type_id,
		professor = :professor, min_salary = :min_salary, max_salary = :max_salary,
		month_hours = :month_hours, rating = :rating, title = :title,
		description = :description, anonymous = :anonymous, validated = :validated,
		author_name = :author_name, user_id = :user_id, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
