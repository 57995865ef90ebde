package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

// CourseRepository handles persistence for courses, prefixes and TA types.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, initial, prefix_id, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// IDsByInitialSubstring returns ids of courses whose code contains the
// fragment, case-insensitively.
func (r *CourseRepository) IDsByInitialSubstring(ctx context.Context, fragment string) ([]string, error) {
	const query = `SELECT id FROM courses WHERE LOWER(initial) LIKE $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, "%"+strings.ToLower(fragment)+"%"); err != nil {
		return nil, fmt.Errorf("match courses by initial: %w", err)
	}
	return ids, nil
}

// IDsByCodePrefix returns ids of courses whose code starts with the given
// 3-character subject prefix, case-insensitively.
func (r *CourseRepository) IDsByCodePrefix(ctx context.Context, prefix string) ([]string, error) {
	const query = `SELECT id FROM courses WHERE LOWER(LEFT(initial, 3)) = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, strings.ToLower(prefix)); err != nil {
		return nil, fmt.Errorf("match courses by prefix: %w", err)
	}
	return ids, nil
}

// IDsByText returns ids of courses whose name or code contains the text,
// case-insensitively.
func (r *CourseRepository) IDsByText(ctx context.Context, text string) ([]string, error) {
	const query = `SELECT id FROM courses WHERE LOWER(name) LIKE $1 OR LOWER(initial) LIKE $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, "%"+strings.ToLower(text)+"%"); err != nil {
		return nil, fmt.Errorf("match courses by text: %w", err)
	}
	return ids, nil
}

// ListPrefixes returns all subject prefixes ordered alphabetically.
func (r *CourseRepository) ListPrefixes(ctx context.Context) ([]models.CoursePrefix, error) {
	const query = `SELECT id, prefix, created_at FROM course_prefixes ORDER BY prefix ASC`
	var prefixes []models.CoursePrefix
	if err := r.db.SelectContext(ctx, &prefixes, query); err != nil {
		return nil, fmt.Errorf("list course prefixes: %w", err)
	}
	return prefixes, nil
}

// ListTaTypes returns all TA types ordered by name.
func (r *CourseRepository) ListTaTypes(ctx context.Context) ([]models.TaType, error) {
	const query = `SELECT id, name, created_at FROM ta_types ORDER BY name ASC`
	var types []models.TaType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list ta types: %w", err)
	}
	return types, nil
}

// FindTaTypeByName returns the TA type with the given name, matched
// case-insensitively, or sql.ErrNoRows.
func (r *CourseRepository) FindTaTypeByName(ctx context.Context, name string) (*models.TaType, error) {
	const query = `SELECT id, name, created_at FROM ta_types WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var taType models.TaType
	if err := r.db.GetContext(ctx, &taType, query, name); err != nil {
		return nil, err
	}
	return &taType, nil
}

// CreateTaType persists a new TA type.
func (r *CourseRepository) CreateTaType(ctx context.Context, taType *models.TaType) error {
	if taType.ID == "" {
		taType.ID = uuid.NewString()
	}
	if taType.CreatedAt.IsZero() {
		taType.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO ta_types (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, taType); err != nil {
		return fmt.Errorf("create ta type: %w", err)
	}
	return nil
}
