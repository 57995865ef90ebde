package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

type courseMatcherRepo interface {
	IDsByInitialSubstring(ctx context.Context, fragment string) ([]string, error)
	IDsByCodePrefix(ctx context.Context, prefix string) ([]string, error)
	IDsByText(ctx context.Context, text string) ([]string, error)
}

// MatcherService resolves course-level filters to a set of course ids.
type MatcherService struct {
	courses courseMatcherRepo
	logger  *zap.Logger
}

// NewMatcherService constructs MatcherService.
func NewMatcherService(courses courseMatcherRepo, logger *zap.Logger) *MatcherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatcherService{courses: courses, logger: logger}
}

// Resolve maps the filter to course ids. A nil result means no course-level
// restriction; an empty non-nil result means no course can match, which the
// caller must treat as zero results rather than falling back to unfiltered.
func (s *MatcherService) Resolve(ctx context.Context, filter models.CourseFilter) ([]string, error) {
	if filter.HasCourseFilters() {
		var set []string
		restricted := false

		if filter.CourseInitial != "" {
			ids, err := s.courses.IDsByInitialSubstring(ctx, filter.CourseInitial)
			if err != nil {
				return nil, err
			}
			set = ids
			restricted = true
		}

		if filter.CoursePrefix != "" {
			ids, err := s.courses.IDsByCodePrefix(ctx, filter.CoursePrefix)
			if err != nil {
				return nil, err
			}
			if restricted {
				set = intersect(set, ids)
			} else {
				set = ids
			}
		}

		if set == nil {
			set = []string{}
		}
		return set, nil
	}

	if filter.FreeText != "" {
		textIDs, err := s.courses.IDsByText(ctx, filter.FreeText)
		if err != nil {
			return nil, err
		}

		// Course codes are short prefix+digits tokens and users often type
		// only the subject prefix, so prefix equality is always attempted
		// as a secondary recall mechanism and unioned with the substring
		// matches.
		prefix := filter.FreeText
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		prefixIDs, err := s.courses.IDsByCodePrefix(ctx, strings.TrimSpace(prefix))
		if err != nil {
			return nil, err
		}

		return union(textIDs, prefixIDs), nil
	}

	return nil, nil
}

func intersect(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(b))
	for _, id := range b {
		if _, ok := seen[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
