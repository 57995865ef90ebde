package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/internal/models"
	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
	"github.com/ayudapp/ayudapp-api/pkg/paging"
)

type courseResolver interface {
	Resolve(ctx context.Context, filter models.CourseFilter) ([]string, error)
}

type reviewSearcher interface {
	Search(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error)
}

// SearchService plans and executes review searches: it resolves the course
// filters to an id set, queries the store, tightens the rows client-side,
// orders them by rating and slices the requested page.
type SearchService struct {
	matcher  courseResolver
	reviews  reviewSearcher
	pageSize int
	logger   *zap.Logger
}

// NewSearchService constructs SearchService.
func NewSearchService(matcher courseResolver, reviews reviewSearcher, pageSize int, logger *zap.Logger) *SearchService {
	if pageSize <= 0 {
		pageSize = 25
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{matcher: matcher, reviews: reviews, pageSize: pageSize, logger: logger}
}

// Search runs one search attempt. Store failures never propagate as errors:
// they are logged and absorbed into an empty result set with the Failed flag
// raised, so the session stays usable and may retry.
func (s *SearchService) Search(ctx context.Context, query string, filter models.CourseFilter, page int) *models.SearchResultSet {
	query = strings.TrimSpace(query)

	courseIDs, err := s.matcher.Resolve(ctx, models.CourseFilter{
		CourseInitial: filter.CourseInitial,
		CoursePrefix:  filter.CoursePrefix,
		FreeText:      query,
	})
	if err != nil {
		return s.failureSet(err)
	}

	// An empty set is a definitive "no course matched" signal. Issuing the
	// store query anyway would silently drop that signal.
	if courseIDs != nil && len(courseIDs) == 0 {
		return s.emptySet()
	}

	rows, err := s.reviews.Search(ctx, models.ReviewFilter{
		CourseIDs:      courseIDs,
		Query:          query,
		MinRating:      filter.MinRating,
		MinSalaryFloor: filter.MinSalaryFloor,
	})
	if err != nil {
		return s.failureSet(err)
	}

	if query != "" {
		rows = filterByQuery(rows, query)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rating > rows[j].Rating
	})

	pg := paging.Paginate(len(rows), s.pageSize, page)
	start := pg.Offset
	if start > len(rows) {
		start = len(rows)
	}
	end := start + pg.Limit
	if end > len(rows) {
		end = len(rows)
	}

	return &models.SearchResultSet{
		Reviews:    rows[start:end],
		TotalCount: len(rows),
		Page:       pg.Page,
		TotalPages: pg.TotalPages,
		PageWindow: paging.Window(pg.Page, pg.TotalPages),
	}
}

// filterByQuery keeps rows where the query matches the title, the course
// name, the course code, or equals the code's subject prefix. The store
// composes course membership and text with OR, which is looser than wanted
// when both course and text filters are active at once.
func filterByQuery(rows []models.Review, query string) []models.Review {
	q := strings.ToLower(query)
	out := rows[:0]
	for _, row := range rows {
		if matchesQuery(row, q) {
			out = append(out, row)
		}
	}
	return out
}

func matchesQuery(row models.Review, q string) bool {
	if strings.Contains(strings.ToLower(row.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(row.CourseName), q) {
		return true
	}
	code := strings.ToLower(row.CourseInitial)
	if strings.Contains(code, q) {
		return true
	}
	return len(code) >= 3 && code[:3] == q
}

func (s *SearchService) emptySet() *models.SearchResultSet {
	return &models.SearchResultSet{
		Reviews:    []models.Review{},
		TotalCount: 0,
		Page:       1,
		TotalPages: 0,
	}
}

func (s *SearchService) failureSet(err error) *models.SearchResultSet {
	s.logger.Error("review search failed", zap.Error(err))
	msg := appErrors.ErrQueryFailure.Message
	set := s.emptySet()
	set.Failed = true
	set.Error = &msg
	return set
}
