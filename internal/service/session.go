package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/pkg/debounce"
)

// SessionState is the lifecycle phase of a search session.
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionSearching SessionState = "searching"
	SessionSuccess   SessionState = "success"
	SessionFailed    SessionState = "failed"
)

const (
	debounceKeyQuery   = "query"
	debounceKeyFilters = "filters"
)

type searchRunner interface {
	Search(ctx context.Context, query string, filter models.CourseFilter, page int) *models.SearchResultSet
}

// SearchSession owns the query, filter and page state of one interactive
// search and debounces input bursts before running attempts. Completions are
// committed last-initiated-wins: a sequence token taken at start time is
// compared at completion time, and an older attempt finishing after a newer
// one started is discarded.
type SearchSession struct {
	runner    searchRunner
	debouncer *debounce.Debouncer
	delay     time.Duration
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	seq    uint64
	closed bool
	state  SessionState
	result *models.SearchResultSet
	query  string
	filter models.CourseFilter
	page   int
}

// NewSearchSession constructs a session with its own debouncer.
func NewSearchSession(runner searchRunner, delay time.Duration, logger *zap.Logger) *SearchSession {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchSession{
		runner:    runner,
		debouncer: debounce.New(logger),
		delay:     delay,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		state:     SessionIdle,
		page:      1,
	}
}

// SetQuery updates the free-text query and schedules a debounced attempt.
// The page resets to 1 so new text never lands on a stale page index.
func (s *SearchSession) SetQuery(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = query
	s.page = 1
	s.mu.Unlock()

	s.debouncer.Schedule(debounceKeyQuery, s.delay, s.start)
}

// SetFilter updates the structured filters and schedules a debounced
// attempt. Filters debounce on their own key so that typing in the query
// field does not postpone a filter-triggered search, and vice versa.
func (s *SearchSession) SetFilter(filter models.CourseFilter) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.filter = filter
	s.page = 1
	s.mu.Unlock()

	s.debouncer.Schedule(debounceKeyFilters, s.delay, s.start)
}

// SetPage moves to another page of the current result set. Page moves are
// deliberate clicks, not keystrokes, so they run without debouncing.
func (s *SearchSession) SetPage(page int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.page = page
	s.mu.Unlock()

	s.start()
}

// Refresh re-runs the current attempt immediately, bypassing the debounce.
func (s *SearchSession) Refresh() {
	s.start()
}

func (s *SearchSession) start() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	token := s.seq
	s.state = SessionSearching
	query, filter, page := s.query, s.filter, s.page
	s.mu.Unlock()

	go func() {
		set := s.runner.Search(s.ctx, query, filter, page)
		s.commit(token, set)
	}()
}

func (s *SearchSession) commit(token uint64, set *models.SearchResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || token != s.seq {
		s.logger.Debug("discarding stale search completion",
			zap.Uint64("token", token),
			zap.Uint64("current", s.seq))
		return
	}

	s.result = set
	if set != nil && set.Failed {
		s.state = SessionFailed
	} else {
		s.state = SessionSuccess
	}
}

// Snapshot returns the current state and last committed result set.
func (s *SearchSession) Snapshot() (SessionState, *models.SearchResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.result
}

// Close tears the session down: pending debounce timers are cancelled, the
// in-flight context is cancelled and any late completion becomes a no-op.
func (s *SearchSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = SessionIdle
	s.mu.Unlock()

	s.debouncer.Close()
	s.cancel()
}
