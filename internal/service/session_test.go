package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudapp/ayudapp-api/internal/models"
)

type runnerStub struct {
	mu      sync.Mutex
	calls   []string
	results map[string]*models.SearchResultSet
	block   map[string]chan struct{}
}

func newRunnerStub() *runnerStub {
	return &runnerStub{
		results: make(map[string]*models.SearchResultSet),
		block:   make(map[string]chan struct{}),
	}
}

func (r *runnerStub) Search(ctx context.Context, query string, filter models.CourseFilter, page int) *models.SearchResultSet {
	r.mu.Lock()
	r.calls = append(r.calls, query)
	gate := r.block[query]
	set := r.results[query]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if set == nil {
		set = &models.SearchResultSet{Reviews: []models.Review{}, Page: 1}
	}
	return set
}

func (r *runnerStub) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func waitForState(t *testing.T, s *SearchSession, want SessionState) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		state, _ := s.Snapshot()
		if state == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("session never reached state %q (stuck at %q)", want, state)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSessionDebouncesQueryBursts(t *testing.T) {
	runner := newRunnerStub()
	runner.results["final"] = &models.SearchResultSet{TotalCount: 1, Page: 1}
	session := NewSearchSession(runner, 30*time.Millisecond, nil)
	defer session.Close()

	session.SetQuery("f")
	session.SetQuery("fi")
	session.SetQuery("final")

	waitForState(t, session, SessionSuccess)
	assert.Equal(t, 1, runner.callCount(), "rapid keystrokes coalesce into one attempt")

	runner.mu.Lock()
	assert.Equal(t, "final", runner.calls[0])
	runner.mu.Unlock()
}

func TestSessionLastInitiatedWins(t *testing.T) {
	runner := newRunnerStub()
	slowGate := make(chan struct{})
	runner.block["slow"] = slowGate
	runner.results["slow"] = &models.SearchResultSet{TotalCount: 111, Page: 1}
	runner.results["fast"] = &models.SearchResultSet{TotalCount: 222, Page: 1}

	session := NewSearchSession(runner, 5*time.Millisecond, nil)
	defer session.Close()

	session.SetQuery("slow")
	require.Eventually(t, func() bool { return runner.callCount() == 1 }, time.Second, time.Millisecond)

	session.SetQuery("fast")
	waitForState(t, session, SessionSuccess)

	// The slow attempt completes after the fast one committed; its result
	// must not overwrite the newer one.
	close(slowGate)
	time.Sleep(20 * time.Millisecond)

	_, result := session.Snapshot()
	require.NotNil(t, result)
	assert.Equal(t, 222, result.TotalCount)
}

func TestSessionFailureStateOnFlaggedResult(t *testing.T) {
	runner := newRunnerStub()
	msg := "store unreachable"
	runner.results["x"] = &models.SearchResultSet{Failed: true, Error: &msg, Reviews: []models.Review{}}

	session := NewSearchSession(runner, time.Millisecond, nil)
	defer session.Close()

	session.SetQuery("x")
	waitForState(t, session, SessionFailed)

	// The session stays usable after a failure.
	runner.results["y"] = &models.SearchResultSet{TotalCount: 3}
	session.SetQuery("y")
	waitForState(t, session, SessionSuccess)
}

func TestSessionCloseCancelsPendingTimers(t *testing.T) {
	runner := newRunnerStub()
	session := NewSearchSession(runner, 20*time.Millisecond, nil)

	session.SetQuery("never")
	session.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, runner.callCount(), "no attempt fires after teardown")

	state, _ := session.Snapshot()
	assert.Equal(t, SessionIdle, state)
}

func TestSessionCloseDropsInFlightCompletion(t *testing.T) {
	runner := newRunnerStub()
	gate := make(chan struct{})
	runner.block["x"] = gate
	runner.results["x"] = &models.SearchResultSet{TotalCount: 9}

	session := NewSearchSession(runner, time.Millisecond, nil)
	session.SetQuery("x")
	require.Eventually(t, func() bool { return runner.callCount() == 1 }, time.Second, time.Millisecond)

	session.Close()
	close(gate)
	time.Sleep(20 * time.Millisecond)

	state, result := session.Snapshot()
	assert.Equal(t, SessionIdle, state)
	assert.Nil(t, result)
}

func TestSessionPageMovesRunImmediately(t *testing.T) {
	runner := newRunnerStub()
	session := NewSearchSession(runner, time.Hour, nil)
	defer session.Close()

	session.SetPage(2)
	waitForState(t, session, SessionSuccess)
	assert.Equal(t, 1, runner.callCount())
}

func TestSessionIndependentDebounceKeys(t *testing.T) {
	runner := newRunnerStub()
	session := NewSearchSession(runner, 25*time.Millisecond, nil)
	defer session.Close()

	session.SetQuery("algebra")
	session.SetFilter(models.CourseFilter{CoursePrefix: "MAT"})

	require.Eventually(t, func() bool { return runner.callCount() == 2 }, time.Second, 5*time.Millisecond,
		"query and filter streams debounce on independent keys")
}
