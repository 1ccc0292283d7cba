package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// WorkerPool runs jobs on a bounded number of goroutines, optionally
// spacing job starts by a minimum interval.
type WorkerPool struct {
	maxWorkers int
	group      errgroup.Group
	limiter    *rate.Limiter
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
// A rateLimitMs of zero disables throttling.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	limit := rate.Inf
	if rateLimitMs > 0 {
		limit = rate.Every(time.Duration(rateLimitMs) * time.Millisecond)
	}

	wp := &WorkerPool{
		maxWorkers: maxWorkers,
		limiter:    rate.NewLimiter(limit, 1),
	}
	wp.group.SetLimit(maxWorkers)
	return wp
}

// Size returns the concurrency ceiling.
func (wp *WorkerPool) Size() int {
	return wp.maxWorkers
}

// Submit enqueues a job for execution in the pool. It blocks while all
// workers are busy. If ctx is cancelled before the job's turn under the
// rate limit, the job is skipped.
func (wp *WorkerPool) Submit(ctx context.Context, job func()) {
	wp.group.Go(func() error {
		if err := wp.limiter.Wait(ctx); err != nil {
			return err
		}
		job()
		return nil
	})
}

// Wait blocks until all submitted jobs have completed. It returns the
// context error if any job was skipped because of cancellation.
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}

// LinkSet is an insertion-ordered set of URLs with an optional size cap.
// It is safe for concurrent use.
type LinkSet struct {
	mu    sync.RWMutex
	max   int
	seen  map[string]struct{}
	order []string
}

// NewLinkSet creates an empty LinkSet holding at most max URLs (0 = unbounded).
func NewLinkSet(max int) *LinkSet {
	return &LinkSet{max: max, seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if it was already
// present, empty, or the set is full.
func (s *LinkSet) Add(url string) bool {
	if url == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	if s.max > 0 && len(s.order) >= s.max {
		return false
	}
	s.seen[url] = struct{}{}
	s.order = append(s.order, url)
	return true
}

// Contains returns true if the URL is in the set.
func (s *LinkSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Full reports whether the cap has been reached.
func (s *LinkSet) Full() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.max > 0 && len(s.order) >= s.max
}

// Size returns the number of unique URLs tracked.
func (s *LinkSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Items returns the URLs in insertion order.
func (s *LinkSet) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
