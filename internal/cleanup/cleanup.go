// Package cleanup schedules deferred deletion of delivered artifacts so
// the download and conversion directories do not grow without bound.
package cleanup

import (
	"log"
	"os"
	"sync"
	"time"
)

type pendingTask struct {
	path  string
	timer *time.Timer
}

// Scheduler deletes files after a delay. Every scheduled deletion fires
// exactly once, either when its timer expires or when the scheduler shuts
// down.
type Scheduler struct {
	mu      sync.Mutex
	seq     int
	pending map[int]*pendingTask
	closed  bool
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[int]*pendingTask)}
}

// Schedule removes path after delay. A non-positive delay, or a scheduler
// that has already shut down, removes the file immediately. Deletion of an
// already-missing file is not an error.
func (s *Scheduler) Schedule(path string, delay time.Duration) {
	s.mu.Lock()
	if s.closed || delay <= 0 {
		s.mu.Unlock()
		remove(path)
		return
	}

	s.seq++
	id := s.seq
	task := &pendingTask{path: path}
	task.timer = time.AfterFunc(delay, func() { s.fire(id) })
	s.pending[id] = task
	s.mu.Unlock()
}

func (s *Scheduler) fire(id int) {
	s.mu.Lock()
	task, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if ok {
		remove(task.path)
	}
}

// Shutdown stops the scheduler and runs every pending deletion immediately.
// A timer may fire concurrently with Shutdown; both paths then attempt the
// removal, which is idempotent.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	tasks := make([]*pendingTask, 0, len(s.pending))
	for id, task := range s.pending {
		task.timer.Stop()
		tasks = append(tasks, task)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for _, task := range tasks {
		remove(task.path)
	}
}

func remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("cleanup: removing %s: %v", path, err)
	}
}
