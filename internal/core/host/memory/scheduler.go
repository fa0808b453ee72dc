package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/host"
)

// TickDuration is the length of one host tick.
const TickDuration = 50 * time.Millisecond

var _ host.Scheduler = (*Scheduler)(nil)

type task struct {
	handle   host.TaskHandle
	next     time.Duration
	interval time.Duration
	seq      uint64
	run      func()
}

// Scheduler runs tasks on a virtual clock advanced by Tick or Advance.
// Tasks run on the advancing goroutine, outside the scheduler's lock, so
// they may schedule or cancel tasks themselves.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks map[uuid.UUID]*task
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[uuid.UUID]*task)}
}

// Schedule registers a task. An interval of zero runs it once.
func (s *Scheduler) Schedule(initialDelay, interval time.Duration, run func()) host.TaskHandle {
	if initialDelay < 0 {
		initialDelay = 0
	}
	if interval < 0 {
		interval = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{
		handle:   host.TaskHandle{ID: uuid.New()},
		next:     s.now + initialDelay,
		interval: interval,
		seq:      s.seq,
		run:      run,
	}
	s.tasks[t.handle.ID] = t
	return t.handle
}

func (s *Scheduler) Cancel(h host.TaskHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[h.ID]; !ok {
		return false
	}
	delete(s.tasks, h.ID)
	return true
}

// Scheduled reports whether h is still pending.
func (s *Scheduler) Scheduled(h host.TaskHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[h.ID]
	return ok
}

// Pending counts scheduled tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Tick advances the clock by one TickDuration.
func (s *Scheduler) Tick() int {
	return s.Advance(TickDuration)
}

// Advance moves the clock forward by d, running every task that falls due
// in due-time order, and returns how many runs happened.
func (s *Scheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	runs := 0
	for {
		t, ok := s.popDue(target)
		if !ok {
			break
		}
		t.run()
		runs++
	}

	s.mu.Lock()
	if s.now < target {
		s.now = target
	}
	s.mu.Unlock()
	return runs
}

func (s *Scheduler) popDue(target time.Duration) (*task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due *task
	for _, t := range s.tasks {
		if t.next > target {
			continue
		}
		if due == nil || t.next < due.next || (t.next == due.next && t.seq < due.seq) {
			due = t
		}
	}
	if due == nil {
		return nil, false
	}

	s.now = due.next
	if due.interval > 0 {
		due.next += due.interval
	} else {
		delete(s.tasks, due.handle.ID)
	}
	return due, true
}
