// Package realmsched implements a work-stealing task scheduler: a fixed
// pool of worker goroutines, each owning a lock-free Chase-Lev deque and
// a bounded per-worker task arena, supporting parent/child completion
// propagation and continuations. It is the execution substrate a game
// server realm gateway submits short-lived TaskFuncs to; everything
// about the gateway itself -- its listener, service discovery, database
// pools, wire protocol -- is an external collaborator of this package,
// not part of it.
package realmsched

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler is the public facade over the worker pool: task creation,
// enqueueing, the cooperative Wait join, and shutdown.
type Scheduler struct {
	cfg SchedulerConfig
	log Logger

	workers []*Worker
	deques  []*taskDeque
	arenas  []*arena

	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped atomic.Bool
	idle    *broadcaster

	metrics metricsCounters

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New constructs a Scheduler with workers worker goroutines, each with an
// arena of maxTasksPerWorker Task records, logging through log (a nil
// log is replaced with a no-op logger). It panics if workers or
// maxTasksPerWorker is zero, matching the EXTERNAL INTERFACES contract.
func New(workers, maxTasksPerWorker int, log Logger) *Scheduler {
	cfg := DefaultSchedulerConfig()
	cfg.Workers = workers
	cfg.MaxTasksPerWorker = maxTasksPerWorker
	return NewWithConfig(cfg, log)
}

// NewWithConfig constructs a Scheduler from a fully-specified
// SchedulerConfig, e.g. one loaded via LoadSchedulerConfig.
func NewWithConfig(cfg SchedulerConfig, log Logger) *Scheduler {
	if cfg.Workers <= 0 {
		panic("realmsched: Workers must be >= 1")
	}
	if cfg.MaxTasksPerWorker <= 0 {
		panic("realmsched: MaxTasksPerWorker must be >= 1")
	}
	if cfg.StealAttempts <= 0 {
		cfg.StealAttempts = DefaultStealAttempts
	}
	if cfg.IdleParkInterval <= 0 {
		cfg.IdleParkInterval = DefaultIdleParkInterval
	}
	if log == nil {
		log = NewNoopLogger()
	}

	s := &Scheduler{
		cfg:    cfg,
		log:    log,
		stopCh: make(chan struct{}),
		idle:   newBroadcaster(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	s.deques = make([]*taskDeque, cfg.Workers)
	s.arenas = make([]*arena, cfg.Workers)
	s.workers = make([]*Worker, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		s.deques[i] = newTaskDeque(cfg.MaxTasksPerWorker, log)
		s.arenas[i] = newArena(cfg.MaxTasksPerWorker)
		s.workers[i] = newWorker(i, s, s.deques[i], s.arenas[i])
	}

	s.wg.Add(cfg.Workers)
	for _, w := range s.workers {
		go w.run()
	}

	return s
}

// CreateTask allocates a Task from the current worker's arena (or, if
// called from outside the pool, from worker 0's arena -- the designated
// external-caller policy). If parent is non-nil, parent's unfinished
// counter is incremented before CreateTask returns, so the child can
// never be observed running before its parent knows to wait for it.
func (s *Scheduler) CreateTask(body TaskFunc, parent *Task) *Task {
	t := s.currentArena().allocate()
	*t = Task{}
	t.id = newTaskID()
	t.body = body
	t.parent = parent
	t.unfinished.Store(1)
	if parent != nil {
		parent.unfinished.Add(1)
	}
	s.metrics.tasksCreated.Add(1)
	return t
}

// AddContinuation appends continuation to ancestor's continuation list,
// to be scheduled once ancestor completes. Continuations must be
// attached before Run(ancestor); attaching afterward is a logged misuse,
// and -- rather than silently dropping continuation -- it is scheduled
// immediately as a best-effort fallback. The continuation list has room
// for a small, fixed number of entries; exceeding it panics.
func (s *Scheduler) AddContinuation(ancestor, continuation *Task) {
	if ancestor.ran.Load() {
		s.log.Warnf("realmsched: add_continuation(%s, %s) called after ancestor was run; scheduling immediately", ancestor.id, continuation.id)
		continuation.ran.Store(true)
		s.targetDeque().push(continuation)
		s.idle.broadcast()
		return
	}
	idx := ancestor.contCount.Add(1) - 1
	if idx >= maxContinuations {
		panic("realmsched: continuation list full")
	}
	ancestor.continuations[idx] = continuation
}

// Run enqueues task on the current worker's deque (or worker 0's, for an
// external caller).
func (s *Scheduler) Run(task *Task) {
	task.ran.Store(true)
	s.targetDeque().push(task)
	s.idle.broadcast()
}

// Wait blocks the calling goroutine until task is complete. While
// waiting, the caller participates in scheduling -- fetching and
// executing other runnable tasks, just like a worker's main loop -- so
// that Wait can never deadlock when called from inside a task body that
// is itself waiting on its own children.
func (s *Scheduler) Wait(task *Task) {
	for task.unfinished.Load() != 0 {
		if s.stopped.Load() {
			return
		}
		if !s.helpOnce() {
			runtime.Gosched()
		}
	}
}

// Stop sets the stop flag, wakes every parked worker, and joins their
// goroutines. Idempotent: calling Stop more than once after the first
// has no further effect.
func (s *Scheduler) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	close(s.stopCh)
	for _, w := range s.workers {
		w.stop.Store(true)
	}
	s.idle.broadcast()
	s.wg.Wait()

	// The minimal-core policy from spec.md §4.2/§9: arenas are only ever
	// reset wholesale at shutdown, once every worker has stopped touching
	// them.
	for _, a := range s.arenas {
		a.reset()
		s.metrics.arenaResets.Add(1)
	}
}

// Metrics returns a snapshot of scheduler activity counters.
func (s *Scheduler) Metrics() SchedulerMetrics {
	return s.metrics.snapshot()
}

// NumWorkers returns the number of worker goroutines in the pool.
func (s *Scheduler) NumWorkers() int {
	return len(s.workers)
}

// helpOnce fetches and runs at most one task on behalf of a waiting
// caller, returning whether it found work to do.
func (s *Scheduler) helpOnce() bool {
	var task *Task
	if w := lookupCurrentWorker(); w != nil {
		task = s.fetchTask(w)
	} else {
		task = s.fetchTaskExternal()
	}
	if task == nil {
		return false
	}
	s.execute(task)
	s.finish(task)
	return true
}

// fetchTask returns a runnable task for worker w: its own deque first,
// then a bounded number of steal attempts against random peers.
func (s *Scheduler) fetchTask(w *Worker) *Task {
	if t := w.dq.pop(); t != nil {
		return t
	}
	n := len(s.deques)
	if n <= 1 {
		return nil
	}
	for attempt := 0; attempt < s.cfg.StealAttempts; attempt++ {
		victim := s.randomPeer(w.id, n)
		if t := s.deques[victim].steal(); t != nil {
			s.metrics.tasksStolen.Add(1)
			return t
		}
		s.metrics.stealAttemptsFailed.Add(1)
	}
	return nil
}

// fetchTaskExternal is the helper path for a non-worker goroutine blocked
// in Wait: it may only steal (never pop, since pop assumes a single
// owner), trying random victims including worker 0's deque.
func (s *Scheduler) fetchTaskExternal() *Task {
	n := len(s.deques)
	for attempt := 0; attempt < s.cfg.StealAttempts; attempt++ {
		victim := s.randomIndex(n)
		if t := s.deques[victim].steal(); t != nil {
			s.metrics.tasksStolen.Add(1)
			return t
		}
		s.metrics.stealAttemptsFailed.Add(1)
	}
	return nil
}

// execute invokes task's body. A panicking body is recovered, logged,
// and still counted as executed -- a task body's failure must never take
// down the rest of the pool, and finish runs on it regardless, so its
// metrics must reflect that it ran.
func (s *Scheduler) execute(task *Task) {
	defer func() {
		s.metrics.tasksExecuted.Add(1)
		if r := recover(); r != nil {
			s.log.Errorf("realmsched: task %s panicked (swallowed): %v", task.id, r)
		}
	}()
	task.body(task)
}

// finish decrements task's unfinished counter. If it reaches zero, every
// continuation attached to task is scheduled and, if task has a parent,
// finish recurses on it -- this is finish propagation: a parent
// completes only once every descendant has, and a parent's continuations
// therefore fire only once the whole subtree is done.
func (s *Scheduler) finish(task *Task) {
	if task.unfinished.Add(-1) != 0 {
		return
	}

	n := task.contCount.Load()
	if n > maxContinuations {
		n = maxContinuations
	}
	dq := s.targetDeque()
	woke := false
	for i := int32(0); i < n; i++ {
		if c := task.continuations[i]; c != nil {
			c.ran.Store(true)
			dq.push(c)
			woke = true
		}
	}
	if woke {
		s.idle.broadcast()
	}

	if task.parent != nil {
		s.finish(task.parent)
	}
}

func (s *Scheduler) currentArena() *arena {
	if w := lookupCurrentWorker(); w != nil {
		return w.arena
	}
	return s.arenas[0]
}

func (s *Scheduler) targetDeque() *taskDeque {
	if w := lookupCurrentWorker(); w != nil {
		return w.dq
	}
	return s.deques[0]
}

func (s *Scheduler) randomPeer(self, n int) int {
	if n <= 1 {
		return self
	}
	for {
		v := s.randomIndex(n)
		if v != self {
			return v
		}
	}
}

func (s *Scheduler) randomIndex(n int) int {
	s.rngMu.Lock()
	v := s.rng.Intn(n)
	s.rngMu.Unlock()
	return v
}
