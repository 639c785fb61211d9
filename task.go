package realmsched

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// maxContinuations bounds the inline continuation list carried by every
// Task. Fifteen slots keeps a Task small enough to live inline in an
// arena without heap traffic on the allocation hot path.
const maxContinuations = 15

// TaskFunc is the callable body of a Task. It is invoked at most once.
type TaskFunc func(t *Task)

// Task is the unit of work scheduled by a Scheduler. A Task is never
// constructed directly; it is obtained from Scheduler.CreateTask, which
// allocates it from the calling worker's arena.
type Task struct {
	id     uuid.UUID
	body   TaskFunc
	parent *Task

	// unfinished is 1 (for the task itself) plus the number of direct
	// children that have not yet finished. The task is complete once this
	// reaches zero.
	unfinished atomic.Int32

	// ran records whether Run(task) has been called. Continuations may
	// only be attached before this flips; see Scheduler.AddContinuation.
	ran atomic.Bool

	continuations [maxContinuations]*Task
	contCount     atomic.Int32
}

func newTaskID() uuid.UUID {
	return uuid.New()
}

// ID returns the Task's identity, stamped at creation for log correlation.
// It plays no role in scheduling decisions.
func (t *Task) ID() uuid.UUID {
	return t.id
}

// Done reports whether the task and all of its transitively-created
// children have finished.
func (t *Task) Done() bool {
	return t.unfinished.Load() == 0
}

// Parent returns the task's parent, or nil for a root task.
func (t *Task) Parent() *Task {
	return t.parent
}
