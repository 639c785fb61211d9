package realmsched

import (
	"fmt"
	"sync"
)

// arena is a bounded, ring-shaped pool of Task records owned by a single
// worker. Allocation is constant time: the slot at allocated % len(slots)
// is handed out and the counter advances. Slots are reused once the ring
// wraps, which is safe only once the task that previously occupied a slot
// has finished -- see Scheduler's external-caller policy in scheduler.go
// for the one case (worker 0) where allocation is shared across threads.
type arena struct {
	mu        sync.Mutex
	slots     []Task
	allocated uint64
}

func newArena(maxTasks int) *arena {
	return &arena{slots: make([]Task, maxTasks)}
}

// allocate returns the next slot, overwriting whatever task previously
// lived there. If the ring has already wrapped once and the slot being
// reused still has unfinished work, that is an arena overflow: the caller
// sized MAX_TASKS too small for its workload. Handing out that slot would
// silently corrupt a still-live Task -- possibly still referenced as
// someone's parent or sitting in a deque -- so this asserts instead of
// logging and continuing, matching AddContinuation's over-capacity panic.
func (a *arena) allocate() *Task {
	a.mu.Lock()
	idx := a.allocated % uint64(len(a.slots))
	wrapped := a.allocated >= uint64(len(a.slots))
	a.allocated++
	a.mu.Unlock()

	slot := &a.slots[idx]
	if wrapped && slot.unfinished.Load() != 0 {
		panic(fmt.Sprintf("realmsched: arena overflow, slot %d still has an unfinished task", idx))
	}
	return slot
}

// reset rewinds the allocation counter. The minimal-core scheduler only
// calls this on shutdown; see the open question in SPEC_FULL.md about
// quiescence-driven reclamation.
func (a *arena) reset() {
	a.mu.Lock()
	a.allocated = 0
	a.mu.Unlock()
}

func (a *arena) capacity() int {
	return len(a.slots)
}
