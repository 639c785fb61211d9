package realmsched

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// Every worker publishes its identity for the lifetime of its run loop so
// that code executing inside a task body -- which has no explicit handle
// to "which worker am I" -- can find the right arena and deque via
// Scheduler.CreateTask / Scheduler.Run without threading an argument
// through every call.
//
// Go has no native thread-local storage, and goroutines are not pinned to
// OS threads, but a Worker's run loop never spawns further goroutines and
// lives for the Scheduler's whole lifetime, so keying off the running
// goroutine's numeric ID (parsed from runtime.Stack, the standard
// goroutine-local-storage idiom) is safe here.
var (
	workerLocalMu sync.RWMutex
	workerLocal   = make(map[uint64]*Worker)
)

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

func setCurrentWorker(w *Worker) {
	workerLocalMu.Lock()
	workerLocal[goroutineID()] = w
	workerLocalMu.Unlock()
}

func clearCurrentWorker() {
	id := goroutineID()
	workerLocalMu.Lock()
	delete(workerLocal, id)
	workerLocalMu.Unlock()
}

// lookupCurrentWorker returns the Worker owning the calling goroutine, or
// nil if the caller is not a worker's run loop (e.g. an external caller
// of CreateTask/Run/Wait).
func lookupCurrentWorker() *Worker {
	workerLocalMu.RLock()
	w := workerLocal[goroutineID()]
	workerLocalMu.RUnlock()
	return w
}
