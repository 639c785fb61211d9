// Command realmsched-demo exercises the scheduler the way a realm
// gateway tick handler would: fan a tick out into per-entity tasks,
// reduce a range with recursive splitting, and chain a continuation
// that only fires once its ancestor's whole subtree has finished.
package main

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/go-foundations/realmsched"
)

func main() {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	sched := realmsched.New(4, 4096, realmsched.NewLogrusLogger(log))
	defer sched.Stop()

	fanOutTick(sched)
	recursiveSum(sched)
	continuationDemo(sched)

	m := sched.Metrics()
	fmt.Println("\nMetrics:")
	fmt.Println("--------")
	fmt.Printf("Tasks created:         %d\n", m.TasksCreated)
	fmt.Printf("Tasks executed:        %d\n", m.TasksExecuted)
	fmt.Printf("Tasks stolen:          %d\n", m.TasksStolen)
	fmt.Printf("Failed steal attempts: %d\n", m.StealAttemptsFailed)
}

// fanOutTick simulates a realm tick that spawns one task per entity.
func fanOutTick(sched *realmsched.Scheduler) {
	const entities = 1000
	var ticked int64

	root := sched.CreateTask(func(t *realmsched.Task) {
		for i := 0; i < entities; i++ {
			child := sched.CreateTask(func(*realmsched.Task) {
				atomic.AddInt64(&ticked, 1)
			}, t)
			sched.Run(child)
		}
	}, nil)
	sched.Run(root)
	sched.Wait(root)

	fmt.Printf("=== Realm tick fan-out ===\nticked %d entities\n\n", ticked)
}

// recursiveSum computes sum(1..1024) by splitting the range in half
// until each leaf holds a single value, the way a parallel reduction
// inside a tick handler would sum per-entity scores.
func recursiveSum(sched *realmsched.Scheduler) {
	var split func(parent *realmsched.Task, lo, hi int, out *int64)
	split = func(parent *realmsched.Task, lo, hi int, out *int64) {
		if hi-lo == 1 {
			*out = int64(lo)
			return
		}
		mid := lo + (hi-lo)/2
		var left, right int64

		task := sched.CreateTask(func(t *realmsched.Task) {
			lt := sched.CreateTask(func(*realmsched.Task) { split(t, lo, mid, &left) }, t)
			rt := sched.CreateTask(func(*realmsched.Task) { split(t, mid, hi, &right) }, t)
			sched.Run(lt)
			sched.Run(rt)
		}, parent)
		sched.Run(task)
		sched.Wait(task)
		*out = left + right
	}

	var total int64
	root := sched.CreateTask(func(t *realmsched.Task) {
		split(t, 1, 1025, &total)
	}, nil)
	sched.Run(root)
	sched.Wait(root)

	fmt.Printf("=== Recursive range sum ===\nsum(1..1024) = %d\n\n", total)
}

// continuationDemo chains a two-phase sequence: b only starts once a's
// whole subtree (here just itself) has completed.
func continuationDemo(sched *realmsched.Scheduler) {
	var phase1Done bool

	a := sched.CreateTask(func(*realmsched.Task) {
		phase1Done = true
	}, nil)
	b := sched.CreateTask(func(*realmsched.Task) {
		fmt.Printf("=== Continuation ===\nphase 1 done before phase 2: %v\n\n", phase1Done)
	}, nil)

	sched.AddContinuation(a, b)
	sched.Run(a)
	sched.Wait(b)
}
