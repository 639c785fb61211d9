package realmsched

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DequeTestSuite struct {
	suite.Suite
}

func TestDequeTestSuite(t *testing.T) {
	suite.Run(t, new(DequeTestSuite))
}

func (ts *DequeTestSuite) newDeque(capacity int) *taskDeque {
	return newTaskDeque(capacity, NewNoopLogger())
}

func (ts *DequeTestSuite) TestCapacityRoundsUpToPowerOfTwo() {
	d := ts.newDeque(10)
	ts.Equal(16, d.capacity())
}

func (ts *DequeTestSuite) TestPushPopIsLIFO() {
	d := ts.newDeque(8)
	t1, t2, t3 := &Task{}, &Task{}, &Task{}

	d.push(t1)
	d.push(t2)
	d.push(t3)

	ts.Same(t3, d.pop())
	ts.Same(t2, d.pop())
	ts.Same(t1, d.pop())
	ts.Nil(d.pop())
}

func (ts *DequeTestSuite) TestStealIsFIFO() {
	d := ts.newDeque(8)
	t1, t2, t3 := &Task{}, &Task{}, &Task{}

	d.push(t1)
	d.push(t2)
	d.push(t3)

	ts.Same(t1, d.steal())
	ts.Same(t2, d.steal())
	ts.Same(t3, d.steal())
	ts.Nil(d.steal())
}

func (ts *DequeTestSuite) TestPopOnEmptyReturnsNil() {
	d := ts.newDeque(8)
	ts.Nil(d.pop())
	ts.Equal(0, d.size())
}

func (ts *DequeTestSuite) TestStealOnEmptyReturnsNil() {
	d := ts.newDeque(8)
	ts.Nil(d.steal())
}

func (ts *DequeTestSuite) TestOverCapacityPushIsDroppedNotCorrupted() {
	d := ts.newDeque(2)
	for i := 0; i < 10; i++ {
		d.push(&Task{})
	}
	ts.LessOrEqual(d.size(), d.capacity())
}

// TestConcurrentStealersExactlyOneWins exercises the last-element race
// (spec.md S5 "steal correctness"): many thieves race a single owner pop
// for the very last element; across the whole run, every task is
// returned by exactly one of pop/steal, never twice, never lost.
func (ts *DequeTestSuite) TestConcurrentStealersExactlyOneWins() {
	const numTasks = 20000
	const numThieves = 8

	d := ts.newDeque(numTasks)
	tasks := make([]*Task, numTasks)
	seen := make([]int32, numTasks)
	index := make(map[*Task]int, numTasks)
	for i := range tasks {
		tasks[i] = &Task{}
		index[tasks[i]] = i
		d.push(tasks[i])
	}

	var mu sync.Mutex
	record := func(t *Task) {
		mu.Lock()
		seen[index[t]]++
		mu.Unlock()
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numThieves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if t := d.steal(); t != nil {
					record(t)
				}
			}
		}()
	}

	owned := 0
	for {
		t := d.pop()
		if t == nil {
			break
		}
		record(t)
		owned++
	}
	close(stop)
	wg.Wait()

	total := 0
	for _, c := range seen {
		ts.LessOrEqual(c, int32(1), "task returned more than once")
		total += int(c)
	}
	ts.Equal(numTasks, total, "every task must be returned exactly once")
	ts.GreaterOrEqual(owned, 0)
}
