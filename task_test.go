package realmsched

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TaskTestSuite struct {
	suite.Suite
}

func TestTaskTestSuite(t *testing.T) {
	suite.Run(t, new(TaskTestSuite))
}

func (ts *TaskTestSuite) TestDoneReflectsUnfinishedCounter() {
	var task Task
	task.unfinished.Store(1)
	ts.False(task.Done())

	task.unfinished.Store(0)
	ts.True(task.Done())
}

func (ts *TaskTestSuite) TestParentReturnsBackReference() {
	parent := &Task{}
	child := &Task{parent: parent}
	ts.Same(parent, child.Parent())
	ts.Nil(parent.Parent())
}

func (ts *TaskTestSuite) TestIDsAreUniquePerTask() {
	a := newTaskID()
	b := newTaskID()
	ts.NotEqual(a, b)
}
