package reconciler

import (
	"golang-bookkeeping-engine/internal/models"
)

// MaxDisplacementDepth bounds a displacement cascade. A task displaced past
// this depth is dropped with a warning and its payment is reported
// unmatched.
const MaxDisplacementDepth = 5

// DisplacementTask is one displaced payment waiting for a re-search. Depth
// counts the cascade hops that led here; DisplacedFrom is the slot it lost.
type DisplacementTask struct {
	Payment       *models.Payment
	DisplacedFrom models.RowRef
	Depth         int
}

// taskQueue is the FIFO queue driving displacement cascades. Re-searches
// run in displacement order so earlier displacements settle first.
type taskQueue struct {
	tasks []DisplacementTask
}

// Push appends a task.
func (q *taskQueue) Push(task DisplacementTask) {
	q.tasks = append(q.tasks, task)
}

// Pop removes and returns the oldest task. On an empty queue it returns a
// zero task and false.
func (q *taskQueue) Pop() (DisplacementTask, bool) {
	if len(q.tasks) == 0 {
		return DisplacementTask{}, false
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task, true
}

// Len returns the number of queued tasks.
func (q *taskQueue) Len() int {
	return len(q.tasks)
}
