package sched

import "github.com/emirpasic/gods/lists/doublylinkedlist"

// readyQueue is the FIFO of tasks eligible to run now.
type readyQueue struct {
	list *doublylinkedlist.List
}

func newReadyQueue() *readyQueue {
	return &readyQueue{list: doublylinkedlist.New()}
}

func (q *readyQueue) enqueue(t *Task) { q.list.Add(t) }

// dequeue pops the oldest entry.
func (q *readyQueue) dequeue() (*Task, bool) {
	v, ok := q.list.Get(0)
	if !ok {
		return nil, false
	}
	q.list.Remove(0)
	return v.(*Task), true
}

// remove drops t from the queue if present. Only cancellation needs it.
func (q *readyQueue) remove(t *Task) bool {
	idx := q.list.IndexOf(t)
	if idx < 0 {
		return false
	}
	q.list.Remove(idx)
	return true
}

func (q *readyQueue) len() int { return q.list.Size() }

func (q *readyQueue) empty() bool { return q.list.Empty() }
