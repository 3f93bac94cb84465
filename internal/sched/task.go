package sched

import "time"

// TaskID uniquely identifies a task in the scheduler.
type TaskID uint64

// State is the lifecycle state of a task.
type State int

const (
	StatePending State = iota
	StateRunnable
	StateWaiting
	StateDone
	StateFailed
	StateCancelled
)

func (st State) String() string {
	switch st {
	case StatePending:
		return "Pending"
	case StateRunnable:
		return "Runnable"
	case StateWaiting:
		return "Waiting"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (st State) Terminal() bool {
	return st == StateDone || st == StateFailed || st == StateCancelled
}

// Body is the unit of work run by a task. It talks to the scheduler only
// through co.
type Body func(co *Co) (any, error)

// Task represents one schedulable unit of work.
// All fields are owned by the scheduler's step loop.
type Task struct {
	id    TaskID
	name  string
	state State
	body  Body
	co    *coroutine

	wakeAt time.Duration // valid while timer != nil
	timer  *timerKey

	waiters []TaskID // tasks joined on this one, in registration order
	joining []TaskID // targets this task is joined on while Waiting
	resume  resumeMsg

	result any
	err    error
}

// newTask creates a pending task. The continuation is started lazily on the
// first dispatch.
func newTask(id TaskID, name string, body Body) *Task {
	return &Task{
		id:    id,
		name:  name,
		state: StatePending,
		body:  body,
		co:    newCoroutine(),
	}
}

func (t *Task) terminal() bool { return t.state.Terminal() }

func (t *Task) outcome() (any, error) { return t.result, t.err }

func (t *Task) addWaiter(id TaskID) {
	for _, w := range t.waiters {
		if w == id {
			return
		}
	}
	t.waiters = append(t.waiters, id)
}

func (t *Task) removeWaiter(id TaskID) {
	for i, w := range t.waiters {
		if w == id {
			t.waiters = append(t.waiters[:i], t.waiters[i+1:]...)
			return
		}
	}
}
