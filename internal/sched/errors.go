package sched

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCancelled     = errors.New("sched: task cancelled")
	ErrDeadlock      = errors.New("sched: deadlock")
	ErrNotDone       = errors.New("sched: task not done")
	ErrClosed        = errors.New("sched: scheduler closed")
	ErrReentrant     = errors.New("sched: cannot drive the loop from within the loop")
	ErrStepLimit     = errors.New("sched: step limit reached")
	ErrForeignHandle = errors.New("sched: handle belongs to another scheduler")
	ErrSelfJoin      = errors.New("sched: task cannot join itself")
	ErrExited        = errors.New("sched: task body exited without returning")
)

// TaskFailure is stored on a task whose body returned an error or panicked.
type TaskFailure struct {
	Task TaskID
	Name string
	Err  error
}

func (e *TaskFailure) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("task %d (%s) failed: %v", e.Task, e.Name, e.Err)
	}
	return fmt.Sprintf("task %d failed: %v", e.Task, e.Err)
}

func (e *TaskFailure) Unwrap() error { return e.Err }

// CancelledError is delivered to the waiters of a cancelled task.
type CancelledError struct {
	Task TaskID
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("task %d cancelled", e.Task)
}

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

// DeadlockError is returned when the awaited task can never become runnable:
// both queues are empty while it is still pending.
type DeadlockError struct {
	Target  TaskID
	Blocked []TaskID
	At      time.Duration
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("sched: deadlock at %s awaiting task %d (blocked: %v)", e.At, e.Target, e.Blocked)
}

func (e *DeadlockError) Is(target error) bool { return target == ErrDeadlock }

// PanicError carries a panic recovered from a task body.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// failure wraps err for storage on t. Failures that already identify a task
// are kept unchanged so that they surface as-is through joins and gathers.
func failure(t *Task, err error) error {
	var tf *TaskFailure
	var ce *CancelledError
	if errors.As(err, &tf) || errors.As(err, &ce) {
		return err
	}
	return &TaskFailure{Task: t.id, Name: t.name, Err: err}
}
