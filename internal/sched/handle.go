package sched

// Handle lets a caller observe, await or cancel a task without owning its
// execution.
type Handle struct {
	s *Scheduler
	t *Task
}

func (h *Handle) ID() TaskID { return h.t.id }

func (h *Handle) Name() string { return h.t.name }

func (h *Handle) State() State { return h.t.state }

// IsDone reports whether the task is terminal. It never suspends.
func (h *Handle) IsDone() bool { return h.t.terminal() }

// Result returns the stored outcome of a terminal task, or ErrNotDone.
// Repeated calls return the same values.
func (h *Handle) Result() (any, error) {
	if !h.t.terminal() {
		return nil, ErrNotDone
	}
	return h.t.outcome()
}

// Await joins the task from within another task's body.
func (h *Handle) Await(co *Co) (any, error) { return co.Join(h) }

// Cancel marks a non-terminal task Cancelled. Cancelling a terminal task is
// a no-op and returns false.
func (h *Handle) Cancel() bool { return h.s.cancel(h.t) }
