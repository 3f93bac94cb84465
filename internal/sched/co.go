package sched

import "time"

// Co is the body's view of the scheduler. Its methods must only be called
// from the body it was passed to.
type Co struct {
	s *Scheduler
	t *Task
}

// ID returns the running task's id.
func (c *Co) ID() TaskID { return c.t.id }

// Handle returns a handle to the running task.
func (c *Co) Handle() *Handle { return &Handle{s: c.s, t: c.t} }

// Now returns the scheduler's virtual clock.
func (c *Co) Now() time.Duration { return c.s.now }

// Emit passes effect through to the scheduler's observers unchanged.
// It does not suspend.
func (c *Co) Emit(effect any) {
	ev := taskEvent(EventEmit, c.t)
	ev.Effect = effect
	c.s.publish(ev)
}

// Wait suspends the task for d of virtual time. A negative d is treated as
// zero, which still yields to every task that is runnable now.
func (c *Co) Wait(d time.Duration) error {
	return c.suspend(request{kind: requestWait, delay: d}).err
}

// Join suspends the task until h's task is terminal and returns its outcome.
func (c *Co) Join(h *Handle) (any, error) {
	if err := c.s.own(h); err != nil {
		return nil, err
	}
	if h.t == c.t {
		return nil, ErrSelfJoin
	}
	msg := c.suspend(request{kind: requestJoin, targets: []*Task{h.t}})
	return msg.value, msg.err
}

// Spawn creates a sibling task. It does not run until the loop dispatches it.
func (c *Co) Spawn(body Body, opts ...SpawnOption) *Handle {
	return c.s.Spawn(body, opts...)
}

// Gather combines handles, see Scheduler.Gather.
func (c *Co) Gather(handles ...*Handle) *Handle {
	return c.s.Gather(handles...)
}

// joinAny suspends until any of targets is terminal. The resume message
// names the target that woke the task.
func (c *Co) joinAny(targets []*Task) resumeMsg {
	return c.suspend(request{kind: requestJoin, targets: targets})
}

func (c *Co) suspend(req request) resumeMsg {
	// A body being unwound by cancellation may still call Wait or Join
	// from its deferred functions; those must not park again.
	if c.t.co.aborting {
		return resumeMsg{err: c.t.err}
	}
	return c.t.co.yield(req)
}
