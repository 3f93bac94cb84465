package sched

import (
	"runtime"
	"runtime/debug"
	"time"
)

type requestKind int

const (
	requestWait requestKind = iota
	requestJoin
	requestDone
	requestExit
)

// request is what a body hands back to the scheduler when it stops running.
type request struct {
	kind    requestKind
	delay   time.Duration
	targets []*Task
	value   any
	err     error
}

// resumeMsg is what the scheduler hands to a body when it resumes it.
type resumeMsg struct {
	value any
	err   error
	from  TaskID
	abort bool
}

// coroutine runs a task body on its own goroutine. Control is passed over
// unbuffered channels so that either the scheduler or the body runs, never
// both.
type coroutine struct {
	resumeCh chan resumeMsg
	yieldCh  chan request
	started  bool
	finished bool
	aborting bool
}

func newCoroutine() *coroutine {
	return &coroutine{
		resumeCh: make(chan resumeMsg),
		yieldCh:  make(chan request),
	}
}

func (c *coroutine) start(body Body, co *Co) {
	c.started = true
	go c.run(body, co)
}

// suspended reports whether a goroutine is parked inside the body.
func (c *coroutine) suspended() bool { return c.started && !c.finished }

// resume hands control to the body and blocks until it yields or returns.
func (c *coroutine) resume(msg resumeMsg) request {
	c.resumeCh <- msg
	req := <-c.yieldCh
	if req.kind == requestDone || req.kind == requestExit {
		c.finished = true
	}
	return req
}

// abort unwinds a parked body. Deferred functions in the body run before it
// returns.
func (c *coroutine) abort() {
	if !c.suspended() {
		return
	}
	c.aborting = true
	c.resumeCh <- resumeMsg{abort: true}
	<-c.yieldCh
	c.finished = true
}

// yield is called on the body's goroutine.
func (c *coroutine) yield(req request) resumeMsg {
	c.yieldCh <- req
	msg := <-c.resumeCh
	if msg.abort {
		runtime.Goexit()
	}
	return msg
}

func (c *coroutine) run(body Body, co *Co) {
	returned := false
	defer func() {
		if returned {
			return
		}
		if r := recover(); r != nil {
			c.yieldCh <- request{kind: requestDone, err: &PanicError{Value: r, Stack: debug.Stack()}}
			return
		}
		c.yieldCh <- request{kind: requestExit}
	}()

	if msg := <-c.resumeCh; msg.abort {
		runtime.Goexit()
	}
	v, err := body(co)
	returned = true
	c.yieldCh <- request{kind: requestDone, value: v, err: err}
}
