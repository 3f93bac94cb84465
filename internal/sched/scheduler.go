// internal/sched/scheduler.go

package sched

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"coloop/internal/idgen"
)

// Scheduler is a single-threaded cooperative event loop over a virtual clock.
type Scheduler struct {
	// Scheduler-related
	id      string           // loop identifier used in logs and traces
	cfg     Config           // loop configuration
	now     time.Duration    // virtual clock, advanced only by step
	nextID  TaskID           // last assigned task id
	ready   *readyQueue      // tasks eligible to run now
	timers  *timerQueue      // tasks waiting for a virtual time
	live    map[TaskID]*Task // non-terminal tasks by id
	current *Task            // task whose body is running, if any
	driving bool             // an Await is in progress
	closed  bool
	pacer   Pacer
	clock   *TickClock // owned pacer, stopped on Close

	// logging-related
	logger    *slog.Logger
	observers []Observer
	csvFile   *os.File
	csv       *CSVRecorder
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Events are logged through it at debug level
// and emitted effects at info level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithObserver registers an observer for loop events.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observers = append(s.observers, o) }
}

// WithPacer overrides the real-time adapter.
func WithPacer(p Pacer) Option {
	return func(s *Scheduler) { s.pacer = p }
}

// WithID sets the loop identifier instead of generating one.
func WithID(id string) Option {
	return func(s *Scheduler) { s.id = id }
}

// SpawnOption configures a spawned task.
type SpawnOption func(*Task)

// WithName labels a task in events and errors.
func WithName(name string) SpawnOption {
	return func(t *Task) { t.name = name }
}

// New creates a new Scheduler instance with the given configuration.
func New(cfg Config, opts ...Option) *Scheduler {
	cfg.clamp()
	s := &Scheduler{
		id:     idgen.New(),
		cfg:    cfg,
		ready:  newReadyQueue(),
		timers: newTimerQueue(),
		live:   make(map[TaskID]*Task),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sched", "loop", s.id)
	s.observers = append([]Observer{LogObserver(s.logger)}, s.observers...)

	if s.pacer == nil && cfg.Realtime {
		s.clock = NewTickClock(0)
		s.clock.Start(time.Duration(cfg.TickMS) * time.Millisecond)
		s.pacer = s.clock
	}
	return s
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// The file is flushed and closed by Close.
func (s *Scheduler) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create event log: %w", err)
	}
	s.csvFile = f
	s.csv = NewCSVRecorder(f)
	s.observers = append(s.observers, s.csv.Observe)
	return nil
}

// ID returns the loop identifier.
func (s *Scheduler) ID() string { return s.id }

// Now returns the virtual clock.
func (s *Scheduler) Now() time.Duration { return s.now }

// Spawn creates a task and queues it to run. The body is not executed until
// the loop dispatches it.
func (s *Scheduler) Spawn(body Body, opts ...SpawnOption) *Handle {
	s.nextID++
	t := newTask(s.nextID, "", body)
	for _, opt := range opts {
		opt(t)
	}
	h := &Handle{s: s, t: t}

	if s.closed {
		t.state = StateFailed
		t.err = &TaskFailure{Task: t.id, Name: t.name, Err: ErrClosed}
		return h
	}

	s.live[t.id] = t
	ev := taskEvent(EventSpawn, t)
	if s.current != nil {
		ev.Target = s.current.id
	}
	s.publish(ev)
	s.makeRunnable(t)
	return h
}

// RunUntilComplete spawns root and drives the loop until it is terminal.
func (s *Scheduler) RunUntilComplete(ctx context.Context, root Body, opts ...SpawnOption) (any, error) {
	if s.driving {
		return nil, ErrReentrant
	}
	return s.Await(ctx, s.Spawn(root, opts...))
}

// Await drives the loop until h's task is terminal and returns its outcome.
// Tasks that are still pending afterwards stay suspended and continue on the
// next Await.
func (s *Scheduler) Await(ctx context.Context, h *Handle) (any, error) {
	if err := s.own(h); err != nil {
		return nil, err
	}
	if s.driving {
		return nil, ErrReentrant
	}
	if h.t.terminal() {
		return h.t.outcome()
	}
	if s.closed {
		return nil, ErrClosed
	}

	s.driving = true
	defer func() { s.driving = false }()

	steps := 0
	for ; !h.t.terminal(); steps++ {
		// 1) check shutdown
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.cfg.MaxSteps > 0 && steps >= s.cfg.MaxSteps {
			return nil, ErrStepLimit
		}

		progressed, err := s.step(ctx)
		if err != nil {
			return nil, err
		}
		if !progressed {
			return nil, s.deadlock(h.t)
		}
	}
	s.logger.Debug("await finished", "task", h.t.id, "steps", steps,
		"ready", s.ready.len(), "timers", s.timers.len())
	return h.t.outcome()
}

// step performs one loop iteration. It reports false when neither queue has
// anything left to do.
func (s *Scheduler) step(ctx context.Context) (bool, error) {
	if s.ready.empty() && s.timers.empty() {
		return false, nil
	}

	// 2) dispatch the oldest runnable task
	if t, ok := s.ready.dequeue(); ok {
		s.dispatch(t)
		return true, nil
	}

	// 3) nothing runnable: jump the clock to the earliest timer
	wakeAt, _ := s.timers.peek()
	if wakeAt > s.now {
		if s.pacer != nil {
			if err := s.pacer.Advance(ctx, wakeAt-s.now); err != nil {
				return false, err
			}
		}
		s.now = wakeAt
		s.publish(Event{Kind: EventAdvance})
	}
	for _, t := range s.timers.drainReady(s.now) {
		t.timer = nil
		s.publish(taskEvent(EventWake, t))
		s.makeRunnable(t)
	}
	return true, nil
}

// dispatch runs t's body until its next suspension point or return.
func (s *Scheduler) dispatch(t *Task) {
	s.publish(taskEvent(EventDispatch, t))

	msg := t.resume
	t.resume = resumeMsg{}
	if !t.co.started {
		t.co.start(t.body, &Co{s: s, t: t})
	}

	s.current = t
	req := t.co.resume(msg)
	s.current = nil

	s.handle(t, req)
}

// handle applies what the body asked for when it stopped running.
func (s *Scheduler) handle(t *Task, req request) {
	// cancelled while running: the body never runs again
	if t.state == StateCancelled {
		t.co.abort()
		return
	}

	switch req.kind {
	case requestWait:
		d := req.delay
		if d < 0 {
			d = 0
		}
		t.state = StateWaiting
		t.wakeAt = s.now + d
		key := s.timers.schedule(t, t.wakeAt)
		t.timer = &key

		ev := taskEvent(EventWait, t)
		ev.WakeAt = t.wakeAt
		s.publish(ev)

	case requestJoin:
		for _, target := range req.targets {
			if target.terminal() {
				ev := taskEvent(EventJoin, t)
				ev.Target = target.id
				s.publish(ev)

				t.resume = joinResult(target)
				s.makeRunnable(t)
				return
			}
		}
		t.state = StateWaiting
		for _, target := range req.targets {
			target.addWaiter(t.id)
			t.joining = append(t.joining, target.id)
		}
		ev := taskEvent(EventJoin, t)
		ev.Target = req.targets[0].id
		s.publish(ev)

	case requestDone:
		s.finish(t, req.value, req.err)

	case requestExit:
		s.finish(t, nil, ErrExited)
	}
}

func (s *Scheduler) finish(t *Task, v any, err error) {
	if err != nil {
		t.state = StateFailed
		t.err = failure(t, err)
		ev := taskEvent(EventFail, t)
		ev.Err = t.err
		s.publish(ev)
	} else {
		t.state = StateDone
		t.result = v
		s.publish(taskEvent(EventDone, t))
	}
	s.settle(t)
}

// settle drops a terminal task from the live set and wakes its waiters in
// the order they joined.
func (s *Scheduler) settle(t *Task) {
	delete(s.live, t.id)
	waiters := t.waiters
	t.waiters = nil

	for _, id := range waiters {
		w, ok := s.live[id]
		if !ok || w.state != StateWaiting {
			continue
		}
		s.detach(w)
		w.resume = joinResult(t)

		ev := taskEvent(EventWake, w)
		ev.Target = t.id
		s.publish(ev)
		s.makeRunnable(w)
	}
}

// detach removes w from the waiter sets of everything it is joined on.
func (s *Scheduler) detach(w *Task) {
	for _, id := range w.joining {
		if target, ok := s.live[id]; ok {
			target.removeWaiter(w.id)
		}
	}
	w.joining = nil
}

func (s *Scheduler) cancel(t *Task) bool {
	if t.terminal() {
		return false
	}

	switch t.state {
	case StatePending, StateRunnable:
		s.ready.remove(t)
	case StateWaiting:
		if t.timer != nil {
			s.timers.remove(*t.timer)
			t.timer = nil
		}
		s.detach(t)
	}

	t.state = StateCancelled
	t.err = &CancelledError{Task: t.id}
	ev := taskEvent(EventCancel, t)
	ev.Err = t.err
	s.publish(ev)
	s.settle(t)

	// A task cancelling itself is stopped at its next suspension point.
	if t != s.current {
		t.co.abort()
	}
	return true
}

func (s *Scheduler) deadlock(target *Task) error {
	blocked := make([]TaskID, 0, len(s.live))
	for id := range s.live {
		blocked = append(blocked, id)
	}
	slices.Sort(blocked)

	err := &DeadlockError{Target: target.id, Blocked: blocked, At: s.now}
	ev := taskEvent(EventDeadlock, target)
	ev.Err = err
	s.publish(ev)
	return err
}

// Close cancels every pending task, unwinding suspended bodies, and releases
// the pacer and event log. Closing twice is a no-op.
func (s *Scheduler) Close() error {
	if s.closed {
		return nil
	}
	if s.driving {
		return ErrReentrant
	}

	s.closed = true
	ids := make([]TaskID, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if t, ok := s.live[id]; ok {
			s.cancel(t)
		}
	}
	s.logger.Debug("scheduler closed", "now", s.now, "cancelled", len(ids))

	if s.clock != nil {
		s.clock.Stop()
		s.logger.Debug("tick clock stopped", "ticks", s.clock.Count())
	}
	if s.csvFile != nil {
		flushErr := s.csv.Flush()
		closeErr := s.csvFile.Close()
		if flushErr != nil {
			return fmt.Errorf("flush event log: %w", flushErr)
		}
		if closeErr != nil {
			return fmt.Errorf("close event log: %w", closeErr)
		}
	}
	return nil
}

func (s *Scheduler) makeRunnable(t *Task) {
	t.state = StateRunnable
	s.ready.enqueue(t)
}

func (s *Scheduler) own(h *Handle) error {
	if h == nil || h.s != s {
		return ErrForeignHandle
	}
	return nil
}

func (s *Scheduler) publish(ev Event) {
	ev.At = s.now
	for _, o := range s.observers {
		o(ev)
	}
}

func joinResult(t *Task) resumeMsg {
	return resumeMsg{value: t.result, err: t.err, from: t.id}
}
