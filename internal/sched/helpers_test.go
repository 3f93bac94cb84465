package sched

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type effect struct {
	at   time.Duration
	task TaskID
	msg  any
}

type recorder struct {
	events []Event
}

func (r *recorder) observe(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) effects() []effect {
	var out []effect
	for _, ev := range r.events {
		if ev.Kind == EventEmit {
			out = append(out, effect{at: ev.At, task: ev.TaskID, msg: ev.Effect})
		}
	}
	return out
}

func (r *recorder) messages() []any {
	var out []any
	for _, e := range r.effects() {
		out = append(out, e.msg)
	}
	return out
}

// count returns how many events of kind were published for task id.
func (r *recorder) count(kind EventKind, id TaskID) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind && ev.TaskID == id {
			n++
		}
	}
	return n
}

func newTestScheduler(t *testing.T, cfg Config, opts ...Option) (*Scheduler, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithID("test"), WithObserver(rec.observe)}, opts...)
	s := New(cfg, opts...)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s, rec
}

// sleeper waits d, emits v and returns it.
func sleeper(d time.Duration, v any) Body {
	return func(co *Co) (any, error) {
		if err := co.Wait(d); err != nil {
			return nil, err
		}
		co.Emit(v)
		return v, nil
	}
}

var bg = context.Background()
