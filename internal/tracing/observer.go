package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coloop/internal/sched"
)

// Observer turns scheduler events into spans.
type Observer struct {
	tracer trace.Tracer
	epoch  time.Time
	loopID string
	spans  map[sched.TaskID]trace.Span
}

// NewObserver returns an observer starting spans on tracer. Virtual time
// zero maps to epoch.
func NewObserver(tracer trace.Tracer, epoch time.Time, loopID string) *Observer {
	return &Observer{
		tracer: tracer,
		epoch:  epoch,
		loopID: loopID,
		spans:  make(map[sched.TaskID]trace.Span),
	}
}

// Observe is a sched.Observer.
func (o *Observer) Observe(ev sched.Event) {
	ts := o.epoch.Add(ev.At)

	switch ev.Kind {
	case sched.EventSpawn:
		ctx := context.Background()
		if parent, ok := o.spans[ev.Target]; ok {
			ctx = trace.ContextWithSpan(ctx, parent)
		}
		name := ev.Name
		if name == "" {
			name = "task"
		}
		_, span := o.tracer.Start(ctx, name,
			trace.WithTimestamp(ts),
			trace.WithAttributes(
				attribute.String("loop.id", o.loopID),
				attribute.Int64("task.id", int64(ev.TaskID)),
			),
		)
		o.spans[ev.TaskID] = span

	case sched.EventDone, sched.EventFail, sched.EventCancel:
		span, ok := o.spans[ev.TaskID]
		if !ok {
			return
		}
		if ev.Err != nil {
			span.RecordError(ev.Err, trace.WithTimestamp(ts))
			span.SetStatus(codes.Error, ev.Err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End(trace.WithTimestamp(ts))
		delete(o.spans, ev.TaskID)

	case sched.EventWait, sched.EventJoin, sched.EventWake, sched.EventEmit:
		span, ok := o.spans[ev.TaskID]
		if !ok {
			return
		}
		var attrs []attribute.KeyValue
		switch ev.Kind {
		case sched.EventWait:
			attrs = append(attrs, attribute.String("wake_at", ev.WakeAt.String()))
		case sched.EventJoin, sched.EventWake:
			if ev.Target != 0 {
				attrs = append(attrs, attribute.Int64("target", int64(ev.Target)))
			}
		case sched.EventEmit:
			attrs = append(attrs, attribute.String("effect", fmt.Sprint(ev.Effect)))
		}
		span.AddEvent(ev.Kind.String(), trace.WithTimestamp(ts), trace.WithAttributes(attrs...))
	}
}

// Flush ends spans of tasks that never reached a terminal state, e.g. after
// a deadlock.
func (o *Observer) Flush(at time.Duration) {
	ts := o.epoch.Add(at)
	for id, span := range o.spans {
		span.SetStatus(codes.Unset, "")
		span.End(trace.WithTimestamp(ts))
		delete(o.spans, id)
	}
}

// Open returns the number of spans not yet ended.
func (o *Observer) Open() int { return len(o.spans) }
