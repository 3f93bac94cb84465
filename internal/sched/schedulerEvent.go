// internal/sched/schedulerEvent.go

package sched

import (
	"time"
)

// EventKind represents the type of scheduler event
type EventKind int

const (
	EventSpawn EventKind = iota
	EventDispatch
	EventWait
	EventJoin
	EventWake
	EventAdvance
	EventEmit
	EventDone
	EventFail
	EventCancel
	EventDeadlock
)

// Event is published to observers on every scheduling decision and on every
// effect a body emits.
type Event struct {
	At     time.Duration // virtual time
	Kind   EventKind
	TaskID TaskID
	Name   string
	Target TaskID        // join target, task that woke a joiner, or spawning task
	WakeAt time.Duration // for EventWait
	Effect any           // for EventEmit
	Err    error         // for EventFail, EventCancel and EventDeadlock
}

// Observer receives events synchronously from the loop.
type Observer func(Event)

func (ek EventKind) String() string {
	switch ek {
	case EventSpawn:
		return "Spawn"
	case EventDispatch:
		return "Dispatch"
	case EventWait:
		return "Wait"
	case EventJoin:
		return "Join"
	case EventWake:
		return "Wake"
	case EventAdvance:
		return "Advance"
	case EventEmit:
		return "Emit"
	case EventDone:
		return "Done"
	case EventFail:
		return "Fail"
	case EventCancel:
		return "Cancel"
	case EventDeadlock:
		return "Deadlock"
	default:
		return "Unknown"
	}
}

func taskEvent(kind EventKind, t *Task) Event {
	return Event{Kind: kind, TaskID: t.id, Name: t.name}
}
