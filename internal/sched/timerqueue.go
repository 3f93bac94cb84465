package sched

import (
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// timerKey orders timer entries by wake time, then by insertion.
type timerKey struct {
	wakeAt time.Duration
	seq    uint64
}

// timerQueue holds tasks waiting for a future virtual time.
type timerQueue struct {
	rbt *redblacktree.Tree
	seq uint64
}

func newTimerQueue() *timerQueue {
	return &timerQueue{rbt: redblacktree.NewWith(timerCmp)}
}

// schedule registers t to wake at wakeAt and returns the key needed to
// remove it again.
func (q *timerQueue) schedule(t *Task, wakeAt time.Duration) timerKey {
	q.seq++
	key := timerKey{wakeAt: wakeAt, seq: q.seq}
	q.rbt.Put(key, t)
	return key
}

// peek returns the earliest wake time.
func (q *timerQueue) peek() (time.Duration, bool) {
	node := q.rbt.Left()
	if node == nil {
		return 0, false
	}
	return node.Key.(timerKey).wakeAt, true
}

// drainReady removes and returns every task due at or before now, in key order.
func (q *timerQueue) drainReady(now time.Duration) []*Task {
	var due []*Task
	for {
		node := q.rbt.Left()
		if node == nil {
			return due
		}
		key := node.Key.(timerKey)
		if key.wakeAt > now {
			return due
		}
		due = append(due, node.Value.(*Task))
		q.rbt.Remove(key)
	}
}

func (q *timerQueue) remove(key timerKey) {
	q.rbt.Remove(key)
}

func (q *timerQueue) len() int { return q.rbt.Size() }

func (q *timerQueue) empty() bool { return q.rbt.Empty() }

// timerCmp implements the Comparator for red-black tree ordering.
func timerCmp(a, b any) int {
	ka, kb := a.(timerKey), b.(timerKey)
	switch {
	case ka.wakeAt < kb.wakeAt:
		return -1
	case ka.wakeAt > kb.wakeAt:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}
