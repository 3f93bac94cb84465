package sched

import "slices"

// Gather returns a handle that completes with the results of handles, in
// input order, once all of them are done. The first failure observed fails
// the gathered handle immediately; the remaining tasks keep running.
func (s *Scheduler) Gather(handles ...*Handle) *Handle {
	hs := slices.Clone(handles)
	return s.Spawn(func(co *Co) (any, error) {
		return gather(co, hs)
	}, WithName("gather"))
}

func gather(co *Co, handles []*Handle) (any, error) {
	results := make([]any, len(handles))
	pending := make([]*Task, 0, len(handles))
	slots := make(map[TaskID][]int, len(handles))
	for i, h := range handles {
		if err := co.s.own(h); err != nil {
			return nil, err
		}
		if h.t == co.t {
			return nil, ErrSelfJoin
		}
		if _, seen := slots[h.t.id]; !seen {
			pending = append(pending, h.t)
		}
		slots[h.t.id] = append(slots[h.t.id], i)
	}

	for len(pending) > 0 {
		msg := co.joinAny(pending)
		if msg.err != nil {
			return nil, msg.err
		}
		for _, i := range slots[msg.from] {
			results[i] = msg.value
		}
		pending = slices.DeleteFunc(pending, func(t *Task) bool { return t.id == msg.from })
	}
	return results, nil
}
