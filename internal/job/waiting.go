package job

import (
	"fmt"
	"time"

	"coloop/internal/sched"
)

// Order returns a body that places an order, waits d of virtual time for it
// and reports its arrival. The result is the food.
func Order(food string, d time.Duration) sched.Body {
	return func(co *sched.Co) (any, error) {
		co.Emit(fmt.Sprintf("Ordering %s", food))
		if err := co.Wait(d); err != nil {
			return nil, err
		}
		co.Emit(fmt.Sprintf("%s received!", food))
		return food, nil
	}
}

// Step returns a body that announces start, waits d and announces end.
func Step(start, end string, d time.Duration) sched.Body {
	return func(co *sched.Co) (any, error) {
		co.Emit(start)
		if err := co.Wait(d); err != nil {
			return nil, err
		}
		co.Emit(end)
		return nil, nil
	}
}

// BlockingOrder runs orders one after another inside a single task, so the
// waits add up instead of overlapping.
func BlockingOrder(orders ...Item) sched.Body {
	return func(co *sched.Co) (any, error) {
		received := make([]any, 0, len(orders))
		for _, o := range orders {
			food, err := Order(o.Food, o.Wait)(co)
			if err != nil {
				return nil, err
			}
			received = append(received, food)
		}
		return received, nil
	}
}

// Item is one entry of a food order.
type Item struct {
	Food string
	Wait time.Duration
}
