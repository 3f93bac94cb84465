package job

import (
	"fmt"
	"sort"
	"time"

	"coloop/internal/sched"
)

// Scenario is a named root body demonstrating one way of using the loop.
type Scenario struct {
	Name    string
	Summary string
	Root    sched.Body
}

var scenarios = map[string]Scenario{
	"coroutine": {
		Name:    "coroutine",
		Summary: "a single coroutine pausing at a wait point",
		Root:    Step("Ordering pizza...", "Pizza received!", 2*time.Second),
	},
	"await": {
		Name:    "await",
		Summary: "awaiting a wait pauses only the awaiting coroutine",
		Root:    Step("Cooking started", "Cooking done", 3*time.Second),
	},
	"tasks": {
		Name:    "tasks",
		Summary: "two tasks created up front, then awaited one by one",
		Root: func(co *sched.Co) (any, error) {
			pizza := co.Spawn(Order("Pizza", 5*time.Second), sched.WithName("pizza"))
			burger := co.Spawn(Order("Burger", 3*time.Second), sched.WithName("burger"))
			return awaitAll(co, pizza, burger)
		},
	},
	"eventloop": {
		Name:    "eventloop",
		Summary: "the loop interleaving two gathered tasks",
		Root: func(co *sched.Co) (any, error) {
			return co.Join(co.Gather(
				co.Spawn(Step("Task 1 start", "Task 1 end", 2*time.Second), sched.WithName("task1")),
				co.Spawn(Step("Task 2 start", "Task 2 end", 1*time.Second), sched.WithName("task2")),
			))
		},
	},
	"sequential": {
		Name:    "sequential",
		Summary: "blocking orders: total time is the sum of the waits",
		Root:    BlockingOrder(Item{"Pizza", 5 * time.Second}, Item{"Burger", 3 * time.Second}),
	},
	"concurrent": {
		Name:    "concurrent",
		Summary: "gathered orders: total time is the longest wait",
		Root: func(co *sched.Co) (any, error) {
			return co.Join(co.Gather(
				co.Spawn(Order("Pizza", 5*time.Second), sched.WithName("pizza")),
				co.Spawn(Order("Burger", 3*time.Second), sched.WithName("burger")),
			))
		},
	},
}

// Lookup returns the scenario registered under name.
func Lookup(name string) (Scenario, error) {
	sc, ok := scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q", name)
	}
	return sc, nil
}

// Scenarios returns all scenarios sorted by name.
func Scenarios() []Scenario {
	out := make([]Scenario, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func awaitAll(co *sched.Co, handles ...*sched.Handle) (any, error) {
	results := make([]any, 0, len(handles))
	for _, h := range handles {
		v, err := h.Await(co)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}
