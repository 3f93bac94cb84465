package sched

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVRecorder writes one row per event.
type CSVRecorder struct {
	w   *csv.Writer
	err error
}

// NewCSVRecorder writes the header row and returns a recorder.
func NewCSVRecorder(w io.Writer) *CSVRecorder {
	r := &CSVRecorder{w: csv.NewWriter(w)}
	r.write([]string{"at", "event", "task_id", "name", "target", "wake_at", "effect", "error"})
	return r
}

// Observe is an Observer.
func (r *CSVRecorder) Observe(ev Event) {
	rec := []string{
		ev.At.String(),
		ev.Kind.String(),
		strconv.FormatUint(uint64(ev.TaskID), 10),
		ev.Name,
		"",
		"",
		"",
		"",
	}
	if ev.Target != 0 {
		rec[4] = strconv.FormatUint(uint64(ev.Target), 10)
	}
	if ev.Kind == EventWait {
		rec[5] = ev.WakeAt.String()
	}
	if ev.Effect != nil {
		rec[6] = fmt.Sprint(ev.Effect)
	}
	if ev.Err != nil {
		rec[7] = ev.Err.Error()
	}
	r.write(rec)
}

// Flush writes buffered rows and reports the first write error.
func (r *CSVRecorder) Flush() error {
	r.w.Flush()
	if r.err != nil {
		return r.err
	}
	return r.w.Error()
}

func (r *CSVRecorder) write(rec []string) {
	if r.err != nil {
		return
	}
	r.err = r.w.Write(rec)
}
