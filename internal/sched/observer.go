package sched

import (
	"context"
	"log/slog"
)

// LogObserver logs effects at info level, failures and deadlocks at warn
// level and everything else at debug level.
func LogObserver(logger *slog.Logger) Observer {
	return func(ev Event) {
		level := slog.LevelDebug
		switch ev.Kind {
		case EventEmit:
			level = slog.LevelInfo
		case EventFail, EventDeadlock:
			level = slog.LevelWarn
		}
		if !logger.Enabled(context.Background(), level) {
			return
		}

		attrs := []slog.Attr{
			slog.Duration("at", ev.At),
			slog.String("event", ev.Kind.String()),
		}
		if ev.TaskID != 0 {
			attrs = append(attrs, slog.Uint64("task", uint64(ev.TaskID)))
		}
		if ev.Name != "" {
			attrs = append(attrs, slog.String("name", ev.Name))
		}
		if ev.Target != 0 {
			attrs = append(attrs, slog.Uint64("target", uint64(ev.Target)))
		}
		if ev.Kind == EventWait {
			attrs = append(attrs, slog.Duration("wake_at", ev.WakeAt))
		}
		if ev.Effect != nil {
			attrs = append(attrs, slog.Any("effect", ev.Effect))
		}
		if ev.Err != nil {
			attrs = append(attrs, slog.String("error", ev.Err.Error()))
		}
		logger.LogAttrs(context.Background(), level, "loop event", attrs...)
	}
}
