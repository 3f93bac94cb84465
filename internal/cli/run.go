package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"coloop/internal/idgen"
	"coloop/internal/job"
	"coloop/internal/sched"
	"coloop/internal/tracing"
)

func newRunCmd() *cobra.Command {
	var (
		realtime bool
		traceCSV string
		otelOut  string
	)

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a demo scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := job.Lookup(args[0])
			if err != nil {
				return err
			}

			runCfg := cfg
			if cmd.Flags().Changed("realtime") {
				runCfg.Realtime = realtime
			}
			if traceCSV != "" {
				runCfg.TraceCSV = traceCSV
			}
			return runScenario(cmd.Context(), cmd.OutOrStdout(), sc, runCfg, otelOut)
		},
	}

	cmd.Flags().BoolVar(&realtime, "realtime", false, "Pace virtual time against the wall clock")
	cmd.Flags().StringVar(&traceCSV, "trace-csv", "", "Write every loop event to this CSV file")
	cmd.Flags().StringVar(&otelOut, "otel", "", "Export task spans to this file (\"-\" for stderr)")
	return cmd
}

func runScenario(ctx context.Context, out io.Writer, sc job.Scenario, runCfg sched.Config, otelOut string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loopID := idgen.New()
	opts := []sched.Option{
		sched.WithID(loopID),
		sched.WithLogger(logger),
		sched.WithObserver(printer(out)),
	}

	var obs *tracing.Observer
	if otelOut != "" {
		w, closeOut, err := openOutput(otelOut)
		if err != nil {
			return err
		}
		defer closeOut()

		tp, err := tracing.Init("coloop", "dev", w)
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()

		obs = tracing.NewObserver(tp.Tracer("coloop"), time.Now(), loopID)
		opts = append(opts, sched.WithObserver(obs.Observe))
	}

	s := sched.New(runCfg, opts...)
	if runCfg.TraceCSV != "" {
		if err := s.EnableCSVLogging(runCfg.TraceCSV); err != nil {
			_ = s.Close()
			return err
		}
	}

	fmt.Fprintf(out, "--- %s ---\n", sc.Name)
	_, runErr := s.RunUntilComplete(ctx, sc.Root, sched.WithName("main"))
	if obs != nil {
		if n := obs.Open(); n > 0 {
			logger.Warn("ending spans of unfinished tasks", "count", n)
		}
		obs.Flush(s.Now())
	}
	closeErr := s.Close()

	if runErr != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, runErr)
	}
	fmt.Fprintf(out, "Total virtual time: %s\n", s.Now())
	return closeErr
}

// printer renders emitted effects with their virtual timestamp.
func printer(out io.Writer) sched.Observer {
	return func(ev sched.Event) {
		if ev.Kind != sched.EventEmit {
			return
		}
		fmt.Fprintf(out, "[%8.3fs] %v\n", ev.At.Seconds(), ev.Effect)
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create span output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
