package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/spanz"
	"github.com/zoobzio/spanz/otelspan"
	"github.com/zoobzio/spanz/promspan"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type step struct {
	label    string
	duration time.Duration
}

// scenarios are the workloads the demo command can replay.
var scenarios = map[string][]step{
	"web-request": {
		{"parse request", 2 * time.Millisecond},
		{"authenticate", 15 * time.Millisecond},
		{"query users", 120 * time.Millisecond},
		{"render template", 30 * time.Millisecond},
		{"write response", 500 * time.Microsecond},
	},
	"batch": {
		{"load item 1", 44 * time.Millisecond},
		{"load item 2", 47 * time.Millisecond},
		{"load item 3", 45 * time.Millisecond},
		{"load item 4", 48 * time.Millisecond},
		{"load item 5", 43 * time.Millisecond},
		{"validate", 800 * time.Microsecond},
		{"commit", 150 * time.Millisecond},
	},
	"startup": {
		{"load config", 5 * time.Millisecond},
		{"connect database", 250 * time.Millisecond},
		{"warm cache", 600 * time.Millisecond},
		{"register routes", 300 * time.Microsecond},
		{"start listener", 3 * time.Millisecond},
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type demoFlags struct {
	otel    bool
	metrics bool
}

func newDemoCmd(f *flags) *cobra.Command {
	df := &demoFlags{}

	cmd := &cobra.Command{
		Use:       "demo [scenario]",
		Short:     "Run a demonstration workload through a tracer",
		Long:      "Run a demonstration workload through a tracer. Scenarios: " + strings.Join(scenarioNames(), ", ") + ".",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: scenarioNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "web-request"
			if len(args) == 1 {
				name = args[0]
			}
			steps, ok := scenarios[name]
			if !ok {
				return fmt.Errorf("unknown scenario %q (want one of %s)", name, strings.Join(scenarioNames(), ", "))
			}
			return runDemo(cmd, f, df, name, steps)
		},
	}

	cmd.Flags().BoolVar(&df.otel, "otel", false, "also export the trace as OpenTelemetry spans to stdout")
	cmd.Flags().BoolVar(&df.metrics, "metrics", false, "print Prometheus metrics for the trace")
	return cmd
}

func runDemo(cmd *cobra.Command, f *flags, df *demoFlags, name string, steps []step) error {
	opts, err := f.options(cmd)
	if err != nil {
		return err
	}

	var clock clockz.Clock = clockz.RealClock
	var fake *clockz.FakeClock
	if f.simulate {
		fake = clockz.NewFakeClock()
		clock = fake
	}
	opts = append(opts, spanz.WithClock(clock))
	if caller := spanz.CaptureCaller(0); caller != nil {
		opts = append(opts, spanz.WithCaller(caller.File, caller.Line))
	}

	tracer := spanz.New(name, opts...)
	defer tracer.Close()

	var tp *sdktrace.TracerProvider
	if df.otel {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cmd.OutOrStdout()), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create span exporter: %w", err)
		}
		tp = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		tracer.OnEnd(otelspan.New(tp, otelspan.WithEndSpan()).Handler())
	}

	var registry *prometheus.Registry
	if df.metrics {
		observer := promspan.NewObserver(promspan.Config{PerSpan: true})
		registry = prometheus.NewRegistry()
		if err := registry.Register(observer); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		tracer.OnEnd(observer.Handler())
	}

	ctx := spanz.ContextWithTracer(cmd.Context(), tracer)
	for _, s := range steps {
		work(ctx, fake, s)
	}
	tracer.End()

	if tp != nil {
		if err := tp.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("failed to flush spans: %w", err)
		}
	}
	if registry != nil {
		return writeMetrics(cmd, registry)
	}
	return nil
}

// work spends s.duration and marks it on the tracer carried by ctx.
func work(ctx context.Context, fake *clockz.FakeClock, s step) {
	if fake != nil {
		fake.Advance(s.duration)
	} else {
		time.Sleep(s.duration)
	}
	spanz.Mark(ctx, s.label)
}

func writeMetrics(cmd *cobra.Command, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
