package main

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/zoobzio/spanz"
	"github.com/zoobzio/spanz/config"
	"k8s.io/klog/v2/textlogger"
)

// flags shared by the demo and styles commands.
//
//nolint:govet // Field order follows flag registration
type flags struct {
	style      string
	configPath string
	slowOnly   time.Duration
	hideFast   time.Duration
	group      time.Duration
	always     bool
	simulate   bool
	color      bool
	verbosity  int
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "spanz",
		Short: "spanz renders in-process span timings of a code path.",
		Long: `spanz renders in-process span timings of a code path. ` +
			`The CLI runs demonstration workloads through a tracer so output styles, ` +
			`smart filters and exporters can be tried without writing code.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if f.style == "" {
				return nil
			}
			return validateStyle(f.style)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.style, "style", "", "output style: default, colorful, minimal, detailed, table, json")
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")
	pf.DurationVar(&f.slowOnly, "slow-only", 0, "show only spans of at least this duration")
	pf.DurationVar(&f.hideFast, "hide-fast", 0, "hide spans shorter than this duration")
	pf.DurationVar(&f.group, "group", 0, "group spans whose durations are within this distance")
	pf.BoolVar(&f.always, "always", false, "render regardless of total duration")
	pf.BoolVar(&f.simulate, "simulate", false, "advance a fake clock instead of sleeping")
	pf.BoolVar(&f.color, "color", false, "force ANSI colors")
	pf.IntVarP(&f.verbosity, "verbosity", "v", 0, "log verbosity")

	cmd.AddCommand(newDemoCmd(f), newStylesCmd(f))
	return cmd
}

// options layers the config file, then explicit flags, over the defaults.
func (f *flags) options(cmd *cobra.Command) ([]spanz.Options, error) {
	var opts []spanz.Options

	if f.configPath != "" {
		fileOpts, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts)
	}

	if f.style != "" {
		style, err := spanz.ParseStyle(f.style)
		if err != nil {
			return nil, err
		}
		opts = append(opts, spanz.WithOutputStyle(style))
	}

	opts = append(opts, spanz.WithSmartFilter(f.slowOnly, f.hideFast, f.group))

	if f.always {
		opts = append(opts, spanz.WithCustomCondition(spanz.Always()))
	}
	if cmd.Flags().Changed("color") {
		opts = append(opts, spanz.WithColor(f.color))
	}

	opts = append(opts,
		spanz.WithOutput(cmd.OutOrStdout()),
		spanz.WithLogger(f.logger()),
	)
	return opts, nil
}

func (f *flags) logger() logr.Logger {
	return textlogger.NewLogger(textlogger.NewConfig(textlogger.Verbosity(f.verbosity)))
}

func validateStyle(name string) error {
	if _, err := spanz.ParseStyle(name); err != nil {
		return fmt.Errorf("invalid --style: %w", err)
	}
	return nil
}
