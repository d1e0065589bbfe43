package main

import (
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/zoobzio/spanz"
)

var allStyles = []spanz.Style{
	spanz.StyleColorful,
	spanz.StyleMinimal,
	spanz.StyleDetailed,
	spanz.StyleTable,
	spanz.StyleJSON,
}

func newStylesCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "styles [style]",
		Short: "Render a sample trace in every output style, or in one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			styles := allStyles
			if len(args) == 1 {
				style, err := spanz.ParseStyle(args[0])
				if err != nil {
					return err
				}
				styles = []spanz.Style{style}
			}

			opts, err := f.options(cmd)
			if err != nil {
				return err
			}
			filters := spanz.New("", opts...).Filters()
			r := sampleReport(filters)

			color := false
			if cmd.Flags().Changed("color") {
				color = f.color
			}

			out := cmd.OutOrStdout()
			for _, style := range styles {
				fmt.Fprintf(out, "── %s ──\n", style)
				fmt.Fprint(out, spanz.Render(style, r, color))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func sampleReport(filters spanz.FilterConfig) spanz.Report {
	measurements := make([]spanz.Measurement, 0, len(scenarios["web-request"]))
	var total time.Duration
	for _, s := range scenarios["web-request"] {
		measurements = append(measurements, spanz.Measurement{Label: s.label, Duration: s.duration})
		total += s.duration
	}
	return spanz.Report{
		TraceID:      xid.New().String(),
		Name:         "sample",
		Start:        time.Now(),
		Total:        total,
		Measurements: measurements,
		Items:        filters.Apply(measurements),
		Filters:      filters,
	}
}
