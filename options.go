package spanz

import (
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/zoobzio/clockz"
)

// Options configures a Tracer. Every field is optional: nil means "not set".
//
// New merges its Options left to right and later set fields win. The print
// condition is a single slot: an Options setting any of MinTotalDuration,
// MinSpanDuration or PrintCondition replaces whatever an earlier Options put
// there. Within one Options, PrintCondition beats MinSpanDuration, which beats
// MinTotalDuration.
//
//nolint:govet // Field order follows the documented configuration surface
type Options struct {
	Enabled          *bool
	Silent           *bool
	Style            *Style
	MinTotalDuration *time.Duration
	MinSpanDuration  *time.Duration
	PrintCondition   PrintCondition
	ShowSlowOnly     *time.Duration
	HideUltraFast    *time.Duration
	GroupSimilar     *time.Duration
	Clock            clockz.Clock
	Output           io.Writer
	Color            *bool
	Caller           *CallerInfo
	Logger           *logr.Logger
}

func ptr[T any](v T) *T {
	return &v
}

// Merge combines options left to right.
func Merge(opts ...Options) Options {
	var merged Options
	for _, o := range opts {
		merged = merged.merge(o)
	}
	return merged
}

func (o Options) merge(next Options) Options {
	if next.Enabled != nil {
		o.Enabled = next.Enabled
	}
	if next.Silent != nil {
		o.Silent = next.Silent
	}
	if next.Style != nil {
		o.Style = next.Style
	}
	if next.MinTotalDuration != nil || next.MinSpanDuration != nil || next.PrintCondition != nil {
		o.MinTotalDuration = next.MinTotalDuration
		o.MinSpanDuration = next.MinSpanDuration
		o.PrintCondition = next.PrintCondition
	}
	if next.ShowSlowOnly != nil {
		o.ShowSlowOnly = next.ShowSlowOnly
	}
	if next.HideUltraFast != nil {
		o.HideUltraFast = next.HideUltraFast
	}
	if next.GroupSimilar != nil {
		o.GroupSimilar = next.GroupSimilar
	}
	if next.Clock != nil {
		o.Clock = next.Clock
	}
	if next.Output != nil {
		o.Output = next.Output
	}
	if next.Color != nil {
		o.Color = next.Color
	}
	if next.Caller != nil {
		o.Caller = next.Caller
	}
	if next.Logger != nil {
		o.Logger = next.Logger
	}
	return o
}

// condition resolves the print-condition slot, falling back to the
// DefaultMinDuration threshold.
func (o Options) condition() PrintCondition {
	switch {
	case o.PrintCondition != nil:
		return o.PrintCondition
	case o.MinSpanDuration != nil:
		return MinSpanDuration(*o.MinSpanDuration)
	case o.MinTotalDuration != nil:
		return MinTotalDuration(*o.MinTotalDuration)
	default:
		return MinTotalDuration(DefaultMinDuration)
	}
}

// filters resolves the smart filter stages. Negative thresholds clamp to zero.
func (o Options) filters() FilterConfig {
	var c FilterConfig
	if o.ShowSlowOnly != nil {
		c.ShowSlowOnly = true
		c.SlowThreshold = *o.ShowSlowOnly
	}
	if o.HideUltraFast != nil {
		c.HideUltraFast = true
		c.UltraFastThreshold = *o.HideUltraFast
	}
	if o.GroupSimilar != nil {
		c.GroupSimilar = true
		c.SimilarThreshold = *o.GroupSimilar
	}
	return c.clamped()
}

// WithEnabled turns recording on or off.
func WithEnabled(enabled bool) Options {
	return Options{Enabled: ptr(enabled)}
}

// WithSilent collects data without rendering at End.
func WithSilent(silent bool) Options {
	return Options{Silent: ptr(silent)}
}

// WithOutputStyle selects the formatter.
func WithOutputStyle(style Style) Options {
	return Options{Style: ptr(style)}
}

// WithMinTotalDuration renders only when the whole trace took at least d.
func WithMinTotalDuration(d time.Duration) Options {
	return Options{MinTotalDuration: ptr(d)}
}

// WithMinSpanDuration renders only when some span took at least d.
func WithMinSpanDuration(d time.Duration) Options {
	return Options{MinSpanDuration: ptr(d)}
}

// WithCustomCondition installs an arbitrary print condition.
func WithCustomCondition(condition PrintCondition) Options {
	return Options{PrintCondition: condition}
}

// WithShowSlowOnly renders only spans of at least threshold.
func WithShowSlowOnly(threshold time.Duration) Options {
	return Options{ShowSlowOnly: ptr(threshold)}
}

// WithHideUltraFast hides spans shorter than threshold.
func WithHideUltraFast(threshold time.Duration) Options {
	return Options{HideUltraFast: ptr(threshold)}
}

// WithGroupSimilar folds spans whose durations are within threshold.
func WithGroupSimilar(threshold time.Duration) Options {
	return Options{GroupSimilar: ptr(threshold)}
}

// WithSmartFilter enables each stage whose threshold is positive.
func WithSmartFilter(slow, ultraFast, similar time.Duration) Options {
	var o Options
	if slow > 0 {
		o.ShowSlowOnly = ptr(slow)
	}
	if ultraFast > 0 {
		o.HideUltraFast = ptr(ultraFast)
	}
	if similar > 0 {
		o.GroupSimilar = ptr(similar)
	}
	return o
}

// WithClock injects the time source.
func WithClock(clock clockz.Clock) Options {
	return Options{Clock: clock}
}

// WithOutput redirects rendered traces to w instead of stdout.
func WithOutput(w io.Writer) Options {
	return Options{Output: w}
}

// WithColor forces ANSI colors on or off.
func WithColor(color bool) Options {
	return Options{Color: ptr(color)}
}

// WithCaller attaches the location the tracer was created at.
func WithCaller(file string, line int) Options {
	return Options{Caller: &CallerInfo{File: file, Line: line}}
}

// WithLogger replaces the default klog-backed logger.
func WithLogger(logger logr.Logger) Options {
	return Options{Logger: &logger}
}

// DebugMode prints every trace in the detailed style.
func DebugMode() Options {
	return Options{
		Enabled:        ptr(true),
		Silent:         ptr(false),
		Style:          ptr(StyleDetailed),
		PrintCondition: Always(),
	}
}

// ProductionMode prints only traces of at least one second, showing spans of
// at least 500ms in the minimal style.
func ProductionMode() Options {
	return Options{
		Enabled:          ptr(true),
		Silent:           ptr(false),
		Style:            ptr(StyleMinimal),
		ShowSlowOnly:     ptr(500 * time.Millisecond),
		MinTotalDuration: ptr(time.Second),
	}
}

// DevelopmentMode prints traces of at least 50ms in the colorful style.
func DevelopmentMode() Options {
	return Options{
		Enabled:          ptr(true),
		Silent:           ptr(false),
		Style:            ptr(StyleColorful),
		MinTotalDuration: ptr(50 * time.Millisecond),
	}
}

// PerformanceMode shows spans of at least 100ms, hides those under 1ms and
// uses the detailed style.
func PerformanceMode() Options {
	return Options{
		Style:         ptr(StyleDetailed),
		ShowSlowOnly:  ptr(100 * time.Millisecond),
		HideUltraFast: ptr(time.Millisecond),
	}
}
