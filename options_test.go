package spanz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conditionHolds evaluates the merged print condition against a tracer whose
// only span took spanDur after totalDur-spanDur of unmarked time.
func conditionHolds(t *testing.T, o Options, totalDur, spanDur time.Duration) bool {
	t.Helper()
	tracer, clock, _ := newTestTracer()
	clock.Advance(totalDur - spanDur)
	tracer.Mark("setup")
	clock.Advance(spanDur)
	tracer.Mark("work")
	return o.condition()(tracer)
}

func TestMergeLaterFieldsWin(t *testing.T) {
	o := Merge(
		WithOutputStyle(StyleTable),
		WithSilent(true),
		WithOutputStyle(StyleJSON),
	)

	require.NotNil(t, o.Style)
	assert.Equal(t, StyleJSON, *o.Style)
	require.NotNil(t, o.Silent)
	assert.True(t, *o.Silent)
	assert.Nil(t, o.Enabled)
}

func TestMergeEmpty(t *testing.T) {
	o := Merge()
	assert.Equal(t, Options{}, o)
	assert.False(t, o.filters().Active())
}

func TestDefaultConditionUsesDefaultMinDuration(t *testing.T) {
	o := Merge()
	assert.False(t, conditionHolds(t, o, DefaultMinDuration-time.Millisecond, time.Millisecond))
	assert.True(t, conditionHolds(t, o, DefaultMinDuration, time.Millisecond))
}

func TestConditionSlotIsReplaced(t *testing.T) {
	// A later total-duration threshold replaces an earlier span threshold.
	o := Merge(WithMinSpanDuration(time.Millisecond), WithMinTotalDuration(time.Hour))
	assert.Nil(t, o.MinSpanDuration)
	assert.False(t, conditionHolds(t, o, time.Second, 500*time.Millisecond))

	// A later custom condition replaces a threshold.
	o = Merge(WithMinTotalDuration(time.Hour), WithCustomCondition(Always()))
	assert.Nil(t, o.MinTotalDuration)
	assert.True(t, conditionHolds(t, o, time.Millisecond, time.Millisecond))

	// Options that leave the slot alone keep it.
	o = Merge(WithMinSpanDuration(time.Millisecond), WithOutputStyle(StyleMinimal))
	require.NotNil(t, o.MinSpanDuration)
}

func TestConditionPrecedenceWithinOneOptions(t *testing.T) {
	never := func(*Tracer) bool { return false }

	o := Options{
		MinTotalDuration: ptr(time.Nanosecond),
		MinSpanDuration:  ptr(time.Nanosecond),
		PrintCondition:   never,
	}
	assert.False(t, conditionHolds(t, o, time.Second, time.Second), "custom condition wins")

	o = Options{
		MinTotalDuration: ptr(time.Nanosecond),
		MinSpanDuration:  ptr(time.Hour),
	}
	assert.False(t, conditionHolds(t, o, time.Second, time.Second), "span threshold beats total threshold")
}

func TestMinSpanDuration(t *testing.T) {
	o := WithMinSpanDuration(20 * time.Millisecond)
	assert.True(t, conditionHolds(t, o, 25*time.Millisecond, 20*time.Millisecond))
	assert.False(t, conditionHolds(t, o, 30*time.Millisecond, 15*time.Millisecond))
}

func TestMinSpanDurationIgnoresEndSpan(t *testing.T) {
	tracer, clock, buf := newTestTracer(WithMinSpanDuration(50 * time.Millisecond))
	step(clock, tracer, "quick", time.Millisecond)
	clock.Advance(time.Second)
	tracer.End()
	assert.Zero(t, buf.Len(), "the End tail is not a span")
}

func TestWithSmartFilter(t *testing.T) {
	o := WithSmartFilter(10*time.Millisecond, 0, 5*time.Millisecond)
	cfg := o.filters()

	assert.True(t, cfg.ShowSlowOnly)
	assert.Equal(t, 10*time.Millisecond, cfg.SlowThreshold)
	assert.False(t, cfg.HideUltraFast)
	assert.True(t, cfg.GroupSimilar)
	assert.Equal(t, 5*time.Millisecond, cfg.SimilarThreshold)

	assert.False(t, WithSmartFilter(0, -1, 0).filters().Active())
}

func TestFilterOptionsAccumulate(t *testing.T) {
	cfg := Merge(WithShowSlowOnly(10*time.Millisecond), WithHideUltraFast(time.Millisecond)).filters()
	assert.True(t, cfg.ShowSlowOnly)
	assert.True(t, cfg.HideUltraFast)
	assert.False(t, cfg.GroupSimilar)
}

func TestDebugMode(t *testing.T) {
	tracer, clock, buf := newTestTracer(DebugMode())
	assert.Equal(t, StyleDetailed, tracer.OutputStyle())

	step(clock, tracer, "instant", time.Microsecond)
	tracer.End()
	assert.Contains(t, buf.String(), "DETAILED BREAKDOWN")
}

func TestProductionMode(t *testing.T) {
	tracer, clock, buf := newTestTracer(ProductionMode())
	assert.Equal(t, StyleMinimal, tracer.OutputStyle())
	assert.Equal(t, 500*time.Millisecond, tracer.Filters().SlowThreshold)

	step(clock, tracer, "fast", 900*time.Millisecond)
	tracer.End()
	assert.Zero(t, buf.Len())

	step(clock, tracer, "slow", 600*time.Millisecond)
	tracer.End()
	out := buf.String()
	assert.Contains(t, out, "slow")
	assert.Contains(t, out, "fast")
	assert.NotContains(t, out, "└─ End")
}

func TestDevelopmentMode(t *testing.T) {
	tracer, clock, buf := newTestTracer(DevelopmentMode())
	assert.Equal(t, StyleColorful, tracer.OutputStyle())

	step(clock, tracer, "a", 49*time.Millisecond)
	tracer.End()
	assert.Zero(t, buf.Len())

	clock.Advance(time.Millisecond)
	tracer.End()
	assert.Contains(t, buf.String(), "Total Time")
}

func TestPerformanceMode(t *testing.T) {
	tracer, _, _ := newTestTracer(PerformanceMode())
	cfg := tracer.Filters()

	assert.Equal(t, StyleDetailed, tracer.OutputStyle())
	assert.Equal(t, 100*time.Millisecond, cfg.SlowThreshold)
	assert.Equal(t, time.Millisecond, cfg.UltraFastThreshold)
	assert.False(t, cfg.GroupSimilar)
}

func TestPresetThenOverride(t *testing.T) {
	tracer, _, _ := newTestTracer(ProductionMode(), WithOutputStyle(StyleJSON), WithSilent(true))
	assert.Equal(t, StyleJSON, tracer.OutputStyle())
	assert.True(t, tracer.IsSilent())
	assert.True(t, tracer.Filters().ShowSlowOnly)
}

func TestParseStyle(t *testing.T) {
	cases := map[string]Style{
		"":         StyleDefault,
		"default":  StyleDefault,
		"Colorful": StyleColorful,
		"minimal":  StyleMinimal,
		"DETAILED": StyleDetailed,
		" table ":  StyleTable,
		"json":     StyleJSON,
	}
	for name, want := range cases {
		got, err := ParseStyle(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseStyle("xml")
	assert.EqualError(t, err, `unknown output style "xml"`)
}

func TestStyleString(t *testing.T) {
	assert.Equal(t, "table", StyleTable.String())
	assert.Equal(t, "style(42)", Style(42).String())
}
