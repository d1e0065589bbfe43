package benchmarks

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/zoobzio/spanz"
)

func measurements(n int, seed int64) []spanz.Measurement {
	rng := rand.New(rand.NewSource(seed))
	out := make([]spanz.Measurement, n)
	for i := range out {
		out[i] = spanz.Measurement{
			Label:    fmt.Sprintf("span-%d", i),
			Duration: time.Duration(rng.Int63n(int64(200 * time.Millisecond))),
		}
	}
	return out
}

// BenchmarkFilterApply measures each stage on traces of growing size.
// Grouping is quadratic in the number of surviving spans.
func BenchmarkFilterApply(b *testing.B) {
	configs := map[string]spanz.FilterConfig{
		"passthrough": {},
		"slow-only":   {ShowSlowOnly: true, SlowThreshold: 50 * time.Millisecond},
		"hide-fast":   {HideUltraFast: true, UltraFastThreshold: 10 * time.Millisecond},
		"group":       {GroupSimilar: true, SimilarThreshold: 5 * time.Millisecond},
		"all": {
			ShowSlowOnly: true, SlowThreshold: 20 * time.Millisecond,
			HideUltraFast: true, UltraFastThreshold: time.Millisecond,
			GroupSimilar: true, SimilarThreshold: 5 * time.Millisecond,
		},
	}

	for _, size := range []int{10, 100, 1000} {
		input := measurements(size, 42)
		for name, cfg := range configs {
			b.Run(fmt.Sprintf("%s/%d", name, size), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_ = cfg.Apply(input)
				}
			})
		}
	}
}

// BenchmarkRender measures each formatter on a fixed report.
func BenchmarkRender(b *testing.B) {
	input := measurements(25, 7)
	filters := spanz.FilterConfig{GroupSimilar: true, SimilarThreshold: 5 * time.Millisecond}

	var total time.Duration
	for _, m := range input {
		total += m.Duration
	}
	r := spanz.Report{
		Name:         "render-bench",
		Total:        total,
		Measurements: input,
		Items:        filters.Apply(input),
		Filters:      filters,
	}

	styles := []spanz.Style{spanz.StyleColorful, spanz.StyleMinimal, spanz.StyleDetailed, spanz.StyleTable, spanz.StyleJSON}
	for _, style := range styles {
		for _, color := range []bool{false, true} {
			b.Run(fmt.Sprintf("%s/color=%t", style, color), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_ = spanz.Render(style, r, color)
				}
			})
		}
	}
}

// BenchmarkCollector measures handing reports to a collector.
func BenchmarkCollector(b *testing.B) {
	r := spanz.Report{Name: "collect", Measurements: measurements(10, 1)}

	b.Run("sync", func(b *testing.B) {
		collector := spanz.NewCollector("bench", 0)
		collector.SetSyncMode(true)
		defer collector.Close()

		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			collector.Collect(r)
			if i%1000 == 0 {
				collector.Export()
			}
		}
	})

	b.Run("async-parallel", func(b *testing.B) {
		collector := spanz.NewCollector("bench", 1024)
		defer collector.Close()

		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				collector.Collect(r)
			}
		})
		b.ReportMetric(float64(collector.DroppedCount()), "dropped")
	})
}
