package spanz

import (
	"strings"
	"time"
)

// ANSI escape codes used by the formatters.
const (
	ansiReset = "\033[0m"

	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiWhite   = "\033[37m"

	ansiBrightBlack = "\033[90m"
	ansiBrightGreen = "\033[92m"
	ansiBrightBlue  = "\033[94m"

	ansiBold = "\033[1m"
)

// ColorRule maps a lower duration bound to a color and a class name.
type ColorRule struct {
	Color     string
	Name      string
	Threshold time.Duration
}

// PercentColorRule maps a lower percentage bound to a color and a class name.
type PercentColorRule struct {
	Color     string
	Name      string
	Threshold float64
}

// DurationRules are checked top to bottom; the first bound d reaches wins.
var DurationRules = []ColorRule{
	{Threshold: 3 * time.Second, Color: ansiRed + ansiBold, Name: "Very Slow"},
	{Threshold: time.Second, Color: ansiRed, Name: "Slow"},
	{Threshold: 500 * time.Millisecond, Color: ansiYellow, Name: "Medium-Slow"},
	{Threshold: 200 * time.Millisecond, Color: ansiBrightBlue, Name: "Medium"},
	{Threshold: 100 * time.Millisecond, Color: ansiCyan, Name: "Normal"},
	{Threshold: 50 * time.Millisecond, Color: ansiGreen, Name: "Fast"},
	{Threshold: 10 * time.Millisecond, Color: ansiBrightGreen, Name: "Very Fast"},
	{Threshold: 0, Color: ansiBrightBlack, Name: "Ultra Fast"},
}

// ProgressRules color progress bars by share of the total.
var ProgressRules = []PercentColorRule{
	{Threshold: 75, Color: ansiRed + ansiBold, Name: "Critical"},
	{Threshold: 50, Color: ansiRed, Name: "High"},
	{Threshold: 25, Color: ansiMagenta, Name: "Medium"},
	{Threshold: 10, Color: ansiBlue, Name: "Low"},
	{Threshold: 5, Color: ansiGreen, Name: "Very Low"},
	{Threshold: 0, Color: ansiCyan, Name: "Minimal"},
}

func durationRule(d time.Duration) (ColorRule, bool) {
	for _, rule := range DurationRules {
		if d >= rule.Threshold {
			return rule, true
		}
	}
	return ColorRule{}, false
}

// DurationClass names the duration bucket d falls in, e.g. "Very Fast".
func DurationClass(d time.Duration) string {
	if rule, ok := durationRule(d); ok {
		return rule.Name
	}
	return "Unknown"
}

// PercentClass names the bucket a share of the total falls in.
func PercentClass(percent float64) string {
	for _, rule := range ProgressRules {
		if percent >= rule.Threshold {
			return rule.Name
		}
	}
	return "Unknown"
}

// SpeedClass is the coarse bucket used in JSON output.
func SpeedClass(d time.Duration) string {
	switch {
	case d > time.Second:
		return "slow"
	case d > 100*time.Millisecond:
		return "medium"
	case d > 10*time.Millisecond:
		return "fast"
	default:
		return "very_fast"
	}
}

// palette applies ANSI codes only when color is enabled.
type palette struct {
	enabled bool
}

func (p palette) paint(text string, codes ...string) string {
	if !p.enabled || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

func (p palette) duration(text string, d time.Duration) string {
	rule, ok := durationRule(d)
	if !ok {
		return p.paint(text, ansiWhite)
	}
	return p.paint(text, rule.Color)
}

func (p palette) percent(text string, percent float64) string {
	for _, rule := range ProgressRules {
		if percent >= rule.Threshold {
			return p.paint(text, rule.Color)
		}
	}
	return p.paint(text, ansiWhite)
}
