package spanz

import (
	"strings"
	"unicode/utf8"
)

// formatter turns a report into the text written at End.
type formatter func(r Report, p palette) string

// formatterFor maps a style to its formatter. StyleDefault and unknown
// styles use the detailed formatter.
func formatterFor(style Style) formatter {
	switch style {
	case StyleColorful:
		return formatColorful
	case StyleMinimal:
		return formatMinimal
	case StyleTable:
		return formatTable
	case StyleJSON:
		return formatJSON
	default:
		return formatDetailed
	}
}

// Render formats a report in the given style. ANSI colors are emitted only
// when color is true; JSON output is never colored.
func Render(style Style, r Report, color bool) string {
	return formatterFor(style)(r, palette{enabled: color})
}

// truncate shortens s to at most width runes, ending with "...".
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 3 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-3]) + "..."
}

// center pads text on both sides to fill width, keeping at least one space
// on each side.
func center(text string, width int) string {
	n := utf8.RuneCountInString(text)
	left := (width - n) / 2
	if left < 1 {
		left = 1
	}
	right := width - n - left
	if right < 1 {
		right = 1
	}
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

// progressBar draws a bar of width cells, one filled cell per eight percent.
func progressBar(percent float64, width int) string {
	filled := int(percent / 8)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
