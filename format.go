package spanz

import (
	"fmt"
	"strings"
)

// Column widths for the detailed formatter.
const (
	detailedIndexWidth    = 3
	detailedNameWidth     = 30
	detailedDurationWidth = 15
	detailedPercentWidth  = 8
	detailedBarWidth      = 12
	detailedWidth         = detailedIndexWidth + detailedNameWidth + detailedDurationWidth +
		detailedPercentWidth + detailedBarWidth + 12
)

func formatDetailed(r Report, p palette) string {
	var b strings.Builder
	inner := detailedWidth - 2

	top := "╔" + strings.Repeat("═", inner) + "╗"
	sep := "╠" + strings.Repeat("═", inner) + "╣"
	thin := "╟" + strings.Repeat("─", inner) + "╢"
	bottom := "╚" + strings.Repeat("═", inner) + "╝"

	b.WriteString(p.paint(top, ansiBlue, ansiBold) + "\n")
	b.WriteString(p.paint("║"+center("🎯 TRACE: "+r.Name, inner), ansiMagenta, ansiBold) + "\n")
	b.WriteString(p.paint(sep, ansiBlue, ansiBold) + "\n")

	// Summary.
	b.WriteString(p.paint("║ 📊 SUMMARY", ansiGreen, ansiBold) + "\n")
	b.WriteString("║ • Total Execution Time: " + p.paint(r.Total.String(), ansiGreen, ansiBold) + "\n")
	b.WriteString("║ • Number of Spans: " + p.paint(fmt.Sprintf("%d", len(r.Measurements)), ansiBlue, ansiBold) + "\n")
	if slowest, ok := r.Slowest(); ok {
		b.WriteString("║ • Slowest Operation: " + p.paint(truncate(slowest.Label, 25), ansiRed, ansiBold) + "\n")
		b.WriteString("║ • Slowest Duration: " + p.paint(slowest.Duration.String(), ansiRed, ansiBold) + "\n")
	}
	if loc := r.Caller.Location(); loc != "" {
		b.WriteString("║ • File: " + p.paint(loc, ansiBrightBlack, ansiBold) + "\n")
	}
	b.WriteString(p.paint(sep, ansiBlue, ansiBold) + "\n")

	// Breakdown.
	b.WriteString(p.paint("║ 🔍 DETAILED BREAKDOWN", ansiMagenta, ansiBold) + "\n")
	b.WriteString(p.paint(thin, ansiBlue, ansiBold) + "\n")
	header := fmt.Sprintf("║ %*s │ %-*s │ %*s │ %*s │ %-*s",
		detailedIndexWidth, "#",
		detailedNameWidth-1, "Operation",
		detailedDurationWidth-1, "Duration",
		detailedPercentWidth-1, "Percent",
		detailedBarWidth-1, "Progress")
	b.WriteString(p.paint(header, ansiMagenta, ansiBold) + "\n")
	b.WriteString(p.paint(thin, ansiCyan) + "\n")

	for i, item := range r.Items {
		d := item.Duration()
		percent := r.Percent(d)

		name := truncate(item.Label(), detailedNameWidth-1)
		if item.Kind() == KindGroup {
			name = "📦 " + truncate(item.Label(), detailedNameWidth-3)
		}

		fmt.Fprintf(&b, "║ %*d │ ", detailedIndexWidth, i+1)
		b.WriteString(p.duration(fmt.Sprintf("%-*s", detailedNameWidth-1, name), d))
		b.WriteString(" │ ")
		b.WriteString(p.duration(fmt.Sprintf("%*s", detailedDurationWidth-2, d.String()), d))
		b.WriteString(" │ ")
		b.WriteString(p.percent(fmt.Sprintf("%*s", detailedPercentWidth-2, fmt.Sprintf("%.1f%%", percent)), percent))
		b.WriteString(" │ ")
		b.WriteString(p.paint(progressBar(percent, detailedBarWidth-1), ansiBlue, ansiBold))
		b.WriteString("\n")
	}

	if r.Filters.Active() {
		b.WriteString(p.paint(thin, ansiCyan) + "\n")
		info := fmt.Sprintf("🔍 Filtered: %d/%d spans | Active: %s",
			len(r.Items), len(r.Measurements), r.Filters.Summary())
		b.WriteString("║ " + p.paint(info, ansiBrightBlack) + "\n")
	}

	b.WriteString(p.paint(bottom, ansiBlue, ansiBold) + "\n")
	return b.String()
}

// Column widths shared by the colorful and minimal formatters.
const (
	boxNameWidth  = 35
	boxTotalWidth = boxNameWidth + 25 + 4
)

func formatColorful(r Report, p palette) string {
	var b strings.Builder
	inner := boxTotalWidth - 2

	top := "┌" + strings.Repeat("─", inner) + "┐"
	sep := "├" + strings.Repeat("─", inner) + "┤"
	bottom := "└" + strings.Repeat("─", inner) + "┘"

	b.WriteString(p.paint(top, ansiCyan, ansiBold) + "\n")
	b.WriteString(p.paint("│"+center("🚀 "+r.Name, inner)+"│", ansiYellow, ansiBold) + "\n")
	if loc := r.Caller.Location(); loc != "" {
		b.WriteString(p.paint("│"+center("📍 File: "+loc, inner)+"│", ansiBrightBlack) + "\n")
	}
	b.WriteString(p.paint(sep, ansiCyan, ansiBold) + "\n")

	total := fmt.Sprintf("│ %-*s │ %s", boxNameWidth, "⏱️  Total Time:", r.Total)
	b.WriteString(p.paint(total, ansiGreen, ansiBold) + "\n")
	b.WriteString(p.paint(sep, ansiCyan) + "\n")

	header := fmt.Sprintf("│ %-*s │ %s", boxNameWidth, "📋 Span", "⏰ Duration")
	b.WriteString(p.paint(header, ansiMagenta, ansiBold) + "\n")
	b.WriteString(p.paint(sep, ansiCyan) + "\n")

	for _, item := range r.Items {
		d := item.Duration()
		b.WriteString("│ ")
		b.WriteString(p.duration(fmt.Sprintf("%-*s", boxNameWidth, truncate(item.Label(), boxNameWidth)), d))
		b.WriteString(" │ ")
		b.WriteString(p.duration(d.String(), d))
		b.WriteString("\n")
	}

	b.WriteString(p.paint(bottom, ansiCyan, ansiBold) + "\n")
	return b.String()
}

func formatMinimal(r Report, p palette) string {
	var b strings.Builder
	inner := boxTotalWidth - 2

	top := "┌" + strings.Repeat("─", inner) + "┐"
	sep := "├" + strings.Repeat("─", inner) + "┤"
	bottom := "└" + strings.Repeat("─", inner) + "┘"

	b.WriteString(p.paint(top, ansiCyan, ansiBold) + "\n")
	title := fmt.Sprintf("│ %-*s │ %s", boxNameWidth, truncate("⚡ "+r.Name, boxNameWidth), r.Total)
	b.WriteString(p.paint(title, ansiCyan, ansiBold) + "\n")
	if short := r.Caller.String(); short != "" {
		line := fmt.Sprintf("│ %-*s │", boxNameWidth, truncate("📍 File: "+short, boxNameWidth))
		b.WriteString(p.paint(line, ansiBrightBlack) + "\n")
	}
	b.WriteString(p.paint(sep, ansiCyan) + "\n")

	for _, item := range r.Items {
		d := item.Duration()
		name := truncate("  └─ "+item.Label(), boxNameWidth)
		b.WriteString("│ ")
		b.WriteString(p.duration(fmt.Sprintf("%-*s", boxNameWidth, name), d))
		b.WriteString(" │ ")
		b.WriteString(p.duration(d.String(), d))
		b.WriteString("\n")
	}

	b.WriteString(p.paint(bottom, ansiCyan, ansiBold) + "\n")
	return b.String()
}

// Column widths for the table formatter.
const (
	tableIndexWidth    = 4
	tableNameWidth     = 45
	tableDurationWidth = 20
	tableWidth         = tableIndexWidth + tableNameWidth + tableDurationWidth + 3
)

func formatTable(r Report, p palette) string {
	var b strings.Builder

	rule := func(left, mid, right string) string {
		return left + strings.Repeat("─", tableIndexWidth) + mid +
			strings.Repeat("─", tableNameWidth) + mid +
			strings.Repeat("─", tableDurationWidth) + right
	}
	top := rule("┌", "┬", "┐")
	sep := rule("├", "┼", "┤")
	bottom := rule("└", "┴", "┘")

	b.WriteString(p.paint(top, ansiBlue, ansiBold) + "\n")
	b.WriteString(p.paint("│"+center("🚀 "+r.Name, tableWidth-2), ansiMagenta, ansiBold) + "\n")
	if loc := r.Caller.Location(); loc != "" {
		b.WriteString(p.paint("│"+center("📍 File: "+loc, tableWidth-2), ansiBrightBlack) + "\n")
	}
	b.WriteString(p.paint(sep, ansiBlue, ansiBold) + "\n")

	b.WriteString("│" + p.paint(fmt.Sprintf(" %-2s ", "No"), ansiMagenta, ansiBold))
	b.WriteString("│" + p.paint(fmt.Sprintf(" %-*s", tableNameWidth-1, "Span Name"), ansiMagenta, ansiBold))
	b.WriteString("│" + p.paint(" Duration", ansiMagenta, ansiBold) + "\n")
	b.WriteString(p.paint(sep, ansiCyan) + "\n")

	b.WriteString("│" + p.paint(fmt.Sprintf(" %-2s ", ""), ansiGreen, ansiBold))
	b.WriteString("│" + p.paint(fmt.Sprintf(" %-*s", tableNameWidth-1, "📊 TOTAL EXECUTION TIME"), ansiGreen, ansiBold))
	b.WriteString("│ " + p.duration(r.Total.String(), r.Total) + "\n")
	b.WriteString(p.paint(sep, ansiCyan) + "\n")

	for i, item := range r.Items {
		d := item.Duration()
		fmt.Fprintf(&b, "│ %*d │ ", tableIndexWidth-2, i+1)
		b.WriteString(p.duration(fmt.Sprintf("%-*s", tableNameWidth-1, truncate(item.Label(), tableNameWidth-2)), d))
		b.WriteString("│ ")
		b.WriteString(p.duration(d.String(), d))
		b.WriteString("\n")
	}

	b.WriteString(p.paint(bottom, ansiBlue, ansiBold) + "\n")

	b.WriteString("\n")
	summary := fmt.Sprintf("📈 Spans: %d", len(r.Measurements))
	if slowest, ok := r.Slowest(); ok {
		summary += fmt.Sprintf(" | 🐌 Slowest: %s (%v)", slowest.Label, slowest.Duration)
	}
	b.WriteString(p.paint(summary, ansiBrightBlack) + "\n")
	return b.String()
}
