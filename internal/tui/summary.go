package tui

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/opengovern/frontend/internal/api"
)

// Direction icons for deltas.
const (
	IconArrowUp    = "↑"
	IconArrowDown  = "↓"
	IconArrowRight = "→"
)

const (
	centsMultiplier = 100
	maxSummaryRows  = 5
	maxNameLen      = 32
	truncateSuffix  = "..."
)

// RenderDelta renders a spend change with sign and arrow. Increases are
// warnings, decreases are OK.
func RenderDelta(delta float64) string {
	rounded := math.Round(delta*centsMultiplier) / centsMultiplier
	switch {
	case rounded > 0:
		return WarningStyle.Render(fmt.Sprintf("+$%.2f %s", rounded, IconArrowUp))
	case rounded < 0:
		return OKStyle.Render(fmt.Sprintf("-$%.2f %s", -rounded, IconArrowDown))
	default:
		return SubtleStyle.Render(fmt.Sprintf("$0.00 %s", IconArrowRight))
	}
}

// truncate shortens s to maxNameLen runes.
func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxNameLen {
		return s
	}
	return string(r[:maxNameLen-len(truncateSuffix)]) + truncateSuffix
}

// RenderSpendSummary renders a boxed summary of spend metrics: the total, the
// number of metrics, and the largest metrics with their share and daily change.
func RenderSpendSummary(resp api.SpendMetricsResponse, width int) string {
	if len(resp.Metrics) == 0 {
		return InfoStyle.Render("No spend in this window.")
	}

	metrics := slices.Clone(resp.Metrics)
	slices.SortFunc(metrics, func(a, b api.SpendMetric) int {
		return cmp.Compare(b.TotalCost, a.TotalCost)
	})

	total := resp.TotalCost
	if total == 0 {
		for _, m := range metrics {
			total += m.TotalCost
		}
	}

	var content strings.Builder
	content.WriteString(HeaderStyle.Render("SPEND SUMMARY"))
	content.WriteString("\n")
	content.WriteString(LabelStyle.Render("Total Spend:  "))
	content.WriteString(ValueStyle.Render(fmt.Sprintf("$%.2f", total)))
	content.WriteString(LabelStyle.Render("    Metrics: "))
	content.WriteString(ValueStyle.Render(strconv.Itoa(len(metrics))))
	content.WriteString("\n")

	for i, m := range metrics {
		if i == maxSummaryRows {
			fmt.Fprintf(&content, "%s\n", SubtleStyle.Render(fmt.Sprintf("… and %d more", len(metrics)-maxSummaryRows)))
			break
		}
		share := 0.0
		if total > 0 {
			share = m.TotalCost / total * 100 //nolint:mnd // Percentage calculation.
		}
		fmt.Fprintf(&content, "%-*s %s %s %s\n",
			maxNameLen, truncate(m.DimensionName),
			ValueStyle.Render(fmt.Sprintf("$%10.2f", m.TotalCost)),
			LabelStyle.Render(fmt.Sprintf("(%5.1f%%)", share)),
			RenderDelta(m.DailyCostAtEndTime-m.DailyCostAtStartTime))
	}

	return BoxStyle.Width(width - borderPadding).Render(strings.TrimRight(content.String(), "\n"))
}

// RenderBenchmarksSummary renders a boxed compliance overview: every benchmark
// with its pass rate, worst first.
func RenderBenchmarksSummary(resp api.BenchmarksSummaryResponse, width int) string {
	if len(resp.BenchmarkSummary) == 0 {
		return InfoStyle.Render("No benchmarks evaluated.")
	}

	benchmarks := slices.Clone(resp.BenchmarkSummary)
	slices.SortFunc(benchmarks, func(a, b api.BenchmarkSummary) int {
		return cmp.Compare(a.PassRate(), b.PassRate())
	})

	var content strings.Builder
	content.WriteString(HeaderStyle.Render("COMPLIANCE SUMMARY"))
	content.WriteString("\n")
	for _, b := range benchmarks {
		total := b.ControlsSeverityStatus.Total
		rate := b.PassRate()
		fmt.Fprintf(&content, "%-*s %s %s\n",
			maxNameLen, truncate(b.Title),
			PassRateStyle(rate).Render(fmt.Sprintf("%5.1f%%", rate*100)), //nolint:mnd // Percentage.
			LabelStyle.Render(fmt.Sprintf("%d/%d controls passed", total.PassedCount, total.TotalCount)))
	}
	return BoxStyle.Width(width - borderPadding).Render(strings.TrimRight(content.String(), "\n"))
}
